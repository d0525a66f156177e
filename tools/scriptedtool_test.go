package tools

import (
	"strings"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"mapstudio/document"
	"mapstudio/plugin"
	"mapstudio/scripting"
	"mapstudio/typedef"
)

// recorderSource defines a tool object whose methods append their name and
// arguments to a global calls array.
const recorderSource = `
calls = [];
function rec(name) {
	return function() {
		calls.push([name].concat(Array.prototype.slice.call(arguments)));
	};
}
({
	name: "Recorder",
	activated: rec("activated"),
	deactivated: rec("deactivated"),
	keyPressed: rec("keyPressed"),
	mouseEntered: rec("mouseEntered"),
	mouseMoved: rec("mouseMoved"),
	mousePressed: rec("mousePressed"),
	mouseReleased: rec("mouseReleased"),
	mouseDoubleClicked: rec("mouseDoubleClicked"),
	modifiersChanged: rec("modifiersChanged"),
	languageChanged: rec("languageChanged"),
	mapChanged: rec("mapChanged"),
	tilePositionChanged: rec("tilePositionChanged"),
	updateEnabledState: rec("updateEnabledState")
})
`

func newScriptEnv(t *testing.T) (*scripting.Manager, *document.Manager, *plugin.Registry) {
	t.Helper()
	return scripting.NewManager(zerolog.Nop()), document.NewManager(), plugin.NewRegistry()
}

func buildTool(t *testing.T, sm *scripting.Manager, docs *document.Manager, reg *plugin.Registry, src string) *ScriptedTool {
	t.Helper()
	val, err := sm.Evaluate("tool.js", src)
	if err != nil {
		t.Fatalf("evaluate tool source: %v", err)
	}
	return NewScriptedTool(sm, docs, reg, val.ToObject(sm.Engine()))
}

func recordedCalls(t *testing.T, sm *scripting.Manager) [][]any {
	t.Helper()
	val, err := sm.Evaluate("calls.js", "calls")
	if err != nil {
		t.Fatalf("read calls: %v", err)
	}
	raw, ok := val.Export().([]any)
	if !ok {
		t.Fatalf("calls exported as %T, want []any", val.Export())
	}
	out := make([][]any, len(raw))
	for i, entry := range raw {
		call, ok := entry.([]any)
		if !ok {
			t.Fatalf("calls[%d] exported as %T, want []any", i, entry)
		}
		out[i] = call
	}
	return out
}

// num normalizes the numeric types goja exports to.
func num(t *testing.T, v any) float64 {
	t.Helper()
	switch n := v.(type) {
	case int64:
		return float64(n)
	case float64:
		return n
	default:
		t.Fatalf("expected a number, got %T (%v)", v, v)
		return 0
	}
}

func assertSingleCall(t *testing.T, sm *scripting.Manager, name string, args ...float64) {
	t.Helper()
	calls := recordedCalls(t, sm)
	if len(calls) != 1 {
		t.Fatalf("got %d calls, want 1: %v", len(calls), calls)
	}
	call := calls[0]
	if call[0] != name {
		t.Fatalf("dispatched %q, want %q", call[0], name)
	}
	if len(call)-1 != len(args) {
		t.Fatalf("%s got %d arguments, want %d: %v", name, len(call)-1, len(args), call[1:])
	}
	for i, want := range args {
		if got := num(t, call[i+1]); got != want {
			t.Errorf("%s argument %d = %v, want %v", name, i, got, want)
		}
	}
}

func TestScriptedToolDispatch(t *testing.T) {
	mods := typedef.ModShift | typedef.ModControl

	tests := []struct {
		name     string
		invoke   func(*ScriptedTool)
		method   string
		wantArgs []float64
	}{
		{
			name:   "activate",
			invoke: func(s *ScriptedTool) { s.Activate(&MapScene{}) },
			method: "activated",
		},
		{
			name:   "deactivate",
			invoke: func(s *ScriptedTool) { s.Deactivate(&MapScene{}) },
			method: "deactivated",
		},
		{
			name: "key press",
			invoke: func(s *ScriptedTool) {
				s.KeyPressed(KeyEvent{Key: ebiten.KeyA, Modifiers: mods})
			},
			method:   "keyPressed",
			wantArgs: []float64{float64(int(ebiten.KeyA)), 3},
		},
		{
			name:   "pointer enter",
			invoke: func(s *ScriptedTool) { s.MouseEntered() },
			method: "mouseEntered",
		},
		{
			name:   "pointer leave reuses the enter name",
			invoke: func(s *ScriptedTool) { s.MouseLeft() },
			method: "mouseEntered",
		},
		{
			name: "pointer move",
			invoke: func(s *ScriptedTool) {
				s.MouseMoved(typedef.Point{X: 33.5, Y: 17.25}, typedef.ModAlt)
			},
			method:   "mouseMoved",
			wantArgs: []float64{33.5, 17.25, 4},
		},
		{
			name: "button press",
			invoke: func(s *ScriptedTool) {
				s.MousePressed(MouseEvent{
					Button:    ebiten.MouseButtonRight,
					Pos:       typedef.Point{X: 10, Y: 20},
					Modifiers: typedef.ModShift,
				})
			},
			method:   "mousePressed",
			wantArgs: []float64{float64(int(ebiten.MouseButtonRight)), 10, 20, 1},
		},
		{
			name: "button release",
			invoke: func(s *ScriptedTool) {
				s.MouseReleased(MouseEvent{
					Button: ebiten.MouseButtonLeft,
					Pos:    typedef.Point{X: 1.5, Y: 2.5},
				})
			},
			method:   "mouseReleased",
			wantArgs: []float64{float64(int(ebiten.MouseButtonLeft)), 1.5, 2.5, 0},
		},
		{
			name: "double click",
			invoke: func(s *ScriptedTool) {
				s.MouseDoubleClicked(MouseEvent{
					Button: ebiten.MouseButtonLeft,
					Pos:    typedef.Point{X: 5, Y: 6},
				})
			},
			method:   "mouseDoubleClicked",
			wantArgs: []float64{float64(int(ebiten.MouseButtonLeft)), 5, 6, 0},
		},
		{
			name:     "modifier change",
			invoke:   func(s *ScriptedTool) { s.ModifiersChanged(typedef.ModMeta) },
			method:   "modifiersChanged",
			wantArgs: []float64{8},
		},
		{
			name:   "language change",
			invoke: func(s *ScriptedTool) { s.LanguageChanged() },
			method: "languageChanged",
		},
		{
			name:     "hovered tile change",
			invoke:   func(s *ScriptedTool) { s.TilePositionChanged(typedef.TilePos{X: 3, Y: 4}) },
			method:   "tilePositionChanged",
			wantArgs: []float64{3, 4},
		},
		{
			name:   "enabled-state recompute",
			invoke: func(s *ScriptedTool) { s.UpdateEnabledState() },
			method: "updateEnabledState",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, docs, reg := newScriptEnv(t)
			tool := buildTool(t, sm, docs, reg, recorderSource)
			tt.invoke(tool)
			assertSingleCall(t, sm, tt.method, tt.wantArgs...)
			if len(sm.Diagnostics()) != 0 {
				t.Errorf("unexpected diagnostics: %v", sm.Diagnostics())
			}
		})
	}
}

func TestScriptedToolNameDefaults(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"explicit name", `({name: "Foo"})`, "Foo"},
		{"empty name falls back", `({name: ""})`, "<unnamed tool>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, docs, reg := newScriptEnv(t)
			tool := buildTool(t, sm, docs, reg, tt.src)
			if got := tool.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateToolObject(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		want     bool
		wantDiag int
	}{
		{"string name", `({name: "Foo"})`, true, 0},
		{"empty string name", `({name: ""})`, true, 0},
		{"missing name", `({})`, false, 1},
		{"numeric name", `({name: 7})`, false, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm, _, reg := newScriptEnv(t)
			val, err := sm.Evaluate("candidate.js", tt.src)
			if err != nil {
				t.Fatalf("evaluate candidate: %v", err)
			}
			if got := ValidateToolObject(sm, val); got != tt.want {
				t.Errorf("ValidateToolObject() = %v, want %v", got, tt.want)
			}
			if got := len(sm.Diagnostics()); got != tt.wantDiag {
				t.Errorf("got %d diagnostics, want %d", got, tt.wantDiag)
			}
			if reg.Len() != 0 {
				t.Errorf("registry not empty after validation")
			}
		})
	}
}

func TestScriptedToolRegistryLifetime(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, `({name: "Foo"})`)
	if !reg.Contains(tool) {
		t.Fatal("adapter not registered after construction")
	}
	tool.Close()
	if reg.Contains(tool) {
		t.Fatal("adapter still registered after Close")
	}
}

func TestScriptedToolDoubleClickFallsBackToPress(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, `
calls = [];
({
	name: "PressOnly",
	mousePressed: function(button, x, y, modifiers) {
		calls.push(["mousePressed", button, x, y, modifiers]);
	}
})
`)
	tool.MouseDoubleClicked(MouseEvent{
		Button:    ebiten.MouseButtonLeft,
		Pos:       typedef.Point{X: 9, Y: 8},
		Modifiers: typedef.ModControl,
	})
	assertSingleCall(t, sm, "mousePressed", 0, 9, 8, 2)
}

func TestScriptedToolUpdateEnabledStateFallback(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, `({name: "Plain"})`)

	doc := document.NewMapDocument("island.mapz", typedef.NewMap(8, 8, 16, 16))
	doc.SetCurrentLayer(-1) // no tile layer selected

	tool.MapDocumentChanged(nil, doc)
	tool.UpdateEnabledState()
	if !tool.IsEnabled() {
		t.Error("tool disabled; the fallback must not depend on a selected tile layer")
	}

	tool.MapDocumentChanged(doc, nil)
	tool.UpdateEnabledState()
	if tool.IsEnabled() {
		t.Error("tool enabled without an active document")
	}
}

func TestScriptedToolUpdateEnabledStateScriptOverrides(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, recorderSource)

	doc := document.NewMapDocument("island.mapz", typedef.NewMap(8, 8, 16, 16))
	tool.MapDocumentChanged(nil, doc)

	// Drop the mapChanged record so only updateEnabledState remains.
	if _, err := sm.Evaluate("reset.js", "calls = []"); err != nil {
		t.Fatal(err)
	}

	tool.SetEnabled(false)
	tool.UpdateEnabledState()
	assertSingleCall(t, sm, "updateEnabledState")
	if tool.IsEnabled() {
		t.Error("script handled the recompute; the default must not have run")
	}
}

func TestScriptedToolNonCallablePropertyNotHandled(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, `({name: "Odd", keyPressed: 42})`)
	tool.KeyPressed(KeyEvent{Key: ebiten.KeyB})
	if got := len(sm.Diagnostics()); got != 0 {
		t.Errorf("got %d diagnostics, want 0", got)
	}
}

func TestScriptedToolReceiverPrototypeFallback(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, `
({
	name: "Proto",
	greeting: "hello",
	activated: function() {
		seenGreeting = this.greeting;
		seenName = this.name;
		seenMap = this.map;
	}
})
`)
	tool.Activate(&MapScene{})

	if v, _ := sm.Evaluate("check.js", "seenGreeting"); v == nil || v.Export() != "hello" {
		t.Errorf("this.greeting not reachable through the receiver")
	}
	if v, _ := sm.Evaluate("check.js", "seenName"); v == nil || v.Export() != "Proto" {
		t.Errorf("this.name not exposed by the adapter")
	}
	if v, _ := sm.Evaluate("check.js", "seenMap === null"); v == nil || v.Export() != true {
		t.Errorf("this.map should be null without an active document")
	}
}

func TestScriptedToolAdapterAccessorShadowsToolProperty(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, `
({
	name: "Shadow",
	map: "bogus",
	activated: function() { seenMap = this.map; }
})
`)
	doc := document.NewMapDocument("shadow.mapz", typedef.NewMap(4, 4, 16, 16))
	tool.MapDocumentChanged(nil, doc)
	tool.Activate(&MapScene{Doc: doc})

	v, err := sm.Evaluate("check.js", `seenMap.FileName()`)
	if err != nil {
		t.Fatalf("adapter map accessor shadowed by tool property: %v", err)
	}
	if v.Export() != "shadow.mapz" {
		t.Errorf("this.map.FileName() = %v, want shadow.mapz", v.Export())
	}
}

func TestScriptedToolMapChangedArguments(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, `
({
	name: "Watcher",
	mapChanged: function(oldMap, newMap) { gotOld = oldMap; gotNew = newMap; }
})
`)
	doc := document.NewMapDocument("town.mapz", typedef.NewMap(4, 4, 16, 16))

	tool.MapDocumentChanged(nil, doc)
	if v, _ := sm.Evaluate("check.js", "gotOld === null"); v == nil || v.Export() != true {
		t.Error("old document argument should be null")
	}
	if v, err := sm.Evaluate("check.js", "gotNew.FileName()"); err != nil || v.Export() != "town.mapz" {
		t.Errorf("new document argument does not wrap the new document: %v", err)
	}

	tool.MapDocumentChanged(doc, nil)
	if v, _ := sm.Evaluate("check.js", "gotNew === null"); v == nil || v.Export() != true {
		t.Error("new document argument should be null after closing")
	}
	if v, err := sm.Evaluate("check.js", "gotOld.FileName()"); err != nil || v.Export() != "town.mapz" {
		t.Errorf("old document argument does not wrap the old document: %v", err)
	}
}

func TestScriptedToolTilePositionChangeViaMouseMove(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, recorderSource)

	doc := document.NewMapDocument("grid.mapz", typedef.NewMap(8, 8, 16, 16))
	tool.MapDocumentChanged(nil, doc)
	if _, err := sm.Evaluate("reset.js", "calls = []"); err != nil {
		t.Fatal(err)
	}

	tool.MouseMoved(typedef.Point{X: 33, Y: 17}, typedef.ModNone)
	calls := recordedCalls(t, sm)
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want tilePositionChanged then mouseMoved: %v", len(calls), calls)
	}
	if calls[0][0] != "tilePositionChanged" || num(t, calls[0][1]) != 2 || num(t, calls[0][2]) != 1 {
		t.Errorf("first call = %v, want tilePositionChanged(2, 1)", calls[0])
	}
	if calls[1][0] != "mouseMoved" {
		t.Errorf("second call = %v, want mouseMoved", calls[1])
	}

	// Moving within the same tile must not re-dispatch the tile change.
	if _, err := sm.Evaluate("reset.js", "calls = []"); err != nil {
		t.Fatal(err)
	}
	tool.MouseMoved(typedef.Point{X: 34, Y: 18}, typedef.ModNone)
	calls = recordedCalls(t, sm)
	if len(calls) != 1 || calls[0][0] != "mouseMoved" {
		t.Errorf("got %v, want a single mouseMoved", calls)
	}
}

func TestScriptedToolErrorIsolation(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, `
calls = [];
({
	name: "Faulty",
	activated: function() { throw new Error("boom"); },
	deactivated: function() { calls.push(["deactivated"]); }
})
`)

	tool.Activate(&MapScene{})
	diags := sm.Diagnostics()
	if len(diags) != 1 {
		t.Fatalf("got %d diagnostics, want 1", len(diags))
	}
	if !strings.Contains(diags[0].Message, "boom") {
		t.Errorf("diagnostic %q does not mention the thrown error", diags[0].Message)
	}

	// The next callback must still dispatch normally.
	tool.Deactivate(&MapScene{})
	assertSingleCall(t, sm, "deactivated")
	if len(sm.Diagnostics()) != 1 {
		t.Errorf("error dispatch left extra diagnostics: %v", sm.Diagnostics())
	}
}

func TestScriptedToolEditableMapAccessor(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, `({name: "Maps"})`)

	if tool.EditableMap() != nil {
		t.Fatal("EditableMap() should be nil without an active document")
	}

	doc := document.NewMapDocument("cove.mapz", typedef.NewMap(4, 4, 16, 16))
	tool.MapDocumentChanged(nil, doc)
	m := tool.EditableMap()
	if m == nil || m.Document() != doc {
		t.Fatal("EditableMap() does not wrap the active document")
	}
}

func TestScriptedToolEditableTileAccessor(t *testing.T) {
	sm, docs, reg := newScriptEnv(t)
	tool := buildTool(t, sm, docs, reg, `({name: "Tiles"})`)

	if tool.EditableTile() != nil {
		t.Fatal("EditableTile() should be nil without a hovered tile")
	}

	ts := typedef.NewTileset("terrain", 16, 16, 8)
	tool.SetCurrentTile(ts.Tile(3))
	if tool.EditableTile() != nil {
		t.Fatal("EditableTile() should be nil while no open document manages the tileset")
	}

	tsDoc := document.NewTilesetDocument("terrain.tsz", ts)
	docs.AddTileset(tsDoc)
	tile := tool.EditableTile()
	if tile == nil {
		t.Fatal("EditableTile() is nil with an open tileset document")
	}
	if tile.ID() != 3 {
		t.Errorf("tile.ID() = %d, want 3", tile.ID())
	}
	if tile.Tileset().Document() != tsDoc {
		t.Error("tile does not resolve to the managing tileset document")
	}
}
