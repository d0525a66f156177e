package tools

import (
	"github.com/dop251/goja"

	"mapstudio/document"
	"mapstudio/editable"
	"mapstudio/plugin"
	"mapstudio/scripting"
	"mapstudio/typedef"
)

const unnamedTool = "<unnamed tool>"

// ScriptedTool lets a script-defined object act as an editing tool. Every
// tool callback is forwarded to an equally named optional method on the
// script object; callbacks the script does not implement fall back to the
// inherited default behavior.
//
// The adapter borrows everything it references: the script object belongs
// to the engine, the documents and tiles to the document manager.
type ScriptedTool struct {
	AbstractTileTool

	script   *scripting.Manager
	docs     *document.Manager
	registry *plugin.Registry
	object   *goja.Object
	scene    *MapScene
}

// ValidateToolObject reports whether a script value is acceptable as a tool
// definition: it must carry a string 'name' property. Rejections raise a
// user-facing script error and no tool is created.
func ValidateToolObject(script *scripting.Manager, value goja.Value) bool {
	var nameProp goja.Value
	if obj, ok := value.(*goja.Object); ok {
		nameProp = obj.Get("name")
	}
	if nameProp == nil {
		script.ThrowError("Invalid tool object (requires string 'name' property)")
		return false
	}
	if _, ok := nameProp.Export().(string); !ok {
		script.ThrowError("Invalid tool object (requires string 'name' property)")
		return false
	}
	return true
}

// NewScriptedTool wraps a script object in a tool adapter and registers the
// adapter with the plugin registry. It stays registered until Close.
func NewScriptedTool(script *scripting.Manager, docs *document.Manager, registry *plugin.Registry, object *goja.Object) *ScriptedTool {
	s := &ScriptedTool{
		script:   script,
		docs:     docs,
		registry: registry,
		object:   object,
	}
	s.SetName(unnamedTool)
	if object != nil {
		if v := object.Get("name"); v != nil {
			if name, ok := v.Export().(string); ok && name != "" {
				s.SetName(name)
			}
		}
	}
	registry.AddObject(s)
	return s
}

// Close removes the adapter from the plugin registry. Called when the
// script environment or the tool set is torn down.
func (s *ScriptedTool) Close() {
	s.registry.RemoveObject(s)
}

// Object returns the held script object.
func (s *ScriptedTool) Object() *goja.Object { return s.object }

// EditableMap returns the script-facing wrapper of the active document, or
// nil when no document is active.
func (s *ScriptedTool) EditableMap() *editable.EditableMap {
	if doc := s.MapDocument(); doc != nil {
		return editable.NewEditableMap(doc)
	}
	return nil
}

// EditableTile resolves the hovered tile to the script-facing wrapper owned
// by the open document managing its tileset, or nil. Looked up on every
// call, never cached.
func (s *ScriptedTool) EditableTile() *editable.EditableTile {
	tile := s.CurrentTile()
	if tile == nil {
		return nil
	}
	tsDoc := s.docs.FindTilesetDocument(tile.Tileset())
	if tsDoc == nil {
		return nil
	}
	return editable.NewEditableTileset(tsDoc).Tile(tile.ID)
}

func (s *ScriptedTool) Activate(scene *MapScene) {
	s.AbstractTileTool.Activate(scene)
	s.scene = scene
	s.call("activated")
}

func (s *ScriptedTool) Deactivate(scene *MapScene) {
	s.AbstractTileTool.Deactivate(scene)
	s.call("deactivated")
	s.scene = nil
}

func (s *ScriptedTool) KeyPressed(ev KeyEvent) {
	vm := s.script.Engine()
	s.call("keyPressed", vm.ToValue(int(ev.Key)), vm.ToValue(int(ev.Modifiers)))
}

func (s *ScriptedTool) MouseEntered() {
	s.AbstractTileTool.MouseEntered()
	s.call("mouseEntered")
}

func (s *ScriptedTool) MouseLeft() {
	s.AbstractTileTool.MouseLeft()
	// Scripts have always received "mouseEntered" here, not a distinct
	// leave notification. Kept as observed behavior.
	s.call("mouseEntered")
}

func (s *ScriptedTool) MouseMoved(pos typedef.Point, modifiers typedef.Modifiers) {
	s.AbstractTileTool.MouseMoved(pos, modifiers)
	if tp, changed := s.TrackTilePosition(pos); changed {
		s.TilePositionChanged(tp)
	}

	vm := s.script.Engine()
	s.call("mouseMoved", vm.ToValue(pos.X), vm.ToValue(pos.Y), vm.ToValue(int(modifiers)))
}

func (s *ScriptedTool) MousePressed(ev MouseEvent) {
	vm := s.script.Engine()
	s.call("mousePressed",
		vm.ToValue(int(ev.Button)), vm.ToValue(ev.Pos.X), vm.ToValue(ev.Pos.Y), vm.ToValue(int(ev.Modifiers)))
}

func (s *ScriptedTool) MouseReleased(ev MouseEvent) {
	vm := s.script.Engine()
	s.call("mouseReleased",
		vm.ToValue(int(ev.Button)), vm.ToValue(ev.Pos.X), vm.ToValue(ev.Pos.Y), vm.ToValue(int(ev.Modifiers)))
}

func (s *ScriptedTool) MouseDoubleClicked(ev MouseEvent) {
	vm := s.script.Engine()
	handled := s.call("mouseDoubleClicked",
		vm.ToValue(int(ev.Button)), vm.ToValue(ev.Pos.X), vm.ToValue(ev.Pos.Y), vm.ToValue(int(ev.Modifiers)))
	if !handled {
		s.MousePressed(ev)
	}
}

func (s *ScriptedTool) ModifiersChanged(modifiers typedef.Modifiers) {
	s.AbstractTileTool.ModifiersChanged(modifiers)
	s.call("modifiersChanged", s.script.Engine().ToValue(int(modifiers)))
}

func (s *ScriptedTool) LanguageChanged() {
	s.call("languageChanged")
}

func (s *ScriptedTool) MapDocumentChanged(oldDoc, newDoc *document.MapDocument) {
	s.AbstractTileTool.MapDocumentChanged(oldDoc, newDoc)

	vm := s.script.Engine()
	toArg := func(doc *document.MapDocument) goja.Value {
		if doc == nil {
			return goja.Null()
		}
		return vm.ToValue(editable.NewEditableMap(doc))
	}
	s.call("mapChanged", toArg(oldDoc), toArg(newDoc))
}

func (s *ScriptedTool) TilePositionChanged(tilePos typedef.TilePos) {
	vm := s.script.Engine()
	s.call("tilePositionChanged", vm.ToValue(tilePos.X), vm.ToValue(tilePos.Y))
}

func (s *ScriptedTool) UpdateEnabledState() {
	if !s.call("updateEnabledState") {
		// Skipping the tile-tool default on purpose: a scripted tool's
		// enabled state should not depend on a selected tile layer.
		s.AbstractTool.UpdateEnabledState()
	}
	s.UpdateBrushVisibility()
}

func (s *ScriptedTool) PopulateToolBar(*ToolBar) {
	// TODO: decide how scripts contribute toolbar actions; a plain list of
	// action ids may be enough.
}

// call looks up a method of the given name on the script object and invokes
// it with a receiver that merges the adapter's properties with the script
// object's own. Reports whether the script handled the callback.
func (s *ScriptedTool) call(name string, args ...goja.Value) bool {
	if s.object == nil {
		return false
	}
	prop := s.object.Get(name)
	if prop == nil {
		return false
	}
	method, ok := goja.AssertFunction(prop)
	if !ok {
		return false
	}

	vm := s.script.Engine()
	self := vm.NewObject()
	s.defineAccessors(self)

	// Members of the original object stay reachable through the receiver.
	if err := self.SetPrototype(s.object); err != nil {
		s.script.CheckError(err)
		return true
	}

	_, err := method(self, args...)
	s.script.CheckError(err)
	return true
}

// defineAccessors exposes the adapter's read-only properties on the call
// receiver. Each getter computes its value on access.
func (s *ScriptedTool) defineAccessors(obj *goja.Object) {
	vm := s.script.Engine()

	getName := vm.ToValue(func(goja.FunctionCall) goja.Value {
		return vm.ToValue(s.Name())
	})
	getMap := vm.ToValue(func(goja.FunctionCall) goja.Value {
		if m := s.EditableMap(); m != nil {
			return vm.ToValue(m)
		}
		return goja.Null()
	})
	getTile := vm.ToValue(func(goja.FunctionCall) goja.Value {
		if t := s.EditableTile(); t != nil {
			return vm.ToValue(t)
		}
		return goja.Null()
	})

	_ = obj.DefineAccessorProperty("name", getName, nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	_ = obj.DefineAccessorProperty("map", getMap, nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
	_ = obj.DefineAccessorProperty("tile", getTile, nil, goja.FLAG_FALSE, goja.FLAG_TRUE)
}
