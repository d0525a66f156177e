// Package tools implements the editing-tool framework of the editor and the
// bridge that lets script-defined objects act as tools.
package tools

import (
	"github.com/hajimehoshi/ebiten/v2"

	"mapstudio/document"
	"mapstudio/typedef"
)

// KeyEvent is a key press delivered to the active tool.
type KeyEvent struct {
	Key       ebiten.Key
	Modifiers typedef.Modifiers
}

// MouseEvent is a mouse button press or release delivered to the active
// tool. Pos is in scene coordinates.
type MouseEvent struct {
	Button    ebiten.MouseButton
	Pos       typedef.Point
	Modifiers typedef.Modifiers
}

// MapScene is the drawing surface a tool operates on while active. Tools
// borrow it between Activate and Deactivate and must not hold on to it
// afterwards.
type MapScene struct {
	Doc *document.MapDocument
}

// Action is a toolbar entry a tool may contribute.
type Action struct {
	ID   string
	Text string
}

// ToolBar collects the actions contributed by the active tool.
type ToolBar struct {
	Actions []Action
}

// Tool is the callback interface every editing tool implements. The tool
// manager drives these from the event-dispatch goroutine; none of them may
// block.
type Tool interface {
	Name() string
	IsEnabled() bool

	Activate(scene *MapScene)
	Deactivate(scene *MapScene)
	KeyPressed(ev KeyEvent)
	MouseEntered()
	MouseLeft()
	MouseMoved(pos typedef.Point, modifiers typedef.Modifiers)
	MousePressed(ev MouseEvent)
	MouseReleased(ev MouseEvent)
	MouseDoubleClicked(ev MouseEvent)
	ModifiersChanged(modifiers typedef.Modifiers)
	LanguageChanged()
	MapDocumentChanged(oldDoc, newDoc *document.MapDocument)
	UpdateEnabledState()
	PopulateToolBar(bar *ToolBar)
}

// AbstractTool carries the state shared by all tools and provides no-op
// defaults for every callback. Concrete tools embed it and override what
// they need.
type AbstractTool struct {
	name      string
	enabled   bool
	doc       *document.MapDocument
	modifiers typedef.Modifiers
}

func (t *AbstractTool) Name() string { return t.name }

// SetName sets the display name of the tool.
func (t *AbstractTool) SetName(name string) { t.name = name }

func (t *AbstractTool) IsEnabled() bool { return t.enabled }

func (t *AbstractTool) SetEnabled(enabled bool) { t.enabled = enabled }

// MapDocument returns the document this tool currently operates on, or nil.
func (t *AbstractTool) MapDocument() *document.MapDocument { return t.doc }

// Modifiers returns the modifier mask from the last input event.
func (t *AbstractTool) Modifiers() typedef.Modifiers { return t.modifiers }

func (t *AbstractTool) Activate(*MapScene) {}

func (t *AbstractTool) Deactivate(*MapScene) {}

func (t *AbstractTool) KeyPressed(KeyEvent) {}

func (t *AbstractTool) MouseEntered() {}

func (t *AbstractTool) MouseLeft() {}

func (t *AbstractTool) MouseMoved(pos typedef.Point, modifiers typedef.Modifiers) {
	t.modifiers = modifiers
}

func (t *AbstractTool) MousePressed(MouseEvent) {}

func (t *AbstractTool) MouseReleased(MouseEvent) {}

func (t *AbstractTool) MouseDoubleClicked(MouseEvent) {}

func (t *AbstractTool) ModifiersChanged(modifiers typedef.Modifiers) {
	t.modifiers = modifiers
}

func (t *AbstractTool) LanguageChanged() {}

func (t *AbstractTool) MapDocumentChanged(oldDoc, newDoc *document.MapDocument) {
	t.doc = newDoc
}

// UpdateEnabledState is the tool-independent default: a tool is usable
// whenever a document is active.
func (t *AbstractTool) UpdateEnabledState() {
	t.SetEnabled(t.doc != nil)
}

func (t *AbstractTool) PopulateToolBar(*ToolBar) {}
