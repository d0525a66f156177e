package tools

import (
	"github.com/rs/zerolog"

	"mapstudio/document"
	"mapstudio/typedef"
)

// Manager owns the set of registered tools, tracks which one is selected,
// and fans editor events out to it. All methods run on the event-dispatch
// goroutine.
type Manager struct {
	logger zerolog.Logger

	tools    []Tool
	selected Tool
	scene    *MapScene
	doc      *document.MapDocument
}

// NewManager creates an empty tool manager.
func NewManager(logger zerolog.Logger) *Manager {
	return &Manager{
		logger: logger.With().Str("component", "tools").Logger(),
	}
}

// RegisterTool adds a tool and hands it the active document.
func (m *Manager) RegisterTool(t Tool) {
	m.tools = append(m.tools, t)
	if m.doc != nil {
		t.MapDocumentChanged(nil, m.doc)
	}
	t.UpdateEnabledState()
}

// UnregisterTool removes a tool, deselecting it first if needed.
func (m *Manager) UnregisterTool(t Tool) {
	if m.selected == t {
		m.SelectTool(nil)
	}
	for i, tool := range m.tools {
		if tool == t {
			m.tools = append(m.tools[:i], m.tools[i+1:]...)
			return
		}
	}
}

// Tools returns the registered tools.
func (m *Manager) Tools() []Tool {
	out := make([]Tool, len(m.tools))
	copy(out, m.tools)
	return out
}

// ToolByName returns the first registered tool with the given name, or nil.
func (m *Manager) ToolByName(name string) Tool {
	for _, t := range m.tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// SelectedTool returns the active tool, or nil.
func (m *Manager) SelectedTool() Tool { return m.selected }

// SetScene sets the drawing surface handed to tools on activation.
func (m *Manager) SetScene(scene *MapScene) { m.scene = scene }

// SelectTool deactivates the current tool and activates the given one.
func (m *Manager) SelectTool(t Tool) {
	if m.selected == t {
		return
	}
	if m.selected != nil {
		m.selected.Deactivate(m.scene)
	}
	m.selected = t
	if t != nil {
		t.UpdateEnabledState()
		t.Activate(m.scene)
		m.logger.Debug().Str("tool", t.Name()).Msg("tool selected")
	}
}

// SetMapDocument switches the active document and notifies every tool.
func (m *Manager) SetMapDocument(doc *document.MapDocument) {
	if m.doc == doc {
		return
	}
	oldDoc := m.doc
	m.doc = doc
	for _, t := range m.tools {
		t.MapDocumentChanged(oldDoc, doc)
		t.UpdateEnabledState()
	}
}

// MapDocument returns the active document, or nil.
func (m *Manager) MapDocument() *document.MapDocument { return m.doc }

// dispatch forwards an event to the selected tool while it is enabled.
func (m *Manager) dispatch(fn func(Tool)) {
	if m.selected != nil && m.selected.IsEnabled() {
		fn(m.selected)
	}
}

func (m *Manager) KeyPressed(ev KeyEvent) {
	m.dispatch(func(t Tool) { t.KeyPressed(ev) })
}

func (m *Manager) MouseEntered() {
	m.dispatch(func(t Tool) { t.MouseEntered() })
}

func (m *Manager) MouseLeft() {
	m.dispatch(func(t Tool) { t.MouseLeft() })
}

func (m *Manager) MouseMoved(pos typedef.Point, modifiers typedef.Modifiers) {
	m.dispatch(func(t Tool) { t.MouseMoved(pos, modifiers) })
}

func (m *Manager) MousePressed(ev MouseEvent) {
	m.dispatch(func(t Tool) { t.MousePressed(ev) })
}

func (m *Manager) MouseReleased(ev MouseEvent) {
	m.dispatch(func(t Tool) { t.MouseReleased(ev) })
}

func (m *Manager) MouseDoubleClicked(ev MouseEvent) {
	m.dispatch(func(t Tool) { t.MouseDoubleClicked(ev) })
}

func (m *Manager) ModifiersChanged(modifiers typedef.Modifiers) {
	m.dispatch(func(t Tool) { t.ModifiersChanged(modifiers) })
}

// LanguageChanged notifies every registered tool, not just the active one.
func (m *Manager) LanguageChanged() {
	for _, t := range m.tools {
		t.LanguageChanged()
	}
}
