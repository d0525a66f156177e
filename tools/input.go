package tools

import (
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"mapstudio/typedef"
)

// doubleClickWindow is the longest gap between two presses of the same
// button that still counts as a double click.
const doubleClickWindow = 400 * time.Millisecond

// Poller translates polled ebiten input into tool events once per frame.
type Poller struct {
	tools *Manager

	lastMods      typedef.Modifiers
	lastPos       typedef.Point
	hasPos        bool
	cursorInside  bool
	lastClickBtn  ebiten.MouseButton
	lastClickAt   time.Time
	lastClickPos  typedef.Point
	hasFirstClick bool
}

// NewPoller creates a poller feeding the given tool manager.
func NewPoller(tools *Manager) *Poller {
	return &Poller{tools: tools}
}

// Update polls the input state and dispatches events. Call once per frame
// from the game update loop.
func (p *Poller) Update() {
	mods := typedef.ModifiersFromKeyboard()
	if mods != p.lastMods {
		p.lastMods = mods
		p.tools.ModifiersChanged(mods)
	}

	x, y := ebiten.CursorPosition()
	w, h := ebiten.WindowSize()
	pos := typedef.Point{X: float64(x), Y: float64(y)}
	inside := x >= 0 && y >= 0 && x < w && y < h

	if inside != p.cursorInside {
		p.cursorInside = inside
		if inside {
			p.tools.MouseEntered()
		} else {
			p.tools.MouseLeft()
		}
	}

	if inside && (!p.hasPos || pos != p.lastPos) {
		p.lastPos = pos
		p.hasPos = true
		p.tools.MouseMoved(pos, mods)
	}

	for _, key := range inpututil.AppendJustPressedKeys(nil) {
		p.tools.KeyPressed(KeyEvent{Key: key, Modifiers: mods})
	}

	for btn := ebiten.MouseButton0; btn <= ebiten.MouseButton4; btn++ {
		if inpututil.IsMouseButtonJustPressed(btn) {
			ev := MouseEvent{Button: btn, Pos: pos, Modifiers: mods}
			if p.isDoubleClick(btn, pos) {
				p.hasFirstClick = false
				p.tools.MouseDoubleClicked(ev)
			} else {
				p.lastClickBtn = btn
				p.lastClickAt = time.Now()
				p.lastClickPos = pos
				p.hasFirstClick = true
				p.tools.MousePressed(ev)
			}
		}
		if inpututil.IsMouseButtonJustReleased(btn) {
			p.tools.MouseReleased(MouseEvent{Button: btn, Pos: pos, Modifiers: mods})
		}
	}
}

func (p *Poller) isDoubleClick(btn ebiten.MouseButton, pos typedef.Point) bool {
	if !p.hasFirstClick || btn != p.lastClickBtn {
		return false
	}
	if time.Since(p.lastClickAt) > doubleClickWindow {
		return false
	}
	dx := pos.X - p.lastClickPos.X
	dy := pos.Y - p.lastClickPos.Y
	return dx*dx+dy*dy <= 16
}
