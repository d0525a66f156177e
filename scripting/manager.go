// Package scripting hosts the embedded JavaScript engine and the shared
// diagnostics channel through which all script errors are reported.
package scripting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

// Diagnostic is a single script error surfaced to the user. Script errors
// are never fatal; they are collected here and broadcast to subscribers.
type Diagnostic struct {
	Time    time.Time `json:"time"`
	Source  string    `json:"source,omitempty"`
	Message string    `json:"message"`
}

// maxDiagnostics bounds the in-memory diagnostic history.
const maxDiagnostics = 256

// Manager owns the single goja runtime. The runtime is not safe for
// concurrent use; everything that touches it runs on the event-dispatch
// goroutine, either directly or through Submit.
type Manager struct {
	vm     *goja.Runtime
	logger zerolog.Logger

	tasks chan func()

	mu    sync.Mutex
	diags []Diagnostic
	subs  []chan Diagnostic
}

// NewManager creates a script manager with a fresh runtime.
func NewManager(logger zerolog.Logger) *Manager {
	m := &Manager{
		vm:     goja.New(),
		logger: logger.With().Str("component", "scripting").Logger(),
		tasks:  make(chan func(), 64),
	}
	return m
}

// Engine returns the underlying runtime. Callers must only use it from the
// event-dispatch goroutine.
func (m *Manager) Engine() *goja.Runtime {
	return m.vm
}

// Logger returns the manager's logger.
func (m *Manager) Logger() zerolog.Logger {
	return m.logger
}

// ThrowError reports a user-facing script error through the diagnostics
// channel.
func (m *Manager) ThrowError(format string, args ...any) {
	m.report(Diagnostic{
		Time:    time.Now(),
		Source:  "script",
		Message: fmt.Sprintf(format, args...),
	})
}

// CheckError inspects the result of a script invocation and reports it when
// it signals an error. Returns true when an error was reported.
func (m *Manager) CheckError(err error) bool {
	if err == nil {
		return false
	}
	d := Diagnostic{Time: time.Now(), Source: "script", Message: err.Error()}
	var exc *goja.Exception
	if errors.As(err, &exc) {
		d.Message = exc.String()
	}
	m.report(d)
	return true
}

func (m *Manager) report(d Diagnostic) {
	m.logger.Error().Str("source", d.Source).Msg(d.Message)

	m.mu.Lock()
	m.diags = append(m.diags, d)
	if len(m.diags) > maxDiagnostics {
		m.diags = m.diags[len(m.diags)-maxDiagnostics:]
	}
	subs := make([]chan Diagnostic, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- d:
		default: // slow subscriber, drop
		}
	}
}

// Diagnostics returns a copy of the recorded diagnostics.
func (m *Manager) Diagnostics() []Diagnostic {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Diagnostic, len(m.diags))
	copy(out, m.diags)
	return out
}

// Subscribe returns a channel receiving future diagnostics. The caller must
// keep reading from it or diagnostics addressed to it are dropped.
func (m *Manager) Subscribe() <-chan Diagnostic {
	ch := make(chan Diagnostic, 32)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (m *Manager) Unsubscribe(ch <-chan Diagnostic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subs {
		if sub == ch {
			close(sub)
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			return
		}
	}
}

// Evaluate compiles and runs a script on the calling goroutine. Errors are
// reported through the diagnostics channel and also returned.
func (m *Manager) Evaluate(name, src string) (goja.Value, error) {
	prog, err := goja.Compile(name, src, false)
	if err != nil {
		m.CheckError(err)
		return nil, err
	}
	val, err := m.vm.RunProgram(prog)
	if err != nil {
		m.CheckError(err)
		return nil, err
	}
	return val, nil
}

// Submit queues work to run on the event-dispatch goroutine. Used by
// goroutines (file watcher, console server) that must not touch the runtime
// themselves.
func (m *Manager) Submit(fn func()) {
	m.tasks <- fn
}

// RunLoop processes submitted work until the context is cancelled. It is
// the event-dispatch loop of a headless session; a GUI session drains the
// same queue from its frame update instead.
func (m *Manager) RunLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case fn := <-m.tasks:
			fn()
		}
	}
}

// DrainTasks runs all currently queued work without blocking. Called once
// per frame by a GUI session.
func (m *Manager) DrainTasks() {
	for {
		select {
		case fn := <-m.tasks:
			fn()
		default:
			return
		}
	}
}
