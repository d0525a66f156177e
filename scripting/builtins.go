package scripting

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/dop251/goja"
)

// SetupBuiltins wires the console and clipboard objects into the runtime.
func (m *Manager) SetupBuiltins() error {
	if err := m.setupConsole(); err != nil {
		return err
	}
	return m.setupClipboard()
}

func (m *Manager) setupConsole() error {
	consoleObj := m.vm.NewObject()

	logFn := func(level string) func(call goja.FunctionCall) goja.Value {
		return func(call goja.FunctionCall) goja.Value {
			parts := make([]string, len(call.Arguments))
			for i, arg := range call.Arguments {
				parts[i] = fmt.Sprintf("%v", arg.Export())
			}
			msg := strings.Join(parts, " ")
			switch level {
			case "warn":
				m.logger.Warn().Str("source", "console").Msg(msg)
			case "error":
				m.logger.Error().Str("source", "console").Msg(msg)
			default:
				m.logger.Info().Str("source", "console").Msg(msg)
			}
			return goja.Undefined()
		}
	}

	for _, level := range []string{"log", "info", "warn", "error"} {
		if err := consoleObj.Set(level, logFn(level)); err != nil {
			return fmt.Errorf("failed to set console.%s: %w", level, err)
		}
	}

	if err := m.vm.Set("console", consoleObj); err != nil {
		return fmt.Errorf("failed to set console object: %w", err)
	}
	return nil
}

func (m *Manager) setupClipboard() error {
	clipObj := m.vm.NewObject()

	if err := clipObj.Set("getText", func(goja.FunctionCall) goja.Value {
		text, err := clipboard.ReadAll()
		if err != nil {
			m.ThrowError("clipboard read failed: %v", err)
			return goja.Null()
		}
		return m.vm.ToValue(text)
	}); err != nil {
		return fmt.Errorf("failed to set clipboard.getText: %w", err)
	}

	if err := clipObj.Set("setText", func(call goja.FunctionCall) goja.Value {
		text := call.Argument(0).String()
		if err := clipboard.WriteAll(text); err != nil {
			m.ThrowError("clipboard write failed: %v", err)
		}
		return goja.Undefined()
	}); err != nil {
		return fmt.Errorf("failed to set clipboard.setText: %w", err)
	}

	if err := m.vm.Set("clipboard", clipObj); err != nil {
		return fmt.Errorf("failed to set clipboard object: %w", err)
	}
	return nil
}
