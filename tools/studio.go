package tools

import (
	"fmt"

	"github.com/dop251/goja"

	"mapstudio/document"
	"mapstudio/editable"
	"mapstudio/plugin"
	"mapstudio/scripting"
)

// RegisterScriptAPI exposes the studio host object to scripts. Scripts
// define custom tools through studio.registerTool.
func RegisterScriptAPI(script *scripting.Manager, docs *document.Manager, registry *plugin.Registry, toolMgr *Manager) error {
	vm := script.Engine()
	studio := vm.NewObject()

	if err := studio.Set("registerTool", func(call goja.FunctionCall) goja.Value {
		value := call.Argument(0)
		if !ValidateToolObject(script, value) {
			return goja.Null()
		}
		obj := value.ToObject(vm)
		tool := NewScriptedTool(script, docs, registry, obj)
		toolMgr.RegisterTool(tool)
		logger := script.Logger()
		logger.Info().Str("tool", tool.Name()).Msg("scripted tool registered")
		return obj
	}); err != nil {
		return fmt.Errorf("failed to set studio.registerTool: %w", err)
	}

	if err := studio.Set("activeMap", func(goja.FunctionCall) goja.Value {
		if doc := toolMgr.MapDocument(); doc != nil {
			return vm.ToValue(editable.NewEditableMap(doc))
		}
		return goja.Null()
	}); err != nil {
		return fmt.Errorf("failed to set studio.activeMap: %w", err)
	}

	if err := studio.Set("tools", func(goja.FunctionCall) goja.Value {
		names := make([]string, 0, len(toolMgr.Tools()))
		for _, t := range toolMgr.Tools() {
			names = append(names, t.Name())
		}
		return vm.ToValue(names)
	}); err != nil {
		return fmt.Errorf("failed to set studio.tools: %w", err)
	}

	if err := vm.Set("studio", studio); err != nil {
		return fmt.Errorf("failed to set studio object: %w", err)
	}
	return nil
}
