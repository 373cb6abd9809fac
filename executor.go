package llmstream

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kerinova/llmstream/internal/core"
	"github.com/kerinova/llmstream/internal/util"
)

// executeTool turns one reassembled tool call into a user-visible string.
// Nothing here aborts the stream: parse failures, unknown names and tool
// errors all come back as warning text so the rest of the response survives.
func (s *streamer) executeTool(ctx context.Context, call core.ToolCall) string {
	tool := findTool(s.tools, call.Name)
	if tool == nil {
		s.logger.Warn("model requested unknown tool", slog.String("tool", call.Name))
		return fmt.Sprintf("⚠️ The model requested an unknown action %q.", call.Name)
	}

	argStruct := tool.Parameters()
	if err := json.Unmarshal([]byte(call.Args), argStruct); err != nil {
		repaired, changed := util.RepairJSON(call.Args)
		if !changed || json.Unmarshal([]byte(repaired), argStruct) != nil {
			s.logger.Warn("tool arguments failed to parse",
				slog.String("tool", call.Name),
				slog.String("args", call.Args),
			)
			return fmt.Sprintf("⚠️ Failed to parse %s details.", toolLabel(call.Name))
		}
	}

	result, err := tool.Execute(ctx, argStruct)
	if err != nil {
		s.logger.Warn("tool execution failed",
			slog.String("tool", call.Name),
			slog.String("error", err.Error()),
		)
		return fmt.Sprintf("⚠️ Couldn't complete the %s request.", toolLabel(call.Name))
	}
	s.logger.Debug("tool executed", slog.String("tool", call.Name), slog.Int("index", call.Index))
	return result
}

func findTool(tools []Tool, name string) Tool {
	for _, t := range tools {
		if t.Name() == name {
			return t
		}
	}
	return nil
}

// toolLabel turns a catalog name like "create_reminder" into prose.
func toolLabel(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}
