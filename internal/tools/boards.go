// Package tools implements the tool-call contract exposed to the agent
// collaborator: one MCP tool per toolchain operation, typed arguments
// in, JSON results out. Handlers never inspect component internals and
// never swallow diagnostics; deciding what to tell the end user is the
// caller's job.
package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/buckleypaul/ardu/internal/arduino"
)

// BoardsTool lists attached boards.
type BoardsTool struct {
	locator *arduino.Locator
}

// NewBoardsTool returns the list_boards tool.
func NewBoardsTool(locator *arduino.Locator) *BoardsTool {
	return &BoardsTool{locator: locator}
}

func (t *BoardsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_boards",
		mcp.WithDescription("List attached Arduino boards. Returns port, FQBN and label for each. "+
			"Call this first to find the port needed for upload_code, deploy_code and serial_monitor. "+
			"Results are live: attach/detach changes them between calls."),
	)
}

func (t *BoardsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	boards, err := t.locator.List(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("board discovery failed", err), nil
	}

	data, err := json.MarshalIndent(boards, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
