package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/buckleypaul/ardu/internal/arduino"
)

// DeployTool runs the write→compile→upload pipeline as one call.
type DeployTool struct {
	pipeline    *arduino.Pipeline
	defaultFQBN string
}

// NewDeployTool returns the deploy_code tool.
func NewDeployTool(pipeline *arduino.Pipeline, defaultFQBN string) *DeployTool {
	return &DeployTool{pipeline: pipeline, defaultFQBN: defaultFQBN}
}

func (t *DeployTool) Definition() mcp.Tool {
	return mcp.NewTool("deploy_code",
		mcp.WithDescription("Write a sketch, compile it and flash it to the board in one call, "+
			"stopping at the first failing stage. The result records the stage reached and the "+
			"full compile/upload diagnostics. A failed compile leaves the written sketch on disk "+
			"for inspection; the upload is never attempted after a failure."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Sketch name (same rules as write_code)."),
		),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("The Arduino C++ source text."),
		),
		mcp.WithString("port",
			mcp.Required(),
			mcp.Description("Serial port of the target board, from list_boards."),
		),
		mcp.WithString("fqbn",
			mcp.Description("Fully qualified board name. Defaults to the configured board type."),
		),
	)
}

func (t *DeployTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	port, err := req.RequireString("port")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	board := arduino.Board{
		Port: port,
		FQBN: req.GetString("fqbn", t.defaultFQBN),
	}

	result := t.pipeline.Deploy(ctx, name, source, board)

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
