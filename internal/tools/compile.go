package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/buckleypaul/ardu/internal/arduino"
)

// CompileTool builds a sketch into a flashable artifact.
type CompileTool struct {
	compiler    *arduino.Compiler
	defaultFQBN string
}

// NewCompileTool returns the compile_code tool.
func NewCompileTool(compiler *arduino.Compiler, defaultFQBN string) *CompileTool {
	return &CompileTool{compiler: compiler, defaultFQBN: defaultFQBN}
}

func (t *CompileTool) Definition() mcp.Tool {
	return mcp.NewTool("compile_code",
		mcp.WithDescription("Compile a sketch directory for a board type. Blocks until the toolchain "+
			"exits or the compile timeout elapses. The result carries the compiler's diagnostics "+
			"line by line and, on success, the artifact path for upload_code."),
		mcp.WithString("sketch_path",
			mcp.Required(),
			mcp.Description("Sketch directory path, as returned by write_code."),
		),
		mcp.WithString("fqbn",
			mcp.Description("Fully qualified board name, e.g. arduino:avr:uno. Defaults to the configured board type."),
		),
	)
}

func (t *CompileTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sketchPath, err := req.RequireString("sketch_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fqbn := req.GetString("fqbn", t.defaultFQBN)

	result, err := t.compiler.Compile(ctx, sketchPath, fqbn)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("compile failed", err), nil
	}

	// Compile errors are results, not protocol errors: the agent needs
	// the diagnostics to fix the source and retry.
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
