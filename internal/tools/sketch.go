package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/buckleypaul/ardu/internal/arduino"
)

// WriteCodeTool stores sketch source on disk.
type WriteCodeTool struct {
	sketches *arduino.SketchStore
}

// NewWriteCodeTool returns the write_code tool.
func NewWriteCodeTool(sketches *arduino.SketchStore) *WriteCodeTool {
	return &WriteCodeTool{sketches: sketches}
}

func (t *WriteCodeTool) Definition() mcp.Tool {
	return mcp.NewTool("write_code",
		mcp.WithDescription("Write Arduino sketch source to disk as <sketches>/<name>/<name>.ino. "+
			"Overwrites any previous source of the same name atomically. "+
			"Returns the sketch directory path for compile_code."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Sketch name: letters, digits, underscore or dash, starting with a letter or underscore."),
		),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("The Arduino C++ source text, written verbatim."),
		),
	)
}

func (t *WriteCodeTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	source, err := req.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	path, err := t.sketches.Write(name, source)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("write sketch failed", err), nil
	}

	data, err := json.Marshal(map[string]string{"sketch_path": path})
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
