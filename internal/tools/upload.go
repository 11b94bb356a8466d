package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/buckleypaul/ardu/internal/arduino"
)

// UploadTool flashes a compiled artifact to a board.
type UploadTool struct {
	uploader    *arduino.Uploader
	defaultFQBN string
}

// NewUploadTool returns the upload_code tool.
func NewUploadTool(uploader *arduino.Uploader, defaultFQBN string) *UploadTool {
	return &UploadTool{uploader: uploader, defaultFQBN: defaultFQBN}
}

func (t *UploadTool) Definition() mcp.Tool {
	return mcp.NewTool("upload_code",
		mcp.WithDescription("Flash a compiled artifact to the board on the given port. Holds exclusive "+
			"access to the port for the duration; fails with a port-busy error if a serial monitor "+
			"session or another upload already owns it."),
		mcp.WithString("artifact_path",
			mcp.Required(),
			mcp.Description("Artifact path from a successful compile_code result."),
		),
		mcp.WithString("port",
			mcp.Required(),
			mcp.Description("Serial port of the target board, e.g. /dev/ttyUSB0."),
		),
		mcp.WithString("fqbn",
			mcp.Description("Fully qualified board name. Defaults to the configured board type."),
		),
	)
}

func (t *UploadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	artifactPath, err := req.RequireString("artifact_path")
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

	result, err := t.uploader.Upload(ctx, artifactPath, board)
	if err != nil {
		// Keep the tool diagnostics visible alongside the typed error;
		// a permission failure's hint lives in them.
		msg := err.Error()
		if len(result.Diagnostics) > 0 {
			data, jerr := json.MarshalIndent(result, "", "  ")
			if jerr == nil {
				msg += "\n" + string(data)
			}
		}
		return mcp.NewToolResultError(msg), nil
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
