package tools

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/buckleypaul/ardu/internal/serial"
	"github.com/buckleypaul/ardu/internal/store"
)

// openWait bounds how long a serial_monitor call queues behind a port
// holder before reporting the port busy.
const openWait = time.Second

// defaultCaptureSec is how long serial_monitor reads when the agent
// does not say.
const defaultCaptureSec = 3

// SerialTool reads debug output from a board.
type SerialTool struct {
	monitor *serial.Monitor
	logs    *store.Store
	baud    int
}

// NewSerialTool returns the serial_monitor tool. Captures are saved to
// the logbook when the save argument asks for it.
func NewSerialTool(monitor *serial.Monitor, logs *store.Store, defaultBaud int) *SerialTool {
	return &SerialTool{monitor: monitor, logs: logs, baud: defaultBaud}
}

func (t *SerialTool) Definition() mcp.Tool {
	return mcp.NewTool("serial_monitor",
		mcp.WithDescription("Read serial output from a board for a bounded duration and return the "+
			"decoded lines. Holds exclusive access to the port while reading; fails with a port-busy "+
			"error if an upload is in progress."),
		mcp.WithString("port",
			mcp.Required(),
			mcp.Description("Serial port to read, e.g. /dev/ttyUSB0."),
		),
		mcp.WithNumber("baud_rate",
			mcp.Description("Baud rate. Defaults to the configured rate (9600 unless overridden)."),
		),
		mcp.WithNumber("duration_sec",
			mcp.Description("How many seconds to read. Defaults to 3."),
		),
		mcp.WithBoolean("save",
			mcp.Description("Also save the capture to the workspace logbook."),
		),
	)
}

func (t *SerialTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	port, err := req.RequireString("port")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	baud := req.GetInt("baud_rate", t.baud)
	duration := time.Duration(req.GetInt("duration_sec", defaultCaptureSec)) * time.Second
	save := req.GetBool("save", false)

	openCtx, cancel := context.WithTimeout(ctx, openWait)
	session, err := t.monitor.Open(openCtx, port, baud)
	cancel()
	if err != nil {
		return mcp.NewToolResultErrorFromErr("serial monitor failed", err), nil
	}
	defer session.Close()

	lines := session.Capture(ctx, duration)

	out := map[string]any{
		"port":      port,
		"baud_rate": baud,
		"lines":     lines,
	}
	if save {
		logFile, err := t.logs.SaveCapture(port, baud, lines)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("save capture failed", err), nil
		}
		out["log_file"] = logFile
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}
