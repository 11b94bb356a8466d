// Package server wires the toolchain components into an MCP server.
//
// This is the composition root: it resolves the toolchain, builds the
// shared port lock map, and registers one tool per operation. No
// orchestration logic lives here, only wiring.
package server

import (
	"path/filepath"

	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/buckleypaul/ardu/internal/arduino"
	"github.com/buckleypaul/ardu/internal/config"
	"github.com/buckleypaul/ardu/internal/serial"
	"github.com/buckleypaul/ardu/internal/store"
	"github.com/buckleypaul/ardu/internal/tools"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New builds the MCP server for a workspace. A missing arduino-cli is
// not fatal here: each tool call reports it instead, so the agent can
// tell the user to install the toolchain rather than seeing the server
// die on startup.
func New(cfg config.Config, workspaceRoot string, log zerolog.Logger) *server.MCPServer {
	cliPath, err := arduino.ResolveCLI(cfg.ArduinoCLI)
	if err != nil {
		log.Warn().Err(err).Msg("arduino-cli not resolved; tool calls will report it")
		cliPath = "arduino-cli"
	} else {
		log.Debug().Str("path", cliPath).Msg("arduino-cli resolved")
	}

	runner := arduino.NewExecRunner(cliPath, log)
	locks := serial.NewPortLocks()

	locator := arduino.NewLocator(runner, cfg.DefaultFQBN)
	sketches := arduino.NewSketchStore(cfg.SketchDir)
	compiler := arduino.NewCompiler(runner, cfg.CompileTimeout())
	uploader := arduino.NewUploader(runner, locks, cfg.UploadTimeout(), cfg.PortAttempts, cfg.PortBackoff())
	pipeline := arduino.NewPipeline(sketches, compiler, uploader)
	monitor := serial.NewMonitor(locks)
	logs := store.New(filepath.Join(workspaceRoot, ".ardu"))

	s := server.NewMCPServer(
		"ardu",
		Version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions(instructions()),
	)

	boardsTool := tools.NewBoardsTool(locator)
	s.AddTool(boardsTool.Definition(), boardsTool.Handle)

	writeTool := tools.NewWriteCodeTool(sketches)
	s.AddTool(writeTool.Definition(), writeTool.Handle)

	compileTool := tools.NewCompileTool(compiler, cfg.DefaultFQBN)
	s.AddTool(compileTool.Definition(), compileTool.Handle)

	uploadTool := tools.NewUploadTool(uploader, cfg.DefaultFQBN)
	s.AddTool(uploadTool.Definition(), uploadTool.Handle)

	serialTool := tools.NewSerialTool(monitor, logs, cfg.SerialBaudRate)
	s.AddTool(serialTool.Definition(), serialTool.Handle)

	deployTool := tools.NewDeployTool(pipeline, cfg.DefaultFQBN)
	s.AddTool(deployTool.Definition(), deployTool.Handle)

	return s
}

// ServeStdio runs the server over stdin/stdout until the client hangs
// up. Logging goes to stderr; stdout belongs to the transport.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

func instructions() string {
	return `ardu drives an attached Arduino board through the arduino-cli toolchain.

Workflow:
1. Call list_boards first to find the port (and FQBN) of the attached board.
2. deploy_code writes, compiles and flashes in one step; use it for the
   common fix-and-flash loop. The individual write_code / compile_code /
   upload_code tools exist for finer control.
3. After flashing, serial_monitor reads the board's debug output.

A failed compile returns the compiler diagnostics; fix the source and
retry. An upload or monitor call can fail with "port busy" while another
operation holds the port; retry after it finishes.`
}
