package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/buckleypaul/ardu/internal/arduino"
	"github.com/buckleypaul/ardu/internal/config"
	"github.com/buckleypaul/ardu/internal/serial"
	"github.com/buckleypaul/ardu/internal/store"
)

var (
	verbose       bool
	workspaceFlag string

	cfg           config.Config
	workspaceRoot string
	logger        zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ardu",
	Short: "Arduino toolchain orchestration for agents and humans",
	Long: `ardu turns discrete intents (list boards, write a sketch, compile,
upload, read serial output) into ordered arduino-cli and serial-port
interactions with well-defined failure points.

'ardu serve' exposes the same operations as MCP tools over stdio for an
agent collaborator; the other subcommands are the human debug surface.`,
	PersistentPreRun: setup,
	SilenceUsage:     true,
}

// Execute runs the root command with signal-aware cancellation.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	return rootCmd.ExecuteContext(ctx)
}

// setup resolves the workspace, loads config and configures logging
// before any command runs.
func setup(cmd *cobra.Command, args []string) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	start := workspaceFlag
	if start == "" {
		if cwd, err := os.Getwd(); err == nil {
			start = cwd
		} else {
			start = "."
		}
	}
	workspaceRoot = config.DetectRoot(start)
	cfg = config.Load(workspaceRoot)
}

// toolkit bundles the wired components a CLI command needs. Unlike the
// MCP server, CLI commands fail up front when arduino-cli is missing.
type toolkit struct {
	runner   arduino.Runner
	locks    *serial.PortLocks
	locator  *arduino.Locator
	sketches *arduino.SketchStore
	compiler *arduino.Compiler
	uploader *arduino.Uploader
	pipeline *arduino.Pipeline
	monitor  *serial.Monitor
	logs     *store.Store
}

func newToolkit() (*toolkit, error) {
	cliPath, err := arduino.ResolveCLI(cfg.ArduinoCLI)
	if err != nil {
		return nil, err
	}

	runner := arduino.NewExecRunner(cliPath, logger)
	locks := serial.NewPortLocks()
	sketches := arduino.NewSketchStore(cfg.SketchDir)
	compiler := arduino.NewCompiler(runner, cfg.CompileTimeout())
	uploader := arduino.NewUploader(runner, locks, cfg.UploadTimeout(), cfg.PortAttempts, cfg.PortBackoff())

	return &toolkit{
		runner:   runner,
		locks:    locks,
		locator:  arduino.NewLocator(runner, cfg.DefaultFQBN),
		sketches: sketches,
		compiler: compiler,
		uploader: uploader,
		pipeline: arduino.NewPipeline(sketches, compiler, uploader),
		monitor:  serial.NewMonitor(locks),
		logs:     store.New(filepath.Join(workspaceRoot, ".ardu")),
	}, nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&workspaceFlag, "workspace", "C", "", "workspace directory (default: detected from cwd)")
}
