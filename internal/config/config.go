package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBaudRate = 9600
	DefaultFQBN     = "arduino:avr:uno"

	DefaultCompileTimeoutSec = 60
	DefaultUploadTimeoutSec  = 30
	DefaultPortAttempts      = 2
	DefaultPortBackoffMs     = 500

	DefaultSketchDirName = "sketches"
)

// Config holds all ardu configuration. Timeouts and retry parameters
// are engineering defaults, not toolchain constants, so all of them are
// overridable.
type Config struct {
	SketchDir         string `json:"sketch_dir,omitempty"`
	DefaultFQBN       string `json:"default_fqbn,omitempty"`
	SerialPort        string `json:"serial_port,omitempty"`
	SerialBaudRate    int    `json:"serial_baud_rate,omitempty"`
	CompileTimeoutSec int    `json:"compile_timeout_sec,omitempty"`
	UploadTimeoutSec  int    `json:"upload_timeout_sec,omitempty"`
	PortAttempts      int    `json:"port_attempts,omitempty"`
	PortBackoffMs     int    `json:"port_backoff_ms,omitempty"`
	ArduinoCLI        string `json:"arduino_cli,omitempty"`
}

// Defaults returns a Config with default values. SketchDir stays empty
// here; Load resolves it against the workspace root.
func Defaults() Config {
	return Config{
		DefaultFQBN:       DefaultFQBN,
		SerialBaudRate:    DefaultBaudRate,
		CompileTimeoutSec: DefaultCompileTimeoutSec,
		UploadTimeoutSec:  DefaultUploadTimeoutSec,
		PortAttempts:      DefaultPortAttempts,
		PortBackoffMs:     DefaultPortBackoffMs,
	}
}

// CompileTimeout returns the compile bound as a duration.
func (c Config) CompileTimeout() time.Duration {
	return time.Duration(c.CompileTimeoutSec) * time.Second
}

// UploadTimeout returns the upload bound as a duration.
func (c Config) UploadTimeout() time.Duration {
	return time.Duration(c.UploadTimeoutSec) * time.Second
}

// PortBackoff returns the lock retry backoff as a duration.
func (c Config) PortBackoff() time.Duration {
	return time.Duration(c.PortBackoffMs) * time.Millisecond
}

// Load reads and merges configuration for a workspace root.
// Order: defaults → global (~/.config/ardu/config.json) → workspace
// (.ardu/config.json) → environment (ARDU_*). A .env file in the
// workspace root is loaded first so env overrides work in dev setups
// the same way they did under dotenv.
func Load(workspaceRoot string) Config {
	cfg := Defaults()

	if workspaceRoot != "" {
		// Best effort; absence of .env is the normal case.
		_ = godotenv.Load(filepath.Join(workspaceRoot, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		mergeFromFile(&cfg, filepath.Join(home, ".config", "ardu", "config.json"))
	}

	if workspaceRoot != "" {
		mergeFromFile(&cfg, filepath.Join(workspaceRoot, ".ardu", "config.json"))
	}

	mergeFromEnv(&cfg)

	if cfg.SketchDir == "" && workspaceRoot != "" {
		cfg.SketchDir = filepath.Join(workspaceRoot, DefaultSketchDirName)
	}

	return cfg
}

// Save writes the config to the workspace .ardu/config.json by default,
// or to the global config if global is true.
func Save(cfg Config, workspaceRoot string, global bool) error {
	var dir string
	if global {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, ".config", "ardu")
	} else {
		dir = filepath.Join(workspaceRoot, ".ardu")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

func mergeFromFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return
	}
	merge(cfg, fileCfg)
}

func mergeFromEnv(cfg *Config) {
	envCfg := Config{
		SketchDir:   os.Getenv("ARDU_SKETCH_DIR"),
		DefaultFQBN: os.Getenv("ARDU_FQBN"),
		SerialPort:  os.Getenv("ARDU_SERIAL_PORT"),
		ArduinoCLI:  os.Getenv("ARDU_ARDUINO_CLI"),
	}
	if v, err := strconv.Atoi(os.Getenv("ARDU_BAUD_RATE")); err == nil {
		envCfg.SerialBaudRate = v
	}
	if v, err := strconv.Atoi(os.Getenv("ARDU_COMPILE_TIMEOUT_SEC")); err == nil {
		envCfg.CompileTimeoutSec = v
	}
	if v, err := strconv.Atoi(os.Getenv("ARDU_UPLOAD_TIMEOUT_SEC")); err == nil {
		envCfg.UploadTimeoutSec = v
	}
	merge(cfg, envCfg)
}

func merge(cfg *Config, over Config) {
	if over.SketchDir != "" {
		cfg.SketchDir = over.SketchDir
	}
	if over.DefaultFQBN != "" {
		cfg.DefaultFQBN = over.DefaultFQBN
	}
	if over.SerialPort != "" {
		cfg.SerialPort = over.SerialPort
	}
	if over.SerialBaudRate != 0 {
		cfg.SerialBaudRate = over.SerialBaudRate
	}
	if over.CompileTimeoutSec != 0 {
		cfg.CompileTimeoutSec = over.CompileTimeoutSec
	}
	if over.UploadTimeoutSec != 0 {
		cfg.UploadTimeoutSec = over.UploadTimeoutSec
	}
	if over.PortAttempts != 0 {
		cfg.PortAttempts = over.PortAttempts
	}
	if over.PortBackoffMs != 0 {
		cfg.PortBackoffMs = over.PortBackoffMs
	}
	if over.ArduinoCLI != "" {
		cfg.ArduinoCLI = over.ArduinoCLI
	}
}
