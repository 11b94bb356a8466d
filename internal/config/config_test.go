package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.DefaultFQBN != "arduino:avr:uno" {
		t.Errorf("expected DefaultFQBN=arduino:avr:uno, got=%s", cfg.DefaultFQBN)
	}
	if cfg.SerialBaudRate != 9600 {
		t.Errorf("expected SerialBaudRate=9600, got=%d", cfg.SerialBaudRate)
	}
	if cfg.CompileTimeout() != 60*time.Second {
		t.Errorf("expected 60s compile timeout, got=%s", cfg.CompileTimeout())
	}
	if cfg.UploadTimeout() != 30*time.Second {
		t.Errorf("expected 30s upload timeout, got=%s", cfg.UploadTimeout())
	}
	if cfg.PortAttempts != 2 {
		t.Errorf("expected 2 port attempts, got=%d", cfg.PortAttempts)
	}
}

func TestLoadMerge(t *testing.T) {
	tmp := t.TempDir()
	arduDir := filepath.Join(tmp, ".ardu")
	os.MkdirAll(arduDir, 0o755)
	os.WriteFile(filepath.Join(arduDir, "config.json"), []byte(`{
		"default_fqbn": "esp32:esp32:esp32",
		"serial_baud_rate": 115200
	}`), 0o644)

	cfg := Load(tmp)

	if cfg.DefaultFQBN != "esp32:esp32:esp32" {
		t.Errorf("expected default_fqbn from workspace, got=%s", cfg.DefaultFQBN)
	}
	if cfg.SerialBaudRate != 115200 {
		t.Errorf("expected baud rate 115200 from workspace, got=%d", cfg.SerialBaudRate)
	}
	// Untouched values keep their defaults.
	if cfg.CompileTimeoutSec != DefaultCompileTimeoutSec {
		t.Errorf("expected default compile timeout, got=%d", cfg.CompileTimeoutSec)
	}
	if cfg.SketchDir != filepath.Join(tmp, "sketches") {
		t.Errorf("expected sketch dir under workspace, got=%s", cfg.SketchDir)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	tmp := t.TempDir()
	arduDir := filepath.Join(tmp, ".ardu")
	os.MkdirAll(arduDir, 0o755)
	os.WriteFile(filepath.Join(arduDir, "config.json"), []byte(`{"serial_baud_rate": 115200}`), 0o644)

	t.Setenv("ARDU_BAUD_RATE", "57600")
	t.Setenv("ARDU_FQBN", "arduino:avr:nano")

	cfg := Load(tmp)

	if cfg.SerialBaudRate != 57600 {
		t.Errorf("expected env to win over file, got=%d", cfg.SerialBaudRate)
	}
	if cfg.DefaultFQBN != "arduino:avr:nano" {
		t.Errorf("expected env fqbn, got=%s", cfg.DefaultFQBN)
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmp := t.TempDir()
	os.WriteFile(filepath.Join(tmp, ".env"), []byte("ARDU_SERIAL_PORT=/dev/ttyUSB3\n"), 0o644)
	t.Setenv("ARDU_SERIAL_PORT", "") // register restore, then clear for godotenv
	os.Unsetenv("ARDU_SERIAL_PORT")
	t.Cleanup(func() { os.Unsetenv("ARDU_SERIAL_PORT") })

	cfg := Load(tmp)

	if cfg.SerialPort != "/dev/ttyUSB3" {
		t.Errorf("expected serial port from .env, got=%q", cfg.SerialPort)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmp := t.TempDir()
	cfg := Config{
		DefaultFQBN:       "arduino:avr:mega",
		SerialBaudRate:    57600,
		CompileTimeoutSec: 120,
	}

	if err := Save(cfg, tmp, false); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(tmp, ".ardu", "config.json")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	loaded := Load(tmp)
	if loaded.DefaultFQBN != "arduino:avr:mega" {
		t.Errorf("expected DefaultFQBN=arduino:avr:mega, got=%s", loaded.DefaultFQBN)
	}
	if loaded.SerialBaudRate != 57600 {
		t.Errorf("expected SerialBaudRate=57600, got=%d", loaded.SerialBaudRate)
	}
	if loaded.CompileTimeoutSec != 120 {
		t.Errorf("expected CompileTimeoutSec=120, got=%d", loaded.CompileTimeoutSec)
	}
}

func TestDetectRootWalksUp(t *testing.T) {
	tmp := t.TempDir()
	os.MkdirAll(filepath.Join(tmp, ".ardu"), 0o755)
	nested := filepath.Join(tmp, "a", "b")
	os.MkdirAll(nested, 0o755)

	if got := DetectRoot(nested); got != tmp {
		t.Errorf("expected root %s, got %s", tmp, got)
	}
}

func TestDetectRootFallsBackToStart(t *testing.T) {
	tmp := t.TempDir()
	if got := DetectRoot(tmp); got != tmp {
		t.Errorf("expected start dir %s, got %s", tmp, got)
	}
}
