//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/buckleypaul/ardu/internal/arduino"
)

// cliPath resolves the real arduino-cli binary, or skips the test when
// the toolchain is not installed.
func cliPath(t *testing.T) string {
	t.Helper()
	path, err := arduino.ResolveCLI("")
	if err != nil {
		t.Skip("arduino-cli not found; skipping integration tests")
	}
	return path
}

// TestIntegrationBoardList runs the real board discovery. It asserts
// only that discovery completes: whether boards are attached depends on
// the machine running the test.
func TestIntegrationBoardList(t *testing.T) {
	runner := arduino.NewExecRunner(cliPath(t), zerolog.Nop())
	locator := arduino.NewLocator(runner, "arduino:avr:uno")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	boards, err := locator.List(ctx)
	if err != nil {
		t.Fatalf("board discovery failed: %v", err)
	}
	if boards == nil {
		t.Fatal("expected a non-nil board slice")
	}
	for _, b := range boards {
		t.Logf("board: %s %s (%s)", b.Port, b.FQBN, b.Label)
	}
}

// TestIntegrationCompileBlink writes a minimal blink sketch and compiles
// it for arduino:avr:uno with the real toolchain, asserting a flashable
// artifact comes out. Requires the avr core to be installed
// (arduino-cli core install arduino:avr).
func TestIntegrationCompileBlink(t *testing.T) {
	runner := arduino.NewExecRunner(cliPath(t), zerolog.Nop())
	sketches := arduino.NewSketchStore(t.TempDir())
	compiler := arduino.NewCompiler(runner, 5*time.Minute)

	const source = `void setup() {
  pinMode(LED_BUILTIN, OUTPUT);
}

void loop() {
  digitalWrite(LED_BUILTIN, HIGH);
  delay(500);
  digitalWrite(LED_BUILTIN, LOW);
  delay(500);
}
`
	sketchPath, err := sketches.Write("blink", source)
	if err != nil {
		t.Fatalf("write sketch failed: %v", err)
	}

	result, err := compiler.Compile(context.Background(), sketchPath, "arduino:avr:uno")
	if err != nil {
		t.Fatalf("compile invocation failed: %v", err)
	}

	t.Logf("compiler output:\n%s", joinLines(result.Diagnostics))

	if !result.Success {
		t.Fatalf("compile failed with exit code %d", result.ExitCode)
	}
	if result.ArtifactPath == "" {
		t.Fatal("expected an artifact path on success")
	}
}

// TestIntegrationCompileError feeds the real compiler broken source and
// asserts the failure surfaces as a result with diagnostics rather than
// an invocation error.
func TestIntegrationCompileError(t *testing.T) {
	runner := arduino.NewExecRunner(cliPath(t), zerolog.Nop())
	sketches := arduino.NewSketchStore(t.TempDir())
	compiler := arduino.NewCompiler(runner, 5*time.Minute)

	sketchPath, err := sketches.Write("broken", "void setup() { missing_semicolon() }\nvoid loop() {}\n")
	if err != nil {
		t.Fatalf("write sketch failed: %v", err)
	}

	result, err := compiler.Compile(context.Background(), sketchPath, "arduino:avr:uno")
	if err != nil {
		t.Fatalf("compile invocation failed: %v", err)
	}
	if result.Success {
		t.Fatal("expected compile to fail")
	}
	if len(result.Diagnostics) == 0 {
		t.Fatal("expected compiler diagnostics")
	}
}

func joinLines(lines []string) string {
	out := ""
	for _, l := range lines {
		out += l + "\n"
	}
	return out
}
