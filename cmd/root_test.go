package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"photomesh/internal/render"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"check", "version"} {
		if !names[want] {
			t.Errorf("root command missing subcommand %q", want)
		}
	}
}

func TestVersionOutput(t *testing.T) {
	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout) != "photomesh dev" {
		t.Fatalf("version output = %q", stdout)
	}
}

func TestRenderSuccessPrintsModelPath(t *testing.T) {
	input := writeCorpus(t, 50)
	output := filepath.Join(t.TempDir(), "out", "model.usdz")
	bin := writeEngine(t, `
echo "progress 0.5"
echo "progress 1.0"
echo "done $4"
`)

	stdout, stderr, err := execute(t, "--engine", bin, "--detail", "full", "--min-short-side", "10", input, output)
	if err != nil {
		t.Fatalf("render: %v\nstderr: %s", err, stderr)
	}
	if strings.TrimSpace(stdout) != mustAbs(t, output) {
		t.Fatalf("stdout = %q, want %q", stdout, mustAbs(t, output))
	}
}

func TestRenderFailureExitsNonZero(t *testing.T) {
	input := writeCorpus(t, 50)
	output := filepath.Join(t.TempDir(), "model.usdz")
	bin := writeEngine(t, `echo "error decode error"`)

	stdout, _, err := execute(t, "--engine", bin, "--detail", "full", "--min-short-side", "10", input, output)
	if !errors.Is(err, errReported) {
		t.Fatalf("got %v, want errReported", err)
	}
	if stdout != "" {
		t.Fatalf("stdout must stay empty on failure, got %q", stdout)
	}
}

func TestRenderRejectsUnknownDetail(t *testing.T) {
	input := writeCorpus(t, 1)
	bin := writeEngine(t, `echo "done /never"`)

	_, _, err := execute(t, "--engine", bin, "--detail", "med", input, filepath.Join(t.TempDir(), "m.usdz"))
	if !errors.Is(err, errReported) {
		t.Fatalf("got %v, want errReported", err)
	}
}

func TestCheckCommand(t *testing.T) {
	input := writeCorpus(t, 3)

	stdout, _, err := execute(t, "check", "--min-short-side", "10", "--min-images", "2", input)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(stdout, "Images") || !strings.Contains(stdout, "3") {
		t.Fatalf("check output = %q", stdout)
	}

	_, _, err = execute(t, "check", "--min-short-side", "10", "--strict-input-checks", input)
	if !errors.Is(err, errReported) {
		t.Fatalf("strict check: got %v, want errReported", err)
	}
}

func TestLoadConfigLayering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photomesh.yaml")
	if err := os.WriteFile(path, []byte("detail: raw\nmin_images: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PHOTOMESH_MIN_SHORT_SIDE", "900")
	resetFlags(rootCmd)

	if err := rootCmd.ParseFlags([]string{"--config", path, "--min-images", "12"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadConfig(rootCmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Detail != "raw" || cfg.MinImages != 12 || cfg.MinShortSide != 900 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestProgressDisplayHoldsConsoleDuringRender(t *testing.T) {
	lvl := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	started, stopped := 0, 0
	d := &progressDisplay{
		console: &lvl,
		start: func() func() {
			started++
			return func() { stopped++ }
		},
	}

	d.onState(render.Idle)
	d.onState(render.Validating)
	if started != 0 || lvl.Level() != zapcore.InfoLevel {
		t.Fatalf("display started before rendering")
	}

	d.onState(render.Rendering)
	if started != 1 || lvl.Level() != zapcore.ErrorLevel {
		t.Fatalf("started=%d level=%s, want display up and console at error", started, lvl.Level())
	}

	d.onState(render.Failed)
	if stopped != 1 || lvl.Level() != zapcore.InfoLevel {
		t.Fatalf("stopped=%d level=%s, want display down and console restored", stopped, lvl.Level())
	}

	d.onState(render.Failed)
	if stopped != 1 {
		t.Fatalf("display stopped twice")
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

// resetFlags restores every flag to its default so tests do not leak state
// through the package-level command tree.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeCorpus(t *testing.T, n int) string {
	t.Helper()
	dir := t.TempDir()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 20, 20))); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < n; i++ {
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("shot_%02d.png", i)), buf.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func writeEngine(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "fake-renderer")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	abs, err := filepath.Abs(path)
	if err != nil {
		t.Fatal(err)
	}
	return abs
}
