package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/nanddecode/internal/options"
	"github.com/retroenv/nanddecode/internal/simulation"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestPrintBanner(t *testing.T) {
	logger := log.NewTestLogger(t)

	PrintBanner(logger, options.Flags{}, Build{Version: "1.0.0", Commit: "0123456789abcdef", Date: "2024-05-01"})
	PrintBanner(logger, options.Flags{Quiet: true}, Build{Version: "dev"})
}

func TestSimulateDecode(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "script.txt")
	assert.NoError(t, os.WriteFile(script, []byte("CMD:90 ADDR:00\nCMD:ef ADDR:01 DATA:05000000\n"), 0o600))

	timing := simulation.DefaultTiming()
	capturePath := filepath.Join(dir, "capture.csv")
	err := Simulate(context.Background(), options.Simulate{
		Flags:  options.Flags{Quiet: true},
		Script: script,
		Output: capturePath,
		Idle:   timing.Idle,
		Setup:  timing.Setup,
		Strobe: timing.Strobe,
		Hold:   timing.Hold,
		Half:   timing.Half,
	}, Build{})
	assert.NoError(t, err)

	output := filepath.Join(dir, "export.txt")
	err = Decode(context.Background(), options.Decode{
		Flags:  options.Flags{Quiet: true},
		Input:  capturePath,
		Output: output,
	}, Build{})
	assert.NoError(t, err)

	data, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Equal(t, "CMD:90 ADDR:00\nCMD:ef ADDR:01 DATA:05000000\n", string(data))
}

// writeCapture simulates the script into a capture file and returns its path.
func writeCapture(t *testing.T, dir, script string) string {
	t.Helper()

	scriptPath := filepath.Join(dir, "script.txt")
	assert.NoError(t, os.WriteFile(scriptPath, []byte(script), 0o600))

	timing := simulation.DefaultTiming()
	capturePath := filepath.Join(dir, "capture.csv")
	err := Simulate(context.Background(), options.Simulate{
		Flags:  options.Flags{Quiet: true},
		Script: scriptPath,
		Output: capturePath,
		Idle:   timing.Idle,
		Setup:  timing.Setup,
		Strobe: timing.Strobe,
		Hold:   timing.Hold,
		Half:   timing.Half,
	}, Build{})
	assert.NoError(t, err)
	return capturePath
}

func TestDecodeOutputError(t *testing.T) {
	dir := t.TempDir()
	err := Decode(context.Background(), options.Decode{
		Flags:  options.Flags{Quiet: true},
		Input:  writeCapture(t, dir, "CMD:ff\n"),
		Output: filepath.Join(dir, "missing", "export.txt"),
	}, Build{})
	assert.ErrorContains(t, err, "creating output file")
}

func TestDecodeFailureKeepsOutputAbsent(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "export.txt")

	err := Decode(context.Background(), options.Decode{
		Flags:    options.Flags{Quiet: true},
		Channels: options.Channels{File: filepath.Join(dir, "missing.yaml")},
		Input:    writeCapture(t, dir, "CMD:ff\n"),
		Output:   output,
	}, Build{})
	assert.ErrorContains(t, err, "loading channel file")

	_, err = os.Stat(output)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestDecodeEmptyExport(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "export.txt")

	// a capture without transactions exports nothing, the file is still created
	err := Decode(context.Background(), options.Decode{
		Flags:  options.Flags{Quiet: true},
		Input:  writeCapture(t, dir, "# no transactions\n"),
		Output: output,
	}, Build{})
	assert.NoError(t, err)

	data, err := os.ReadFile(output)
	assert.NoError(t, err)
	assert.Empty(t, data)
}
