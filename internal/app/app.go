// Package app connects the commands to the decode pipeline.
package app

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/nanddecode/internal/config"
	"github.com/retroenv/nanddecode/internal/options"
	"github.com/retroenv/nanddecode/internal/pipeline"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// Build contains the version information set at build time.
type Build struct {
	Version string
	Commit  string
	Date    string
}

// PrintBanner prints application version information
func PrintBanner(logger *log.Logger, flags options.Flags, build Build) {
	if flags.Quiet {
		return
	}

	logger.Info("nanddecode", log.String("version", buildinfo.Version(build.Version, build.Commit, build.Date)))

	if build.Date != "" && !strings.Contains(build.Date, "unknown") {
		logger.Info("Build", log.String("date", build.Date))
	}
}

// Decode decodes the capture file selected by the options.
func Decode(ctx context.Context, opts options.Decode, build Build) error {
	logger := config.CreateLogger(opts.Flags)
	PrintBanner(logger, opts.Flags, build)

	if opts.Output == "" {
		_, err := pipeline.New(logger).Decode(ctx, opts, os.Stdout)
		return err
	}

	output := &outputFile{path: opts.Output}
	_, err := pipeline.New(logger).Decode(ctx, opts, output)
	if err == nil && output.file == nil {
		err = output.create()
	}
	if closeErr := output.Close(); closeErr != nil && err == nil {
		err = fmt.Errorf("closing output file: %w", closeErr)
	}
	return err
}

// Simulate writes the capture of a transaction script.
func Simulate(_ context.Context, opts options.Simulate, build Build) error {
	logger := config.CreateLogger(opts.Flags)
	PrintBanner(logger, opts.Flags, build)

	_, err := pipeline.New(logger).Simulate(opts)
	return err
}

// outputFile creates the output file on the first write, a failed decode does not leave an
// empty file behind.
type outputFile struct {
	path string
	file *os.File
}

func (o *outputFile) Write(p []byte) (int, error) {
	if o.file == nil {
		if err := o.create(); err != nil {
			return 0, err
		}
	}
	return o.file.Write(p)
}

func (o *outputFile) create() error {
	file, err := os.Create(o.path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	o.file = file
	return nil
}

// Close closes the file if it was created.
func (o *outputFile) Close() error {
	if o.file == nil {
		return nil
	}
	return o.file.Close()
}
