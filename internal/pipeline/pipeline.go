// Package pipeline orchestrates the decode and simulation workflows.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/retroenv/nanddecode/internal/capture"
	"github.com/retroenv/nanddecode/internal/decoder"
	"github.com/retroenv/nanddecode/internal/export"
	"github.com/retroenv/nanddecode/internal/monitor"
	"github.com/retroenv/nanddecode/internal/options"
	"github.com/retroenv/nanddecode/internal/results"
	"github.com/retroenv/nanddecode/internal/settings"
	"github.com/retroenv/nanddecode/internal/simulation"
	"github.com/retroenv/retrogolib/log"
	"github.com/rs/xid"
)

// Pipeline orchestrates the complete decode workflow.
type Pipeline struct {
	logger *log.Logger
}

// New creates a new pipeline.
func New(logger *log.Logger) *Pipeline {
	return &Pipeline{
		logger: logger,
	}
}

// LoadChannels returns the channel assignment selected by the options.
func LoadChannels(opts options.Channels) (settings.Channels, error) {
	switch {
	case opts.Archive != "":
		channels, err := settings.Load(opts.Archive)
		if err != nil {
			return settings.Channels{}, fmt.Errorf("parsing channel assignment: %w", err)
		}
		return channels, nil

	case opts.File != "":
		channels, err := settings.LoadFile(opts.File)
		if err != nil {
			return settings.Channels{}, fmt.Errorf("loading channel file: %w", err)
		}
		return channels, nil

	default:
		return settings.Default(), nil
	}
}

// Decode loads the capture file and decodes it.
func (p *Pipeline) Decode(ctx context.Context, opts options.Decode, writer io.Writer) (*results.Results, error) {
	channels, err := LoadChannels(opts.Channels)
	if err != nil {
		return nil, err
	}
	if err := channels.Validate(); err != nil {
		return nil, err
	}

	c, err := capture.LoadFile(opts.Input, capture.Options{SampleRate: opts.SampleRate})
	if err != nil {
		return nil, fmt.Errorf("loading capture: %w", err)
	}

	return p.DecodeCapture(ctx, c, channels, opts, writer)
}

// DecodeCapture decodes an already loaded capture, writes the selected outputs and
// returns the results. On cancellation the packets committed so far are returned together
// with the context error.
func (p *Pipeline) DecodeCapture(ctx context.Context, c *capture.Capture, channels settings.Channels,
	opts options.Decode, writer io.Writer) (*results.Results, error) {

	res := results.New()
	dec, err := decoder.New(p.logger, channels, c, res)
	if err != nil {
		return nil, fmt.Errorf("creating decoder: %w", err)
	}

	runID := xid.New()
	run := monitor.Run{
		ID:          runID.String(),
		Source:      opts.Input,
		SampleCount: c.Len(),
		StartTime:   time.Now(),
	}

	var mon *monitor.Monitor
	if opts.Monitor {
		mon, err = p.startMonitor(ctx, opts.MonitorPort, run, res)
		if err != nil {
			return nil, err
		}
	}

	p.logger.Info("Decoding capture",
		log.String("run", run.ID),
		log.String("file", opts.Input),
		log.Uint64("samples", c.Len()),
		log.Int("channels", len(c.IDs())))

	err = <-dec.Start(ctx)
	if mon != nil {
		mon.CompleteRun(err)
	}
	if err != nil {
		return res, fmt.Errorf("decoding: %w", err)
	}

	frames, packets, markers := res.Counts()
	p.logger.Info("Decoding finished",
		log.Int("frames", frames),
		log.Int("packets", packets),
		log.Int("markers", markers),
		log.String("duration", time.Since(run.StartTime).Round(time.Millisecond).String()))

	if err := p.writeOutputs(opts, runID, res, c.Len(), writer); err != nil {
		return res, err
	}
	return res, nil
}

func (p *Pipeline) startMonitor(ctx context.Context, port int, run monitor.Run,
	res *results.Results) (*monitor.Monitor, error) {

	mon := monitor.New(p.logger).WithPortNumber(port)
	mon.RegisterRun(run, res)
	if _, err := mon.StartServer(ctx); err != nil {
		return nil, fmt.Errorf("starting monitor: %w", err)
	}
	return mon, nil
}

func (p *Pipeline) writeOutputs(opts options.Decode, runID xid.ID, res *results.Results, sampleCount uint64,
	writer io.Writer) error {

	if opts.Frames {
		if err := export.WriteFrames(writer, res); err != nil {
			return fmt.Errorf("writing frame table: %w", err)
		}
	} else {
		if err := export.WriteText(writer, export.Aggregate(res.Frames())); err != nil {
			return fmt.Errorf("writing text export: %w", err)
		}
	}

	if !opts.SQLite {
		return nil
	}

	db := export.NewSQLiteWriter(p.logger, opts.Database, runID)
	if err := db.Init(opts.Input, sampleCount); err != nil {
		return fmt.Errorf("creating database: %w", err)
	}
	if err := db.WriteResults(res); err != nil {
		_ = db.Close()
		return fmt.Errorf("writing database: %w", err)
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	p.logger.Info("Results stored", log.String("database", db.Path()), log.String("run", db.RunID()))
	return nil
}

// Simulate synthesizes a capture from the transactions of the script file.
func (p *Pipeline) Simulate(opts options.Simulate) (*capture.Capture, error) {
	channels, err := LoadChannels(opts.Channels)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(opts.Script)
	if err != nil {
		return nil, fmt.Errorf("opening script: %w", err)
	}
	defer func() { _ = file.Close() }()

	transactions, err := simulation.ReadScript(file)
	if err != nil {
		return nil, fmt.Errorf("reading script %s: %w", opts.Script, err)
	}

	timing := simulation.Timing{
		Idle:   opts.Idle,
		Setup:  opts.Setup,
		Strobe: opts.Strobe,
		Hold:   opts.Hold,
		Half:   opts.Half,
	}
	c, err := simulation.Generate(channels, timing, transactions...)
	if err != nil {
		return nil, fmt.Errorf("simulating: %w", err)
	}

	p.logger.Info("Capture simulated",
		log.Int("transactions", len(transactions)),
		log.Uint64("samples", c.Len()))

	if opts.Output != "" {
		if err := capture.WriteFile(opts.Output, c); err != nil {
			return nil, fmt.Errorf("writing capture: %w", err)
		}
	}
	return c, nil
}
