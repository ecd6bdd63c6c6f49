// Package decoder implements the NAND bus decoder. It walks the chip-select windows of a
// capture and merges the WE_n clocked command and address cycles with the DQS clocked data
// cycles into one ordered sequence of frames.
package decoder

import (
	"context"
	"errors"
	"fmt"

	"github.com/retroenv/nanddecode/internal/channel"
	"github.com/retroenv/nanddecode/internal/results"
	"github.com/retroenv/nanddecode/internal/settings"
	"github.com/retroenv/retrogolib/log"
)

// Sink receives the output of a decode run.
type Sink interface {
	AddFrame(frame results.Frame)
	AddMarker(marker results.Marker)
	CommitPacket()
	ReportProgress(sample uint64)
}

// Decoder decodes one capture. It owns its channel cursors exclusively and is not safe for
// concurrent use.
type Decoder struct {
	logger   *log.Logger
	channels settings.Channels
	sink     Sink

	ceN channel.Cursor
	cle channel.Cursor
	ale channel.Cursor
	weN channel.Cursor
	dqs channel.Cursor

	sampler sampler
	emitter emitter
}

// New validates the channel configuration and creates a decoder reading the channels of the
// source. Invalid configurations are rejected before any channel is touched.
func New(logger *log.Logger, channels settings.Channels, source channel.Source, sink Sink) (*Decoder, error) {
	if err := channels.Validate(); err != nil {
		return nil, err
	}

	d := &Decoder{
		logger:   logger,
		channels: channels,
		sink:     sink,
		emitter:  emitter{sink: sink},
	}

	control := []struct {
		role   settings.Role
		cursor *channel.Cursor
	}{
		{settings.CEn, &d.ceN},
		{settings.CLE, &d.cle},
		{settings.ALE, &d.ale},
		{settings.WEn, &d.weN},
		{settings.DQS, &d.dqs},
	}
	for _, c := range control {
		cursor, err := source.Cursor(channels.Get(c.role))
		if err != nil {
			return nil, fmt.Errorf("opening channel of %s: %w", c.role, err)
		}
		*c.cursor = cursor
	}

	for i := range settings.DataWidth {
		id := channels.Data(i)
		if !id.Assigned() {
			continue
		}
		cursor, err := source.Cursor(id)
		if err != nil {
			return nil, fmt.Errorf("opening channel of %s: %w", settings.DataRole(i), err)
		}
		d.sampler.lines = append(d.sampler.lines, dataLine{index: i, cursor: cursor})
	}

	return d, nil
}

// Run decodes chip-select cycles until the capture is exhausted or the context is cancelled.
// Reaching the end of the capture is the regular end of a run and returns nil, a partially
// captured cycle is dropped. On cancellation the context error is returned, all packets
// committed before stay valid.
func (d *Decoder) Run(ctx context.Context) error {
	for cycles := 0; ; cycles++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := d.scanCycle(ctx)
		switch {
		case err == nil:
		case errors.Is(err, channel.ErrEndOfStream):
			d.logger.Debug("End of capture reached", log.Int("cycles", cycles))
			return nil
		default:
			return err
		}
	}
}

// Start runs the decoder in a background worker. The returned channel receives the result
// of Run and is closed afterwards.
func (d *Decoder) Start(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- d.Run(ctx)
	}()
	return done
}
