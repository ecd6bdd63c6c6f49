package decoder

import (
	"context"
	"fmt"

	"github.com/retroenv/nanddecode/internal/channel"
	"github.com/retroenv/nanddecode/internal/results"
	"github.com/retroenv/nanddecode/internal/settings"
	"github.com/retroenv/retrogolib/log"
)

// cycle is one chip-select window [fall, rise).
type cycle struct {
	fall uint64
	rise uint64

	commandSeen bool // a command frame was emitted in this window
}

// scanCycle decodes the next chip-select window and commits it as one packet.
func (d *Decoder) scanCycle(ctx context.Context) error {
	if d.ceN.State() == channel.High {
		if err := d.ceN.AdvanceToNextEdge(); err != nil {
			return err
		}
	}

	c := &cycle{
		fall: d.ceN.Sample(),
	}

	// control strobes of the previous window or of the idle bus must not leak into this one
	if err := d.weN.AdvanceToAbsoluteSample(c.fall); err != nil {
		return fmt.Errorf("synchronizing WE_n: %w", err)
	}
	if err := d.dqs.AdvanceToAbsoluteSample(c.fall); err != nil {
		return fmt.Errorf("synchronizing DQS: %w", err)
	}

	if err := d.ceN.AdvanceToNextEdge(); err != nil {
		return err
	}
	c.rise = d.ceN.Sample()

	if err := d.dispatch(ctx, c); err != nil {
		return err
	}

	d.emitter.emit(results.Envelope, c.fall, c.rise-1, 0)
	d.sink.CommitPacket()

	d.logger.Debug("Chip-select cycle",
		log.Uint64("fall", c.fall),
		log.Uint64("rise", c.rise))
	return nil
}

// dispatch merges the WE_n and DQS edges of one chip-select window. WE_n edges always take
// precedence over DQS edges at the same sample, and DQS edges are only considered once a
// command byte has been latched in the window.
func (d *Decoder) dispatch(ctx context.Context, c *cycle) error {
	for {
		weNext := d.weN.NextEdge()
		candidate := weNext
		if c.commandSeen {
			candidate = min(weNext, d.dqs.NextEdge())
		}
		if candidate >= c.rise {
			return nil
		}

		if err := d.weN.AdvanceToAbsoluteSample(candidate); err != nil {
			return fmt.Errorf("synchronizing WE_n: %w", err)
		}
		if err := d.dqs.AdvanceToAbsoluteSample(candidate); err != nil {
			return fmt.Errorf("synchronizing DQS: %w", err)
		}

		if d.weN.State() == channel.High {
			var err error
			if candidate != weNext {
				err = d.dataCycle(c, candidate)
			} else {
				err = d.latchCycle(c, candidate)
			}
			if err != nil {
				return err
			}
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// dataCycle decodes a DQS clocked data byte.
func (d *Decoder) dataCycle(c *cycle, sample uint64) error {
	value, err := d.sampler.sampleByte(sample)
	if err != nil {
		return err
	}

	end := c.rise - 1
	if d.dqs.HasMoreEdges() {
		end = min(end, d.dqs.NextEdge())
	}
	d.emitter.emit(results.Data, sample, end, value)

	direction := results.MarkerFalling
	if d.dqs.State() == channel.High {
		direction = results.MarkerRising
	}
	d.sink.AddMarker(results.Marker{
		Channel: d.channels.Get(settings.DQS),
		Sample:  sample,
		Kind:    direction,
	})
	return nil
}

// latchCycle decodes the byte latched by a WE_n rising edge as command or address,
// depending on CLE and ALE.
func (d *Decoder) latchCycle(c *cycle, sample uint64) error {
	if err := d.cle.AdvanceToAbsoluteSample(sample); err != nil {
		return fmt.Errorf("synchronizing CLE: %w", err)
	}
	if err := d.ale.AdvanceToAbsoluteSample(sample); err != nil {
		return fmt.Errorf("synchronizing ALE: %w", err)
	}

	var kind results.Kind
	var end uint64

	switch {
	case d.cle.State() == channel.High:
		kind = results.Command
		end = c.edgeEnd(d.cle.NextEdge())

	case d.ale.State() == channel.High:
		kind = results.Address
		end = c.edgeEnd(min(d.weN.NextEdge(), d.ale.NextEdge()))

	default:
		d.sink.AddMarker(results.Marker{
			Channel: d.channels.Get(settings.WEn),
			Sample:  sample,
			Kind:    results.MarkerError,
		})
		d.logger.Debug("WE_n rising edge without CLE or ALE asserted", log.Uint64("sample", sample))
		return nil
	}

	value, err := d.sampler.sampleByte(sample)
	if err != nil {
		return err
	}
	emitted := d.emitter.emit(kind, sample, end, value)
	if kind == results.Command && emitted {
		c.commandSeen = true
	}
	return nil
}

// edgeEnd returns the last sample before the given edge. Without a further edge the frame
// ends with the chip-select window.
func (c *cycle) edgeEnd(edge uint64) uint64 {
	if edge == channel.NoEdge {
		return c.rise - 1
	}
	return edge - 1
}
