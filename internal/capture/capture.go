// Package capture holds the recorded sample streams of a logic analyzer capture and provides
// channel cursors for them.
package capture

import (
	"errors"
	"fmt"
	"sort"

	"github.com/retroenv/nanddecode/internal/channel"
)

var (
	// ErrInvalidCapture is returned for capture data that can not be parsed.
	ErrInvalidCapture = errors.New("invalid capture")
	// ErrUnknownChannel is returned when a cursor is requested for a channel that is not
	// part of the capture.
	ErrUnknownChannel = errors.New("channel not captured")
)

var _ channel.Source = &Capture{}

// Capture is a set of digital channels sharing the same sample count.
type Capture struct {
	length   uint64
	channels map[channel.ID]*channel.Edges
}

// New returns an empty capture of the given sample count.
func New(length uint64) *Capture {
	return &Capture{
		length:   length,
		channels: make(map[channel.ID]*channel.Edges),
	}
}

// Len returns the number of samples per channel.
func (c *Capture) Len() uint64 {
	return c.length
}

// AddChannel adds an empty channel starting in the initial state and returns its edges.
func (c *Capture) AddChannel(id channel.ID, initial channel.BitState) (*channel.Edges, error) {
	if !id.Assigned() {
		return nil, fmt.Errorf("adding channel: invalid channel id %d", id)
	}
	if _, ok := c.channels[id]; ok {
		return nil, fmt.Errorf("adding channel: channel %d already exists", id)
	}
	edges := channel.NewEdges(initial, c.length)
	c.channels[id] = edges
	return edges, nil
}

// Channel returns the edges of a channel.
func (c *Capture) Channel(id channel.ID) (*channel.Edges, bool) {
	edges, ok := c.channels[id]
	return edges, ok
}

// IDs returns the captured channel ids in ascending order.
func (c *Capture) IDs() []channel.ID {
	ids := make([]channel.ID, 0, len(c.channels))
	for id := range c.channels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Cursor returns a new cursor at sample 0 of the channel.
func (c *Capture) Cursor(id channel.ID) (channel.Cursor, error) {
	edges, ok := c.channels[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, id)
	}
	return edges.Cursor(), nil
}
