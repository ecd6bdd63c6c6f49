// Package results holds the decoded frames, packets and markers of a decode run.
package results

import (
	"fmt"

	"github.com/retroenv/nanddecode/internal/channel"
)

// Kind is the type of a decoded frame.
type Kind uint8

const (
	Envelope Kind = iota // marks one complete chip-select window
	Command
	Address
	Data
)

var kindNames = map[Kind]string{
	Envelope: "envelope",
	Command:  "command",
	Address:  "address",
	Data:     "data",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Frame is one decoded unit. Start and End are inclusive sample indices with Start < End.
// Payload is unused for Envelope frames.
type Frame struct {
	Kind    Kind
	Start   uint64
	End     uint64
	Payload byte
}

// MarkerKind is the type of a diagnostic marker.
type MarkerKind uint8

const (
	MarkerRising MarkerKind = iota
	MarkerFalling
	MarkerError
)

func (k MarkerKind) String() string {
	switch k {
	case MarkerRising:
		return "rising"
	case MarkerFalling:
		return "falling"
	case MarkerError:
		return "error"
	default:
		return fmt.Sprintf("marker(%d)", uint8(k))
	}
}

// Marker is an advisory annotation of a channel at a sample.
type Marker struct {
	Channel channel.ID
	Sample  uint64
	Kind    MarkerKind
}

// Packet groups the frames of one chip-select cycle, referenced by their index range
// [FirstFrame, LastFrame] in the frame sequence.
type Packet struct {
	ID         uint64
	FirstFrame int
	LastFrame  int
}
