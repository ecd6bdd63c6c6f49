// Package channel provides forward-only cursors over the sample streams of digital channels.
package channel

import (
	"errors"
	"math"
	"strconv"
)

// NoEdge is returned by NextEdge when a channel has no further transitions.
const NoEdge uint64 = math.MaxUint64

var (
	// ErrEndOfStream is returned when a cursor runs out of edges or samples.
	ErrEndOfStream = errors.New("end of stream")
	// ErrBackward is returned when a cursor is asked to move to an earlier sample.
	ErrBackward = errors.New("cursor can not move backward")
)

// ID identifies a physical channel of a capture.
type ID int

// Unassigned marks a role that is not backed by any physical channel.
const Unassigned ID = -1

// Assigned returns whether the ID references a physical channel.
func (id ID) Assigned() bool {
	return id >= 0
}

func (id ID) String() string {
	if !id.Assigned() {
		return "unassigned"
	}
	return strconv.Itoa(int(id))
}

// BitState is the logic level of a digital channel.
type BitState uint8

const (
	Low BitState = iota
	High
)

func (s BitState) String() string {
	if s == High {
		return "HIGH"
	}
	return "LOW"
}

// Invert returns the opposite logic level.
func (s BitState) Invert() BitState {
	return s ^ 1
}

// Cursor is a read-only forward-only view over the sample stream of one channel.
// No operation ever moves the cursor to an earlier sample.
type Cursor interface {
	// State returns the bit state at the current sample.
	State() BitState
	// Sample returns the current sample index.
	Sample() uint64
	// AdvanceToNextEdge moves the cursor to the sample of the next transition.
	// It returns ErrEndOfStream if the channel has no more transitions.
	AdvanceToNextEdge() error
	// NextEdge returns the sample of the next transition without moving the cursor,
	// or NoEdge if the channel has no more transitions.
	NextEdge() uint64
	// HasMoreEdges returns whether a transition follows the current sample.
	HasMoreEdges() bool
	// AdvanceToAbsoluteSample moves the cursor to exactly the given sample, which must not
	// be before the current sample.
	AdvanceToAbsoluteSample(sample uint64) error
}

// Source provides a cursor positioned at the start of the capture for a physical channel.
type Source interface {
	Cursor(id ID) (Cursor, error)
}
