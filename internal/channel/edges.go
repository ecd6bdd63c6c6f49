package channel

import (
	"errors"
	"fmt"
	"sort"
)

// Edges is the recorded sample stream of one channel, stored as its initial state and the
// strictly increasing sample indices at which the state toggles.
type Edges struct {
	initial     BitState
	transitions []uint64
	length      uint64
}

// NewEdges returns an empty stream of the given sample count that starts in the initial state.
func NewEdges(initial BitState, length uint64) *Edges {
	return &Edges{
		initial: initial,
		length:  length,
	}
}

// Initial returns the state at sample 0.
func (e *Edges) Initial() BitState {
	return e.initial
}

// Len returns the number of samples of the stream.
func (e *Edges) Len() uint64 {
	return e.length
}

// Transitions returns the samples at which the state toggles.
func (e *Edges) Transitions() []uint64 {
	return e.transitions
}

// Toggle records a transition at the given sample.
func (e *Edges) Toggle(sample uint64) error {
	if sample == 0 {
		return errors.New("transition at sample 0, use the initial state instead")
	}
	if sample >= e.length {
		return fmt.Errorf("transition at sample %d is outside of the stream length %d", sample, e.length)
	}
	if n := len(e.transitions); n > 0 && sample <= e.transitions[n-1] {
		return fmt.Errorf("transition at sample %d is not after the previous one at %d",
			sample, e.transitions[n-1])
	}
	e.transitions = append(e.transitions, sample)
	return nil
}

// Set records the state from the given sample on, adding a transition if the state changes.
// Samples have to be set in increasing order.
func (e *Edges) Set(sample uint64, state BitState) error {
	if sample == 0 {
		if len(e.transitions) > 0 {
			return errors.New("initial state set after transitions")
		}
		e.initial = state
		return nil
	}
	if e.StateAt(sample) == state {
		return nil
	}
	return e.Toggle(sample)
}

// StateAt returns the state at the given sample.
func (e *Edges) StateAt(sample uint64) BitState {
	toggles := sort.Search(len(e.transitions), func(i int) bool {
		return e.transitions[i] > sample
	})
	return e.initial ^ BitState(toggles&1)
}

// Cursor returns a new cursor positioned at sample 0.
func (e *Edges) Cursor() Cursor {
	return &edgeCursor{
		edges: e,
		state: e.initial,
	}
}

type edgeCursor struct {
	edges  *Edges
	sample uint64
	state  BitState
	next   int // index of the next transition
}

func (c *edgeCursor) State() BitState {
	return c.state
}

func (c *edgeCursor) Sample() uint64 {
	return c.sample
}

func (c *edgeCursor) AdvanceToNextEdge() error {
	if !c.HasMoreEdges() {
		return ErrEndOfStream
	}
	c.sample = c.edges.transitions[c.next]
	c.state = c.state.Invert()
	c.next++
	return nil
}

func (c *edgeCursor) NextEdge() uint64 {
	if !c.HasMoreEdges() {
		return NoEdge
	}
	return c.edges.transitions[c.next]
}

func (c *edgeCursor) HasMoreEdges() bool {
	return c.next < len(c.edges.transitions)
}

func (c *edgeCursor) AdvanceToAbsoluteSample(sample uint64) error {
	if sample < c.sample {
		return fmt.Errorf("%w: at sample %d, requested %d", ErrBackward, c.sample, sample)
	}
	if sample >= c.edges.length {
		return ErrEndOfStream
	}

	remaining := c.edges.transitions[c.next:]
	passed := sort.Search(len(remaining), func(i int) bool {
		return remaining[i] > sample
	})
	c.next += passed
	c.state ^= BitState(passed & 1)
	c.sample = sample
	return nil
}
