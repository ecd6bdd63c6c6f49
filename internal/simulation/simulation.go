// Package simulation synthesizes NAND bus captures from a list of transactions. The generated
// waveforms follow the bus timing the decoder expects and are used to exercise it without
// recorded hardware captures.
package simulation

import (
	"errors"
	"fmt"

	"github.com/retroenv/nanddecode/internal/capture"
	"github.com/retroenv/nanddecode/internal/channel"
	"github.com/retroenv/nanddecode/internal/settings"
)

// CycleKind is the type of a simulated bus cycle.
type CycleKind uint8

const (
	// Command latches a byte with CLE asserted.
	Command CycleKind = iota
	// Address latches a byte with ALE asserted.
	Address
	// Data clocks a byte with one DQS transition.
	Data
	// Strobe pulses WE_n with neither CLE nor ALE asserted.
	Strobe
)

// Cycle is one bus cycle of a transaction.
type Cycle struct {
	Kind  CycleKind
	Value byte
}

// Transaction is the sequence of cycles inside one chip-select window.
type Transaction []Cycle

// Timing defines the waveform durations in samples.
type Timing struct {
	Idle   uint64 // CE_n high time before every transaction and at the end of the capture
	Setup  uint64 // CE_n low to the first cycle
	Strobe uint64 // WE_n low pulse width
	Hold   uint64 // WE_n rising edge to CLE or ALE deassertion
	Half   uint64 // DQS half period
}

// DefaultTiming returns a timing that produces non degenerate frames for every cycle kind.
func DefaultTiming() Timing {
	return Timing{
		Idle:   20,
		Setup:  5,
		Strobe: 4,
		Hold:   4,
		Half:   4,
	}
}

func (t Timing) validate() error {
	if t.Idle == 0 || t.Setup == 0 || t.Strobe == 0 || t.Hold == 0 || t.Half == 0 {
		return errors.New("all timing values must be larger than 0")
	}
	return nil
}

// Simulator records the bus signal levels over time.
type Simulator struct {
	channels settings.Channels
	timing   Timing

	now     uint64
	changes map[settings.Role][]change
	levels  map[settings.Role]channel.BitState
}

type change struct {
	sample uint64
	state  channel.BitState
}

// New creates a simulator for the given channel assignment. The bus starts idle with CE_n,
// WE_n high and all other lines low.
func New(channels settings.Channels, timing Timing) (*Simulator, error) {
	if err := channels.Validate(); err != nil {
		return nil, err
	}
	if err := timing.validate(); err != nil {
		return nil, fmt.Errorf("invalid timing: %w", err)
	}

	s := &Simulator{
		channels: channels,
		timing:   timing,
		changes:  make(map[settings.Role][]change),
		levels:   make(map[settings.Role]channel.BitState),
	}
	for _, info := range settings.Roles() {
		if !channels.Get(info.Role).Assigned() {
			continue
		}
		initial := channel.Low
		if info.Role == settings.CEn || info.Role == settings.WEn {
			initial = channel.High
		}
		s.levels[info.Role] = initial
		s.changes[info.Role] = []change{{sample: 0, state: initial}}
	}
	return s, nil
}

// Now returns the current simulation sample.
func (s *Simulator) Now() uint64 {
	return s.now
}

// Add appends a transaction framed by a chip-select window.
func (s *Simulator) Add(transaction Transaction) error {
	s.wait(s.timing.Idle)
	s.set(settings.CEn, channel.Low)
	s.wait(s.timing.Setup)

	for i, cycle := range transaction {
		next := CycleKind(0xff)
		if i+1 < len(transaction) {
			next = transaction[i+1].Kind
		}

		switch cycle.Kind {
		case Command:
			s.latch(settings.CLE, cycle.Value, next == Command)
		case Address:
			s.latch(settings.ALE, cycle.Value, next == Address)
		case Strobe:
			s.latch(-1, cycle.Value, false)
		case Data:
			s.setData(cycle.Value)
			s.set(settings.DQS, s.levels[settings.DQS].Invert())
			s.wait(s.timing.Half)
		default:
			return fmt.Errorf("unsupported cycle kind %d", cycle.Kind)
		}
	}

	s.wait(s.timing.Setup)
	s.set(settings.CEn, channel.High)
	return nil
}

// latch drives one WE_n strobe with the latch enable line asserted. The latch enable stays
// asserted if the next cycle latches with the same line.
func (s *Simulator) latch(enable settings.Role, value byte, keepEnabled bool) {
	if enable >= 0 {
		s.set(enable, channel.High)
	}
	s.setData(value)
	s.set(settings.WEn, channel.Low)
	s.wait(s.timing.Strobe)
	s.set(settings.WEn, channel.High)
	s.wait(s.timing.Hold)
	if enable >= 0 && !keepEnabled {
		s.set(enable, channel.Low)
		s.wait(s.timing.Hold)
	}
}

func (s *Simulator) setData(value byte) {
	for i := range settings.DataWidth {
		state := channel.BitState((value >> i) & 1)
		s.set(settings.DataRole(i), state)
	}
}

func (s *Simulator) set(role settings.Role, state channel.BitState) {
	level, ok := s.levels[role]
	if !ok || level == state {
		return
	}
	s.levels[role] = state

	changes := s.changes[role]
	if last := len(changes) - 1; changes[last].sample == s.now {
		changes[last].state = state
		return
	}
	s.changes[role] = append(changes, change{sample: s.now, state: state})
}

func (s *Simulator) wait(samples uint64) {
	s.now += samples
}

// Capture returns the simulated waveforms, ending after a final idle period.
func (s *Simulator) Capture() (*capture.Capture, error) {
	c := capture.New(s.now + s.timing.Idle + 1)

	for _, info := range settings.Roles() {
		changes, ok := s.changes[info.Role]
		if !ok {
			continue
		}
		edges, err := c.AddChannel(s.channels.Get(info.Role), changes[0].state)
		if err != nil {
			return nil, fmt.Errorf("adding %s: %w", info.Name, err)
		}
		for _, ch := range changes[1:] {
			if err := edges.Set(ch.sample, ch.state); err != nil {
				return nil, fmt.Errorf("recording %s: %w", info.Name, err)
			}
		}
	}
	return c, nil
}

// Generate simulates the transactions and returns the resulting capture.
func Generate(channels settings.Channels, timing Timing, transactions ...Transaction) (*capture.Capture, error) {
	s, err := New(channels, timing)
	if err != nil {
		return nil, err
	}
	for _, transaction := range transactions {
		if err := s.Add(transaction); err != nil {
			return nil, err
		}
	}
	return s.Capture()
}
