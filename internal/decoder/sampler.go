package decoder

import (
	"fmt"

	"github.com/retroenv/nanddecode/internal/channel"
)

// dataLine is an assigned data line, bit index is the DQ number.
type dataLine struct {
	index  int
	cursor channel.Cursor
}

// sampler composes the assigned data lines into bytes. Unassigned lines read as 0.
type sampler struct {
	lines []dataLine
}

// sampleByte reads all data lines at the same sample, DQ0 is the least significant bit.
func (s *sampler) sampleByte(sample uint64) (byte, error) {
	var value byte
	for _, line := range s.lines {
		if err := line.cursor.AdvanceToAbsoluteSample(sample); err != nil {
			return 0, fmt.Errorf("synchronizing DQ[%d]: %w", line.index, err)
		}
		if line.cursor.State() == channel.High {
			value |= 1 << line.index
		}
	}
	return value, nil
}
