package decoder

//go:generate mockgen -destination mock_channel_test.go -package $GOPACKAGE -write_package_comment=false github.com/retroenv/nanddecode/internal/channel Cursor

import (
	"errors"
	"testing"

	"github.com/retroenv/nanddecode/internal/channel"
	"github.com/retroenv/retrogolib/assert"
	"go.uber.org/mock/gomock"
)

func TestSamplerComposesAssignedLines(t *testing.T) {
	ctrl := gomock.NewController(t)

	states := map[int]channel.BitState{
		0: channel.High,
		2: channel.Low,
		3: channel.High,
		7: channel.High,
	}

	var s sampler
	for _, index := range []int{0, 2, 3, 7} {
		cursor := NewMockCursor(ctrl)
		cursor.EXPECT().AdvanceToAbsoluteSample(uint64(42)).Return(nil)
		cursor.EXPECT().State().Return(states[index])
		s.lines = append(s.lines, dataLine{index: index, cursor: cursor})
	}

	value, err := s.sampleByte(42)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x89), value)
}

func TestSamplerPropagatesCursorErrors(t *testing.T) {
	ctrl := gomock.NewController(t)

	first := NewMockCursor(ctrl)
	first.EXPECT().AdvanceToAbsoluteSample(uint64(7)).Return(nil)
	first.EXPECT().State().Return(channel.High)

	second := NewMockCursor(ctrl)
	second.EXPECT().AdvanceToAbsoluteSample(uint64(7)).Return(channel.ErrBackward)

	s := sampler{lines: []dataLine{
		{index: 0, cursor: first},
		{index: 5, cursor: second},
	}}

	_, err := s.sampleByte(7)
	assert.True(t, errors.Is(err, channel.ErrBackward))
	assert.ErrorContains(t, err, "DQ[5]")
}

func TestSamplerWithoutLines(t *testing.T) {
	var s sampler
	value, err := s.sampleByte(100)
	assert.NoError(t, err)
	assert.Equal(t, byte(0), value)
}
