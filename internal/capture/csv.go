package capture

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/retroenv/nanddecode/internal/channel"
)

const sampleColumn = "sample"

var channelNumber = regexp.MustCompile(`(\d+)\s*$`)

// Options control how a transition CSV is read.
type Options struct {
	// SampleRate converts a time column in seconds to sample indices. It is required when
	// the first column is not a sample column.
	SampleRate float64
}

// Read parses a transition CSV. The first column holds the sample index, or the time in
// seconds when its header starts with "time". Every further column is a channel whose
// number is taken from the trailing digits of its header, for example "3" or "Channel 3".
// Each row lists the channel states from that sample on. The first row has to start at
// sample 0 and the last row defines the final sample of the capture.
func Read(r io.Reader, opts Options) (*Capture, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", ErrInvalidCapture, err)
	}
	ids, timeBased, err := parseHeader(header, opts)
	if err != nil {
		return nil, err
	}

	type row struct {
		sample uint64
		states []channel.BitState
	}
	var rows []row

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCapture, err)
		}
		line, _ := reader.FieldPos(0)

		sample, err := parseSample(record[0], timeBased, opts.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidCapture, line, err)
		}
		if len(rows) == 0 && sample != 0 {
			return nil, fmt.Errorf("%w: line %d: first row starts at sample %d instead of 0",
				ErrInvalidCapture, line, sample)
		}
		if len(rows) > 0 && sample <= rows[len(rows)-1].sample {
			return nil, fmt.Errorf("%w: line %d: sample %d is not after the previous row",
				ErrInvalidCapture, line, sample)
		}

		states := make([]channel.BitState, len(ids))
		for i, field := range record[1:] {
			state, err := parseState(field)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrInvalidCapture, line, err)
			}
			states[i] = state
		}
		rows = append(rows, row{sample: sample, states: states})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no samples", ErrInvalidCapture)
	}

	c := New(rows[len(rows)-1].sample + 1)
	for i, id := range ids {
		edges, err := c.AddChannel(id, rows[0].states[i])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidCapture, err)
		}
		for _, r := range rows[1:] {
			if err := edges.Set(r.sample, r.states[i]); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrInvalidCapture, err)
			}
		}
	}
	return c, nil
}

// LoadFile reads a transition CSV file.
func LoadFile(path string, opts Options) (*Capture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening capture file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	c, err := Read(file, opts)
	if err != nil {
		return nil, fmt.Errorf("reading capture file %s: %w", path, err)
	}
	return c, nil
}

func parseHeader(header []string, opts Options) ([]channel.ID, bool, error) {
	if len(header) < 2 {
		return nil, false, fmt.Errorf("%w: header needs a sample column and at least one channel", ErrInvalidCapture)
	}

	first := strings.ToLower(strings.TrimSpace(header[0]))
	timeBased := strings.HasPrefix(first, "time")
	switch {
	case timeBased && opts.SampleRate <= 0:
		return nil, false, fmt.Errorf("%w: time based capture requires a sample rate", ErrInvalidCapture)
	case !timeBased && first != sampleColumn:
		return nil, false, fmt.Errorf("%w: unsupported first column '%s'", ErrInvalidCapture, header[0])
	}

	ids := make([]channel.ID, 0, len(header)-1)
	seen := make(map[channel.ID]struct{}, len(header)-1)
	for _, name := range header[1:] {
		match := channelNumber.FindStringSubmatch(name)
		if match == nil {
			return nil, false, fmt.Errorf("%w: column '%s' has no channel number", ErrInvalidCapture, name)
		}
		number, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, false, fmt.Errorf("%w: column '%s': %w", ErrInvalidCapture, name, err)
		}
		id := channel.ID(number)
		if _, ok := seen[id]; ok {
			return nil, false, fmt.Errorf("%w: channel %d is listed twice", ErrInvalidCapture, number)
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, timeBased, nil
}

func parseSample(field string, timeBased bool, sampleRate float64) (uint64, error) {
	if !timeBased {
		sample, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing sample '%s': %w", field, err)
		}
		return sample, nil
	}

	seconds, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing time '%s': %w", field, err)
	}
	if seconds < 0 {
		return 0, fmt.Errorf("negative time '%s'", field)
	}
	return uint64(math.Round(seconds * sampleRate)), nil
}

func parseState(field string) (channel.BitState, error) {
	switch field {
	case "0":
		return channel.Low, nil
	case "1":
		return channel.High, nil
	default:
		return channel.Low, fmt.Errorf("invalid channel state '%s'", field)
	}
}

// Write stores the capture as a transition CSV with a sample column, one row for every sample
// at which any channel changes and a final row for the last sample.
func Write(w io.Writer, c *Capture) error {
	ids := c.IDs()
	writer := csv.NewWriter(w)

	header := make([]string, 0, len(ids)+1)
	header = append(header, sampleColumn)
	for _, id := range ids {
		header = append(header, id.String())
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, sample := range c.changeSamples() {
		record := make([]string, 0, len(ids)+1)
		record = append(record, strconv.FormatUint(sample, 10))
		for _, id := range ids {
			record = append(record, strconv.Itoa(int(c.channels[id].StateAt(sample))))
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing sample %d: %w", sample, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing capture: %w", err)
	}
	return nil
}

// WriteFile stores the capture as a transition CSV file.
func WriteFile(path string, c *Capture) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating capture file %s: %w", path, err)
	}
	if err := Write(file, c); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing capture file %s: %w", path, err)
	}
	return nil
}

// changeSamples returns sample 0, every transition sample of all channels and the last
// sample of the capture, sorted and without duplicates.
func (c *Capture) changeSamples() []uint64 {
	samples := map[uint64]struct{}{0: {}}
	if c.length > 0 {
		samples[c.length-1] = struct{}{}
	}
	for _, edges := range c.channels {
		for _, sample := range edges.Transitions() {
			samples[sample] = struct{}{}
		}
	}

	sorted := make([]uint64, 0, len(samples))
	for sample := range samples {
		sorted = append(sorted, sample)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return sorted
}
