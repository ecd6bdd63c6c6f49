package export

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/retroenv/nanddecode/internal/results"
)

// WriteFrames writes a table of all frames and markers, ordered by packet.
func WriteFrames(w io.Writer, res *results.Results) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, "PACKET\tKIND\tSTART\tEND\tPAYLOAD"); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	for _, packet := range res.Packets() {
		for _, frame := range res.PacketFrames(packet) {
			payload := fmt.Sprintf("0x%02x", frame.Payload)
			if frame.Kind == results.Envelope {
				payload = "-"
			}
			if _, err := fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%s\n",
				packet.ID, frame.Kind, frame.Start, frame.End, payload); err != nil {
				return fmt.Errorf("writing frame: %w", err)
			}
		}
	}

	markers := res.Markers()
	if len(markers) > 0 {
		if _, err := fmt.Fprintln(tw, "\nCHANNEL\tMARKER\tSAMPLE"); err != nil {
			return fmt.Errorf("writing marker header: %w", err)
		}
	}
	for _, marker := range markers {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%d\n", marker.Channel, marker.Kind, marker.Sample); err != nil {
			return fmt.Errorf("writing marker: %w", err)
		}
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing frame table: %w", err)
	}
	return nil
}
