// Package export implements the output formats of a decode run: the packet text export, a
// tabular frame listing and a SQLite database.
package export

import "github.com/retroenv/nanddecode/internal/results"

// Transaction is the content of one chip-select window, aggregated from its frames.
type Transaction struct {
	Start uint64 // first sample of the chip-select window
	End   uint64 // last sample of the chip-select window

	HasCommand bool
	Command    byte
	Address    []byte
	Data       []byte
}

// Aggregate groups a frame sequence into transactions. A transaction collects the frames up
// to and including the next Envelope frame, frames after the last Envelope are discarded.
// If a window contains multiple commands, the first one is used.
func Aggregate(frames []results.Frame) []Transaction {
	var transactions []Transaction
	var current Transaction

	for _, frame := range frames {
		switch frame.Kind {
		case results.Command:
			if !current.HasCommand {
				current.HasCommand = true
				current.Command = frame.Payload
			}
		case results.Address:
			current.Address = append(current.Address, frame.Payload)
		case results.Data:
			current.Data = append(current.Data, frame.Payload)
		case results.Envelope:
			current.Start = frame.Start
			current.End = frame.End
			transactions = append(transactions, current)
			current = Transaction{}
		}
	}
	return transactions
}
