package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// String returns the export line of the transaction without the trailing newline.
func (t Transaction) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "CMD:%02x", t.Command)
	if len(t.Address) > 0 {
		fmt.Fprintf(&sb, " ADDR:%x", t.Address)
	}
	if len(t.Data) > 0 {
		fmt.Fprintf(&sb, " DATA:%x", t.Data)
	}
	return sb.String()
}

// WriteText writes one line per transaction that contains a command.
func WriteText(w io.Writer, transactions []Transaction) error {
	buf := bufio.NewWriter(w)
	for _, t := range transactions {
		if !t.HasCommand {
			continue
		}
		if _, err := fmt.Fprintln(buf, t.String()); err != nil {
			return fmt.Errorf("writing transaction: %w", err)
		}
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flushing transactions: %w", err)
	}
	return nil
}

// WriteTextFile writes the text export of the transactions to a file.
func WriteTextFile(path string, transactions []Transaction) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file %s: %w", path, err)
	}
	if err := WriteText(file, transactions); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing export file %s: %w", path, err)
	}
	return nil
}
