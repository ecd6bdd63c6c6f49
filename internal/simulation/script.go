package simulation

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
)

var sectionKinds = map[string]CycleKind{
	"CMD":    Command,
	"ADDR":   Address,
	"DATA":   Data,
	"STROBE": Strobe,
}

// ParseTransaction parses a transaction from its text form, which uses the sections of the
// decoder text export, for example "CMD:00 ADDR:0102 DATA:aabb". Sections are applied in
// the given order, each byte of a section becomes one cycle. STROBE sections produce WE_n
// strobes without CLE or ALE asserted.
func ParseTransaction(line string) (Transaction, error) {
	var transaction Transaction

	for _, section := range strings.Fields(line) {
		name, value, ok := strings.Cut(section, ":")
		if !ok {
			return nil, fmt.Errorf("section '%s' is missing a ':'", section)
		}
		kind, ok := sectionKinds[strings.ToUpper(name)]
		if !ok {
			return nil, fmt.Errorf("unknown section '%s'", name)
		}
		data, err := hex.DecodeString(value)
		if err != nil {
			return nil, fmt.Errorf("decoding section '%s': %w", section, err)
		}
		if len(data) == 0 {
			return nil, fmt.Errorf("section '%s' has no bytes", section)
		}
		for _, b := range data {
			transaction = append(transaction, Cycle{Kind: kind, Value: b})
		}
	}
	return transaction, nil
}

// ReadScript reads one transaction per line. Empty lines and lines starting with # are
// skipped.
func ReadScript(r io.Reader) ([]Transaction, error) {
	var transactions []Transaction

	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		transaction, err := ParseTransaction(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		transactions = append(transactions, transaction)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return transactions, nil
}
