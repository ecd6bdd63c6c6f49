package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/nanddecode/internal/channel"
)

// Save serializes the assignment as whitespace separated channel numbers in role order,
// using -1 for unassigned roles.
func (c Channels) Save() string {
	fields := make([]string, roleCount)
	for i, id := range c.ids {
		fields[i] = strconv.Itoa(int(id))
	}
	return strings.Join(fields, " ")
}

// Load parses an assignment written by Save.
func Load(archive string) (Channels, error) {
	fields := strings.Fields(archive)
	if len(fields) != roleCount {
		return Channels{}, fmt.Errorf("expected %d channel entries but found %d", roleCount, len(fields))
	}

	c := New()
	for i, field := range fields {
		value, err := strconv.Atoi(field)
		if err != nil {
			return Channels{}, fmt.Errorf("parsing channel of %s: %w", Role(i), err)
		}
		if value < int(channel.Unassigned) {
			return Channels{}, fmt.Errorf("invalid channel %d for %s", value, Role(i))
		}
		c.ids[i] = channel.ID(value)
	}
	return c, nil
}
