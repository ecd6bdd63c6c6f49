// Package settings defines the assignment of NAND bus roles to physical capture channels,
// its validation and its persisted forms.
package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/retroenv/nanddecode/internal/channel"
	"github.com/retroenv/retrogolib/set"
)

// DataWidth is the number of parallel data lines of the bus.
const DataWidth = 8

// ErrInvalidConfiguration is returned for channel assignments that can not be decoded.
var ErrInvalidConfiguration = errors.New("invalid channel configuration")

// Role is a bus signal that can be backed by a physical channel. Roles are ordered the way
// they are persisted: CE_n, CLE, ALE, WE_n, DQS, DQ[0]..DQ[7].
type Role int

const (
	CEn Role = iota
	CLE
	ALE
	WEn
	DQS
	DQ0

	controlRoles = int(DQ0)
	roleCount    = controlRoles + DataWidth
)

// DataRole returns the role of data line i.
func DataRole(i int) Role {
	return DQ0 + Role(i)
}

// RoleInfo describes a role for user interfaces.
type RoleInfo struct {
	Role    Role
	Name    string
	Tooltip string
}

var roles = buildRoles()

func buildRoles() []RoleInfo {
	infos := []RoleInfo{
		{Role: CEn, Name: "CE_n", Tooltip: "Chip Enable"},
		{Role: CLE, Name: "CLE", Tooltip: "Command Latch Enable"},
		{Role: ALE, Name: "ALE", Tooltip: "Address Latch Enable"},
		{Role: WEn, Name: "WE_n", Tooltip: "Write Enable"},
		{Role: DQS, Name: "DQS", Tooltip: "Data Strobe"},
	}
	for i := range DataWidth {
		infos = append(infos, RoleInfo{
			Role:    DataRole(i),
			Name:    fmt.Sprintf("DQ[%d]", i),
			Tooltip: "Data",
		})
	}
	return infos
}

// Roles returns all roles in persisted order.
func Roles() []RoleInfo {
	return roles
}

func (r Role) String() string {
	if r < 0 || int(r) >= roleCount {
		return fmt.Sprintf("role(%d)", int(r))
	}
	return roles[r].Name
}

// IsData returns whether the role is one of the data lines.
func (r Role) IsData() bool {
	return r >= DQ0 && int(r) < roleCount
}

// RoleFromName looks up a role by name. Matching ignores case and accepts data lines
// written without brackets, for example "dq3".
func RoleFromName(name string) (Role, bool) {
	key := normalizeName(name)
	for _, info := range roles {
		if normalizeName(info.Name) == key {
			return info.Role, true
		}
	}
	return 0, false
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer("[", "", "]", "").Replace(name)
}

// Channels assigns a physical channel to every role.
type Channels struct {
	ids [roleCount]channel.ID
}

// New returns a configuration with all roles unassigned.
func New() Channels {
	var c Channels
	for i := range c.ids {
		c.ids[i] = channel.Unassigned
	}
	return c
}

// Default returns the assignment that maps the roles in their order to the channels
// 0 to 12.
func Default() Channels {
	var c Channels
	for i := range c.ids {
		c.ids[i] = channel.ID(i)
	}
	return c
}

// Get returns the channel assigned to a role.
func (c Channels) Get(role Role) channel.ID {
	if role < 0 || int(role) >= roleCount {
		return channel.Unassigned
	}
	return c.ids[role]
}

// Set assigns a channel to a role.
func (c *Channels) Set(role Role, id channel.ID) {
	if role < 0 || int(role) >= roleCount {
		return
	}
	if !id.Assigned() {
		id = channel.Unassigned
	}
	c.ids[role] = id
}

// Data returns the channel assigned to data line i.
func (c Channels) Data(i int) channel.ID {
	return c.Get(DataRole(i))
}

// Validate checks that every control role is assigned, that at least one data line is
// assigned and that no physical channel backs more than one role.
func (c Channels) Validate() error {
	for _, info := range roles[:controlRoles] {
		if !c.ids[info.Role].Assigned() {
			return fmt.Errorf("%w: %s (%s) has no channel selected", ErrInvalidConfiguration, info.Name, info.Tooltip)
		}
	}

	dataLines := 0
	for i := range DataWidth {
		if c.Data(i).Assigned() {
			dataLines++
		}
	}
	if dataLines == 0 {
		return fmt.Errorf("%w: please select a channel for at least one data line", ErrInvalidConfiguration)
	}

	used := set.New[channel.ID]()
	for _, info := range roles {
		id := c.ids[info.Role]
		if !id.Assigned() {
			continue
		}
		if used.Contains(id) {
			return fmt.Errorf("%w: please select different channels for each input, channel %d is used more than once",
				ErrInvalidConfiguration, id)
		}
		used.Add(id)
	}
	return nil
}
