package settings

import (
	"fmt"
	"os"
	"sort"

	"github.com/retroenv/nanddecode/internal/channel"
	"gopkg.in/yaml.v3"
)

// File is the YAML document that stores a channel assignment:
//
//	channels:
//	  CE_n: 0
//	  CLE: 1
//	  DQ[0]: 5
type File struct {
	Channels Channels `yaml:"channels"`
}

// LoadFile reads a channel assignment from a YAML file.
func LoadFile(path string) (Channels, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Channels{}, fmt.Errorf("reading channel file %s: %w", path, err)
	}

	file := File{Channels: New()}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Channels{}, fmt.Errorf("parsing channel file %s: %w", path, err)
	}
	return file.Channels, nil
}

// WriteFile stores a channel assignment as a YAML file.
func WriteFile(path string, c Channels) error {
	data, err := yaml.Marshal(File{Channels: c})
	if err != nil {
		return fmt.Errorf("encoding channel file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing channel file %s: %w", path, err)
	}
	return nil
}

// MarshalYAML writes the assigned roles as a mapping of role name to channel number,
// in role order.
func (c Channels) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, info := range roles {
		id := c.ids[info.Role]
		if !id.Assigned() {
			continue
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: info.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: id.String()},
		)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping of role name to channel number. Roles that are not
// listed stay unassigned.
func (c *Channels) UnmarshalYAML(value *yaml.Node) error {
	var assignments map[string]int
	if err := value.Decode(&assignments); err != nil {
		return err
	}

	names := make([]string, 0, len(assignments))
	for name := range assignments {
		names = append(names, name)
	}
	sort.Strings(names)

	parsed := New()
	for _, name := range names {
		role, ok := RoleFromName(name)
		if !ok {
			return fmt.Errorf("line %d: unknown role '%s'", value.Line, name)
		}
		if parsed.ids[role].Assigned() {
			return fmt.Errorf("line %d: role %s is assigned more than once", value.Line, role)
		}
		parsed.Set(role, channel.ID(assignments[name]))
	}
	*c = parsed
	return nil
}
