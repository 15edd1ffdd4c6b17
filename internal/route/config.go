package route

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// LoadTable reads a routing table override from a YAML file. Chains omitted
// from the file keep their defaults, so an override can adjust a single tier.
func LoadTable(path string) (Table, error) {
	table := DefaultTable()

	data, err := os.ReadFile(path)
	if err != nil {
		return table, eris.Wrapf(err, "route: read table %s", path)
	}

	// The YAML has a top-level "routing" key.
	var wrapper struct {
		Routing Table `yaml:"routing"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return table, eris.Wrap(err, "route: parse table")
	}

	if len(wrapper.Routing.Free) > 0 {
		table.Free = wrapper.Routing.Free
	}
	if len(wrapper.Routing.Basic) > 0 {
		table.Basic = wrapper.Routing.Basic
	}
	if len(wrapper.Routing.Standard) > 0 {
		table.Standard = wrapper.Routing.Standard
	}
	if len(wrapper.Routing.Business) > 0 {
		table.Business = wrapper.Routing.Business
	}

	return table, nil
}
