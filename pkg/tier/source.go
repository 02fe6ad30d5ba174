package tier

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// Source defines how tiers are loaded into a Catalog.
type Source interface {
	Load(ctx context.Context) (map[ID]Tier, error)
}

// StaticSource is a Source backed by an in-memory tier map.
type StaticSource map[ID]Tier

// Load returns a copy of the tier map so the catalog owns its data.
func (s StaticSource) Load(_ context.Context) (map[ID]Tier, error) {
	return maps.Clone(map[ID]Tier(s)), nil
}

// FileSource loads tiers from a YAML file. Pricing or limit changes ship as
// a data deployment rather than a code change.
//
// Expected document shape:
//
//	tiers:
//	  - id: pulse
//	    name: Pulse
//	    monitors: 15
//	    min_check_interval: 180
//	    ...
type FileSource string

// Load reads and parses the YAML catalog file.
func (s FileSource) Load(_ context.Context) (map[ID]Tier, error) {
	raw, err := os.ReadFile(string(s))
	if err != nil {
		return nil, fmt.Errorf("read tier catalog %s: %w", string(s), err)
	}

	var doc struct {
		Tiers []Tier `yaml:"tiers"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse tier catalog %s: %w", string(s), err)
	}

	tiers := make(map[ID]Tier, len(doc.Tiers))
	for _, t := range doc.Tiers {
		if _, exists := tiers[t.ID]; exists {
			return nil, errors.Join(ErrInvalidTierConfiguration,
				fmt.Errorf("duplicate tier id %q in %s", t.ID, string(s)))
		}
		tiers[t.ID] = t
	}
	return tiers, nil
}
