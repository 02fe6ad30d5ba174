package tier

import (
	"context"
	"errors"
	"fmt"
)

// Catalog is an immutable tier lookup. Build one at startup with NewCatalog
// or Default and share it freely; it is safe for concurrent reads because it
// is never mutated after construction.
type Catalog struct {
	tiers map[ID]Tier
}

// NewCatalog loads tiers from the given source and validates them.
func NewCatalog(ctx context.Context, src Source) (*Catalog, error) {
	if src == nil {
		panic("tier: Source is required")
	}

	tiers, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadTiers, err)
	}

	if len(tiers) == 0 {
		return nil, errors.Join(ErrInvalidTierConfiguration, errors.New("catalog has no tiers"))
	}

	if err := validateTiers(tiers); err != nil {
		return nil, err
	}

	return &Catalog{tiers: tiers}, nil
}

// Default returns the built-in catalog with the pulse and vital tiers.
func Default() *Catalog {
	c, err := NewCatalog(context.Background(), StaticSource(defaultTiers()))
	if err != nil {
		// The built-in data is validated by tests; failing here means the
		// defaults themselves are broken.
		panic(err)
	}
	return c
}

// Get returns the tier for the given id.
// Returns ErrTierNotFound for unknown ids.
func (c *Catalog) Get(id ID) (Tier, error) {
	t, ok := c.tiers[id]
	if !ok {
		return Tier{}, ErrTierNotFound
	}
	return t, nil
}

// IDs returns the ids of all tiers in the catalog.
func (c *Catalog) IDs() []ID {
	ids := make([]ID, 0, len(c.tiers))
	for id := range c.tiers {
		ids = append(ids, id)
	}
	return ids
}

func defaultTiers() map[ID]Tier {
	return map[ID]Tier{
		Pulse: {
			ID:               Pulse,
			Name:             "Pulse",
			Monitors:         15,
			MinCheckInterval: 180,
			StatusPages:      1,
			HistoryDays:      30,
			Webhooks:         false,
			APIAccess:        false,
			MonthlyPrice:     Money{Amount: 900, Currency: "USD"},
			YearlyPrice:      Money{Amount: 9000, Currency: "USD"},
		},
		Vital: {
			ID:               Vital,
			Name:             "Vital",
			Monitors:         75,
			MinCheckInterval: 60,
			StatusPages:      5,
			HistoryDays:      90,
			Webhooks:         true,
			APIAccess:        true,
			MonthlyPrice:     Money{Amount: 2900, Currency: "USD"},
			YearlyPrice:      Money{Amount: 29000, Currency: "USD"},
		},
	}
}

// validateTiers catches configuration mistakes early so a broken catalog
// prevents startup instead of surfacing as odd quota decisions at runtime.
func validateTiers(tiers map[ID]Tier) error {
	for id, t := range tiers {
		if id == "" || t.ID == "" {
			return errors.Join(ErrInvalidTierConfiguration,
				fmt.Errorf("tier with empty id (map key %q)", id))
		}
		if t.ID != id {
			return errors.Join(ErrInvalidTierConfiguration,
				fmt.Errorf("tier id mismatch: map key %s != tier.ID %s", id, t.ID))
		}
		if t.Monitors < 0 || t.StatusPages < 0 || t.HistoryDays < 0 {
			return errors.Join(ErrInvalidTierConfiguration,
				fmt.Errorf("tier %s has a negative limit", id))
		}
		if t.MinCheckInterval <= 0 {
			return errors.Join(ErrInvalidTierConfiguration,
				fmt.Errorf("tier %s has non-positive check interval: %d", id, t.MinCheckInterval))
		}
	}
	return nil
}
