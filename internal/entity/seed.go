package entity

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/vyrodovalexey/jsonapi-path-support/internal/config"
	"github.com/vyrodovalexey/jsonapi-path-support/internal/observability"
)

// Seed creates the configured fixtures that are not stored yet and
// returns how many were created. Fixtures with a UUID are matched by
// UUID, others by type, bundle and label.
func Seed(ctx context.Context, s *Storage, fixtures []config.FixtureConfig, logger observability.Logger) (int, error) {
	created := 0

	for _, f := range fixtures {
		exists, err := s.fixtureExists(ctx, f)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		e := &Entity{
			UUID:   f.UUID,
			TypeID: f.EntityType,
			Bundle: f.Bundle,
			Label:  f.Label,
			Fields: maps.Clone(f.Fields),
		}
		if err := s.Create(ctx, e); err != nil {
			return created, fmt.Errorf("failed to seed fixture %q: %w", f.Label, err)
		}
		created++

		logger.Debug("seeded entity",
			observability.String("entity_type", e.TypeID),
			observability.String("bundle", e.Bundle),
			observability.String("uuid", e.UUID),
		)
	}

	return created, nil
}

func (s *Storage) fixtureExists(ctx context.Context, f config.FixtureConfig) (bool, error) {
	var err error
	if f.UUID != "" {
		_, err = s.LoadByUUID(ctx, f.EntityType, f.UUID)
	} else {
		_, err = s.first(ctx, "entity_type = ? AND bundle = ? AND label = ?", f.EntityType, f.Bundle, f.Label)
	}

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
