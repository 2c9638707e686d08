package api

import (
	"context"
	"fmt"
	"log/slog"
)

// A Resetter is a DB that can replace its whole collection.
type Resetter interface {
	// Reset deletes every stored thought and inserts thoughts in their place.
	Reset(ctx context.Context, thoughts []Thought) error
}

// Seed replaces all stored thoughts with seeds and, when cache is not nil,
// forgets the deleted ids it holds. It is destructive and meant to run once at
// startup, only when explicitly requested.
func Seed(ctx context.Context, logger *slog.Logger, db Resetter, cache Cache, seeds []Thought) error {
	logger.Warn("Resetting database", "seeds", len(seeds))
	if err := db.Reset(ctx, seeds); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	if cache != nil {
		if err := cache.Flush(ctx); err != nil {
			return fmt.Errorf("flush cache: %w", err)
		}
	}
	logger.Info("Database seeded", "count", len(seeds))
	return nil
}
