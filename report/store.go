package report

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Store persists reports. Implementations perform I/O on each call without
// caching.
type Store interface {
	// Save writes a report, overwriting one with the same id.
	Save(ctx context.Context, r Report) error
	// Load returns the report with the given id or ErrNotFound.
	Load(ctx context.Context, id string) (Report, error)
	// List returns stored report ids, oldest first.
	List(ctx context.Context) ([]string, error)
	// Delete removes reports. Missing ids are ignored.
	Delete(ctx context.Context, ids ...string) error
	// Close releases the store's resources.
	Close() error
}

// validID rejects ids that could escape a store's namespace.
func validID(id string) error {
	if _, err := uuid.Parse(id); err != nil || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
