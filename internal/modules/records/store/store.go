package store

import (
	"context"
	"errors"

	"powertrack/internal/modules/records/types"
)

// ErrCorrupt marks a backing store whose contents cannot be decoded, as
// opposed to one that is simply empty.
var ErrCorrupt = errors.New("record store is corrupt")

// Store loads and saves the whole record collection. Load and Save are each
// atomic; callers needing read-modify-write isolation serialise around them.
type Store interface {
	Load(ctx context.Context) (types.Collection, error)
	Save(ctx context.Context, c types.Collection) error
	Ping(ctx context.Context) error
}
