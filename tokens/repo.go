package tokens

import "context"

// Repo is the durable store for a session's token pair. Implementations keep
// the pair as one record under StorageKey.
type Repo interface {
	// Get returns the stored pair, or the zero Pair when nothing is stored
	Get(ctx context.Context) (Pair, error)

	// Set replaces the stored pair
	Set(ctx context.Context, pair Pair) error

	// Clear removes the stored pair. Clearing an empty store is not an error
	Clear(ctx context.Context) error
}
