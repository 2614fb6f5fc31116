// Package configstore abstracts the external key-value store that holds one
// serialized descriptor per provider.
package configstore

import "context"

// Store lists provider ids and fetches their raw descriptor values. The
// backing store is eventually consistent; callers treat results as a point-in-
// time listing, not a transaction.
type Store interface {
	// List returns every provider id currently present.
	List(ctx context.Context) ([]string, error)
	// Get returns the raw value for one provider id. The second return is
	// false when the key is absent.
	Get(ctx context.Context, id string) (string, bool, error)
}
