// Package metadata is the opaque string-keyed store backing the session.
// The catalog client persists exactly three entries: token, tokenType, and
// the JSON-encoded user snapshot.
package metadata

import "context"

// Repository is a string-keyed store. Get returns an empty string for a
// missing key; callers that care about presence compare against "".
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	RemoveMany(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
