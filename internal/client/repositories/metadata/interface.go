// Package metadata stores small key/value pairs in the client's local
// database. The session keeps its token and profile here.
package metadata

import (
	"context"
)

type Repository interface {
	// Get reports found=false for a missing key.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes every listed key; missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
