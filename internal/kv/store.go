// Package kv holds the durable key/value stores the client uses to keep its
// session across restarts. Values are opaque strings; callers own encoding.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("kv: key not found")

// Store is a small durable key/value space. Delete of a missing key is not an
// error.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
