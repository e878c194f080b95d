// ===============================
// internal/rtdb/store.go - Realtime Database access
// ===============================

package rtdb

import (
	"context"
	"strings"
)

// Node is the current value handed to a transaction function
type Node interface {
	Unmarshal(v interface{}) error
}

// UpdateFn receives the current value at a path and returns the value to write.
// It may be invoked more than once and must not touch the store itself.
type UpdateFn func(current Node) (interface{}, error)

// Store is the subset of the Realtime Database used by the services.
//
// Get leaves v untouched when nothing is stored at path. Writing nil removes
// the node. Update applies every entry of values atomically, keys may be
// nested paths relative to path.
type Store interface {
	Get(ctx context.Context, path string, v interface{}) error
	Set(ctx context.Context, path string, v interface{}) error
	Update(ctx context.Context, path string, values map[string]interface{}) error
	Delete(ctx context.Context, path string) error
	Push(ctx context.Context, path string, v interface{}) (string, error)
	Transaction(ctx context.Context, path string, fn UpdateFn) error
}

// Join builds a database path from segments, dropping empty ones
func Join(parts ...string) string {
	var segs []string
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p != "" {
			segs = append(segs, p)
		}
	}
	return strings.Join(segs, "/")
}

// ValidKey reports whether k can be used as a single path segment
func ValidKey(k string) bool {
	if k == "" || len(k) > 768 {
		return false
	}
	return !strings.ContainsAny(k, ".$#[]/") && !strings.ContainsFunc(k, func(r rune) bool {
		return r < 0x20 || r == 0x7f
	})
}
