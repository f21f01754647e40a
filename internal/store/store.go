package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Store is a path-addressed document store. Paths are slash separated
// ("matches/{id}/live"); writing nil at a path removes the subtree, matching
// the realtime-database semantics the scoring screens were built against.
type Store interface {
	// Read decodes the value at path into dest. It returns false when the
	// path holds nothing, leaving dest untouched.
	Read(ctx context.Context, path string, dest interface{}) (bool, error)

	// Write replaces the subtree at path with value.
	Write(ctx context.Context, path string, value interface{}) error

	// Patch merges the named fields into the document at path without
	// disturbing sibling fields. Field keys may themselves contain slashes
	// ("scoreA/runs") and address nested values.
	Patch(ctx context.Context, path string, fields map[string]interface{}) error

	// Append stores value under a generated child key of path and returns
	// the key. Generated keys sort in insertion order.
	Append(ctx context.Context, path string, value interface{}) (string, error)

	// Subscribe registers onChange for the subtree at path. It fires once
	// immediately with the current value (nil when absent) and then on every
	// change. The returned func cancels the subscription.
	Subscribe(path string, onChange func(raw json.RawMessage)) (func(), error)
}

var pushSeq uint64

// newPushKey generates a child key that sorts after every key generated
// before it: a millisecond timestamp, a process-local counter to break ties
// within the same millisecond, and a random suffix for uniqueness.
func newPushKey() string {
	n := atomic.AddUint64(&pushSeq, 1)
	return fmt.Sprintf("%012x%04x-%s", time.Now().UnixMilli(), n&0xffff, uuid.NewString()[:8])
}

func splitPath(path string) ([]string, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, fmt.Errorf("store: empty path")
	}
	segs := strings.Split(path, "/")
	for _, s := range segs {
		if s == "" {
			return nil, fmt.Errorf("store: malformed path %q", path)
		}
	}
	return segs, nil
}
