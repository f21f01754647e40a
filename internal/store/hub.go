package store

import (
	"encoding/json"
	"strings"
	"sync"
)

// hub fans mutations out to path subscribers. A subscription at path P is
// affected by a mutation at path M when either is a prefix of the other.
type hub struct {
	mu   sync.Mutex
	subs map[int]*subscription
	next int
}

type subscription struct {
	path string
	fn   func(raw json.RawMessage)
}

func newHub() *hub {
	return &hub{subs: map[int]*subscription{}}
}

func (h *hub) add(path string, fn func(raw json.RawMessage)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.subs[id] = &subscription{path: strings.Trim(path, "/"), fn: fn}
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

func (h *hub) affected(mutated string) []*subscription {
	mutated = strings.Trim(mutated, "/")
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []*subscription
	for _, sub := range h.subs {
		if pathsOverlap(sub.path, mutated) {
			out = append(out, sub)
		}
	}
	return out
}

func pathsOverlap(a, b string) bool {
	if a == b {
		return true
	}
	return strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}
