package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore keeps the whole document tree in memory. It backs tests and
// local development; the snapshot/notification contract matches GormStore.
type MemoryStore struct {
	mu   sync.RWMutex
	root map[string]interface{}
	hub  *hub
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		root: map[string]interface{}{},
		hub:  newHub(),
	}
}

func (s *MemoryStore) Read(ctx context.Context, path string, dest interface{}) (bool, error) {
	raw, found, err := s.snapshot(path)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("store: decode %q: %w", path, err)
	}
	return true, nil
}

func (s *MemoryStore) Write(ctx context.Context, path string, value interface{}) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	norm, err := normalize(value)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", path, err)
	}
	s.mu.Lock()
	setAtPath(s.root, segs, norm)
	s.mu.Unlock()
	s.notify(path)
	return nil
}

func (s *MemoryStore) Patch(ctx context.Context, path string, fields map[string]interface{}) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	norm := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		nv, err := normalize(v)
		if err != nil {
			return fmt.Errorf("store: encode %q field %q: %w", path, k, err)
		}
		norm[k] = nv
	}
	s.mu.Lock()
	for k, v := range norm {
		target := append(append([]string{}, segs...), strings.Split(strings.Trim(k, "/"), "/")...)
		setAtPath(s.root, target, v)
	}
	s.mu.Unlock()
	s.notify(path)
	return nil
}

func (s *MemoryStore) Append(ctx context.Context, path string, value interface{}) (string, error) {
	key := newPushKey()
	if err := s.Write(ctx, path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (s *MemoryStore) Subscribe(path string, onChange func(raw json.RawMessage)) (func(), error) {
	if _, err := splitPath(path); err != nil {
		return nil, err
	}
	cancel := s.hub.add(path, onChange)
	raw, _, err := s.snapshot(path)
	if err != nil {
		cancel()
		return nil, err
	}
	onChange(raw)
	return cancel, nil
}

func (s *MemoryStore) snapshot(path string) (json.RawMessage, bool, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	val, found := getAtPath(s.root, segs)
	var raw json.RawMessage
	if found {
		raw, err = json.Marshal(val)
	}
	s.mu.RUnlock()
	if err != nil {
		return nil, false, fmt.Errorf("store: encode %q: %w", path, err)
	}
	return raw, found, nil
}

func (s *MemoryStore) notify(mutated string) {
	for _, sub := range s.hub.affected(mutated) {
		raw, _, err := s.snapshot(sub.path)
		if err != nil {
			continue
		}
		sub.fn(raw)
	}
}
