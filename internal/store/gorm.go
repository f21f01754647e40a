package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Document is one stored top-level document ("matches/{id}",
// "tournaments/{id}"). Deeper paths address values inside the JSON payload.
type Document struct {
	Path      string `gorm:"primaryKey;size:512"`
	Value     []byte `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

// GormStore persists documents in a relational table. Change notifications
// are in-process only: a subscriber sees writes performed through this store
// instance, which is all the single-scorer model (one device drives a live
// match) requires.
type GormStore struct {
	db  *gorm.DB
	hub *hub
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, hub: newHub()}
}

func (s *GormStore) Read(ctx context.Context, path string, dest interface{}) (bool, error) {
	raw, found, err := s.snapshot(ctx, path)
	if err != nil || !found {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, fmt.Errorf("store: decode %q: %w", path, err)
	}
	return true, nil
}

func (s *GormStore) Write(ctx context.Context, path string, value interface{}) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	norm, err := normalize(value)
	if err != nil {
		return fmt.Errorf("store: encode %q: %w", path, err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch {
		case len(segs) == 1:
			// Replacing a whole collection: drop existing children, then
			// insert the new ones.
			if err := tx.Where("path LIKE ?", segs[0]+"/%").Delete(&Document{}).Error; err != nil {
				return err
			}
			children, ok := norm.(map[string]interface{})
			if !ok && norm != nil {
				return fmt.Errorf("store: collection %q requires an object value", path)
			}
			for key, child := range children {
				if err := upsertDoc(tx, segs[0]+"/"+key, child); err != nil {
					return err
				}
			}
			return nil
		case len(segs) == 2:
			return upsertDoc(tx, segs[0]+"/"+segs[1], norm)
		default:
			return mutateDoc(tx, segs, func(doc map[string]interface{}) {
				setAtPath(doc, segs[2:], norm)
			})
		}
	})
	if err != nil {
		return err
	}
	s.notify(ctx, path)
	return nil
}

func (s *GormStore) Patch(ctx context.Context, path string, fields map[string]interface{}) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}
	if len(segs) < 2 {
		return fmt.Errorf("store: cannot patch collection %q", path)
	}
	norm := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		nv, err := normalize(v)
		if err != nil {
			return fmt.Errorf("store: encode %q field %q: %w", path, k, err)
		}
		norm[k] = nv
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return mutateDoc(tx, segs, func(doc map[string]interface{}) {
			for k, v := range norm {
				target := append(append([]string{}, segs[2:]...), strings.Split(strings.Trim(k, "/"), "/")...)
				setAtPath(doc, target, v)
			}
		})
	})
	if err != nil {
		return err
	}
	s.notify(ctx, path)
	return nil
}

func (s *GormStore) Append(ctx context.Context, path string, value interface{}) (string, error) {
	key := newPushKey()
	if err := s.Write(ctx, path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

func (s *GormStore) Subscribe(path string, onChange func(raw json.RawMessage)) (func(), error) {
	if _, err := splitPath(path); err != nil {
		return nil, err
	}
	cancel := s.hub.add(path, onChange)
	raw, _, err := s.snapshot(context.Background(), path)
	if err != nil {
		cancel()
		return nil, err
	}
	onChange(raw)
	return cancel, nil
}

// upsertDoc writes a full document row; nil removes it.
func upsertDoc(tx *gorm.DB, docPath string, value interface{}) error {
	if value == nil {
		return tx.Where("path = ?", docPath).Delete(&Document{}).Error
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	var existing Document
	err = tx.Where("path = ?", docPath).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&Document{Path: docPath, Value: raw}).Error
	}
	if err != nil {
		return err
	}
	existing.Value = raw
	return tx.Save(&existing).Error
}

// mutateDoc applies fn to the decoded document owning segs, creating the
// document when absent, and writes it back.
func mutateDoc(tx *gorm.DB, segs []string, fn func(doc map[string]interface{})) error {
	docPath := segs[0] + "/" + segs[1]
	doc := map[string]interface{}{}

	var row Document
	err := tx.Where("path = ?", docPath).First(&row).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	if err == nil && len(row.Value) > 0 {
		if err := json.Unmarshal(row.Value, &doc); err != nil {
			return fmt.Errorf("store: corrupt document %q: %w", docPath, err)
		}
	}

	fn(doc)
	return upsertDoc(tx, docPath, doc)
}

func (s *GormStore) snapshot(ctx context.Context, path string) (json.RawMessage, bool, error) {
	segs, err := splitPath(path)
	if err != nil {
		return nil, false, err
	}

	if len(segs) == 1 {
		var rows []Document
		if err := s.db.WithContext(ctx).Where("path LIKE ?", segs[0]+"/%").Find(&rows).Error; err != nil {
			return nil, false, err
		}
		if len(rows) == 0 {
			return nil, false, nil
		}
		collection := make(map[string]json.RawMessage, len(rows))
		for _, row := range rows {
			collection[strings.TrimPrefix(row.Path, segs[0]+"/")] = row.Value
		}
		raw, err := json.Marshal(collection)
		return raw, true, err
	}

	var row Document
	err = s.db.WithContext(ctx).Where("path = ?", segs[0]+"/"+segs[1]).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if len(segs) == 2 {
		return row.Value, true, nil
	}

	doc := map[string]interface{}{}
	if err := json.Unmarshal(row.Value, &doc); err != nil {
		return nil, false, fmt.Errorf("store: corrupt document %q: %w", path, err)
	}
	val, found := getAtPath(doc, segs[2:])
	if !found {
		return nil, false, nil
	}
	raw, err := json.Marshal(val)
	return raw, true, err
}

func (s *GormStore) notify(ctx context.Context, mutated string) {
	for _, sub := range s.hub.affected(mutated) {
		raw, _, err := s.snapshot(ctx, sub.path)
		if err != nil {
			continue
		}
		sub.fn(raw)
	}
}
