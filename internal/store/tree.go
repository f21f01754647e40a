package store

import "encoding/json"

// normalize round-trips value through JSON so every stored subtree uses the
// generic representation (map[string]interface{}, []interface{}, float64).
// Reads then decode uniformly regardless of the Go type that was written.
func normalize(value interface{}) (interface{}, error) {
	if value == nil {
		return nil, nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func getAtPath(root map[string]interface{}, segs []string) (interface{}, bool) {
	var cur interface{} = root
	for _, seg := range segs {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// setAtPath replaces the subtree at segs with value, creating intermediate
// maps as needed. A nil value deletes the subtree. Non-map intermediates are
// overwritten, matching last-write-wins replace semantics.
func setAtPath(root map[string]interface{}, segs []string, value interface{}) {
	cur := root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			cur[seg] = next
		}
		cur = next
	}
	leaf := segs[len(segs)-1]
	if value == nil {
		delete(cur, leaf)
		return
	}
	cur[leaf] = value
}
