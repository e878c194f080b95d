// ===============================
// internal/rtdb/memory.go - In-process JSON tree
// ===============================

package rtdb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// MemoryStore keeps the database as a JSON tree in memory. It follows the
// hosted database's rules: nulls and empty objects are never stored.
type MemoryStore struct {
	mu   sync.Mutex
	root map[string]interface{}
	seq  int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: map[string]interface{}{}}
}

func (s *MemoryStore) Get(_ context.Context, path string, v interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return decode(s.lookup(segments(path)), v)
}

func (s *MemoryStore) Set(_ context.Context, path string, v interface{}) error {
	value, err := normalize(v)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.setAt(segments(path), value)
	return nil
}

func (s *MemoryStore) Update(_ context.Context, path string, values map[string]interface{}) error {
	base := segments(path)
	writes := make(map[string]interface{}, len(values))
	for k, v := range values {
		value, err := normalize(v)
		if err != nil {
			return err
		}
		writes[k] = value
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, value := range writes {
		segs := append(append([]string{}, base...), segments(k)...)
		s.setAt(segs, value)
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setAt(segments(path), nil)
	return nil
}

func (s *MemoryStore) Push(_ context.Context, path string, v interface{}) (string, error) {
	value, err := normalize(v)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	key := fmt.Sprintf("-M%012d", s.seq)
	s.setAt(append(segments(path), key), value)
	return key, nil
}

func (s *MemoryStore) Transaction(_ context.Context, path string, fn UpdateFn) error {
	segs := segments(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := fn(memNode{value: s.lookup(segs)})
	if err != nil {
		return err
	}
	value, err := normalize(out)
	if err != nil {
		return err
	}
	s.setAt(segs, value)
	return nil
}

func (s *MemoryStore) lookup(segs []string) interface{} {
	var node interface{} = s.root
	for _, seg := range segs {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil
		}
		node = m[seg]
	}
	if m, ok := node.(map[string]interface{}); ok && len(m) == 0 {
		return nil
	}
	return node
}

func (s *MemoryStore) setAt(segs []string, value interface{}) {
	if len(segs) == 0 {
		if m, ok := value.(map[string]interface{}); ok {
			s.root = m
		} else {
			s.root = map[string]interface{}{}
		}
		return
	}
	setIn(s.root, segs, value)
}

func setIn(m map[string]interface{}, segs []string, value interface{}) {
	k := segs[0]
	if len(segs) == 1 {
		if value == nil {
			delete(m, k)
		} else {
			m[k] = value
		}
		return
	}

	child, ok := m[k].(map[string]interface{})
	if !ok {
		if value == nil {
			return
		}
		child = map[string]interface{}{}
		m[k] = child
	}
	setIn(child, segs[1:], value)
	if len(child) == 0 {
		delete(m, k)
	}
}

type memNode struct {
	value interface{}
}

func (n memNode) Unmarshal(v interface{}) error {
	return decode(n.value, v)
}

func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func decode(value interface{}, v interface{}) error {
	if value == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// normalize turns v into plain JSON values and drops nulls and empty objects
func normalize(v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rtdb encode: %w", err)
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("rtdb encode: %w", err)
	}
	return prune(out), nil
}

func prune(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for k, child := range t {
			if c := prune(child); c == nil {
				delete(t, k)
			} else {
				t[k] = c
			}
		}
		if len(t) == 0 {
			return nil
		}
		return t
	case []interface{}:
		if len(t) == 0 {
			return nil
		}
		return t
	}
	return v
}
