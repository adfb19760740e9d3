// Package entity defines the state lookup collaborator that feeds bar
// values and animation triggers, plus an in-memory implementation used by
// the CLI and tests.
package entity

import (
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// Lookup returns the current value of an entity's primary state (attribute
// == "") or of one of its attributes. Values are strings or numbers; ok is
// false when the entity or attribute does not exist.
type Lookup interface {
	Lookup(entityID, attribute string) (value any, ok bool)
}

// LookupFunc adapts a function to the Lookup interface.
type LookupFunc func(entityID, attribute string) (any, bool)

// Lookup calls f.
func (f LookupFunc) Lookup(entityID, attribute string) (any, bool) {
	return f(entityID, attribute)
}

// Well-known attribute names.
const (
	AttrUnit        = "unit_of_measurement"
	AttrDeviceClass = "device_class"
	AttrMax         = "max"
)

// State is a snapshot of one entity.
type State struct {
	Value      any
	Attributes map[string]any
}

// Store is a thread-safe in-memory Lookup.
type Store struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{states: make(map[string]State)}
}

// Set replaces the primary state of an entity, keeping its attributes.
func (s *Store) Set(entityID string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[entityID]
	st.Value = value
	s.states[entityID] = st
}

// SetAttribute sets one attribute of an entity, creating the entity if
// needed.
func (s *Store) SetAttribute(entityID, attribute string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[entityID]
	if st.Attributes == nil {
		st.Attributes = make(map[string]any)
	}
	st.Attributes[attribute] = value
	s.states[entityID] = st
}

// Replace swaps the whole content of the store, e.g. after a config reload.
func (s *Store) Replace(states map[string]State) {
	next := make(map[string]State, len(states))
	for id, st := range states {
		next[id] = copyState(st)
	}
	s.mu.Lock()
	s.states = next
	s.mu.Unlock()
}

// Lookup implements Lookup.
func (s *Store) Lookup(entityID, attribute string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.states[entityID]
	if !ok {
		return nil, false
	}
	if attribute == "" {
		return st.Value, st.Value != nil
	}
	v, ok := st.Attributes[attribute]
	return v, ok
}

// IDs returns the sorted entity ids held by the store.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func copyState(st State) State {
	out := State{Value: st.Value}
	if st.Attributes != nil {
		out.Attributes = make(map[string]any, len(st.Attributes))
		for k, v := range st.Attributes {
			out.Attributes[k] = v
		}
	}
	return out
}

// Stringify renders a looked-up value the way it is compared against
// trigger match values.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
