package catalog

import (
	"context"
	"sync"
)

// Memory is an in-memory Gateway.
type Memory struct {
	mu     sync.RWMutex
	specs  map[string]ModuleSpec
	glyphs map[string][]byte
}

// NewMemory creates a catalog holding the given specs.
func NewMemory(specs ...ModuleSpec) *Memory {
	m := &Memory{
		specs:  make(map[string]ModuleSpec, len(specs)),
		glyphs: make(map[string][]byte),
	}
	for _, s := range specs {
		m.specs[s.ID] = s
	}
	return m
}

// Put adds or replaces a spec and its glyph.
func (m *Memory) Put(spec ModuleSpec, glyph []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specs[spec.ID] = spec
	if len(glyph) > 0 {
		m.glyphs[spec.ID] = append([]byte(nil), glyph...)
	} else {
		delete(m.glyphs, spec.ID)
	}
}

// Lookup returns the card Spec for id.
func (m *Memory) Lookup(_ context.Context, id string) (ModuleSpec, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.specs[id]
	return s, ok, nil
}

// Glyph returns a copy of the module's overview image.
func (m *Memory) Glyph(_ context.Context, id string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.glyphs[id]...), nil
}

// All returns every spec ordered by GUI order then identifier.
func (m *Memory) All(_ context.Context) ([]ModuleSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ModuleSpec, 0, len(m.specs))
	for _, s := range m.specs {
		out = append(out, s)
	}
	sortByGUIOrder(out)
	return out, nil
}

var _ Gateway = (*Memory)(nil)
