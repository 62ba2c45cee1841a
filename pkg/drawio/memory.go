package drawio

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/matzehuels/ioschema/pkg/errors"
)

// MemoryRepository holds the template in memory.
type MemoryRepository struct {
	mu      sync.RWMutex
	name    string
	doc     *Document
	size    int64
	modTime time.Time
}

// NewMemoryRepository parses data and serves it under name.
func NewMemoryRepository(name string, data []byte) (*MemoryRepository, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return &MemoryRepository{name: name, doc: doc, size: int64(len(data)), modTime: time.Now()}, nil
}

// Load returns a fresh copy of the template.
func (m *MemoryRepository) Load(context.Context) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.doc.Copy(), nil
}

// Info describes the held template.
func (m *MemoryRepository) Info(context.Context) (Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Info{Name: m.name, ModTime: m.modTime, Size: m.size, Pages: m.doc.PageNames()}, nil
}

// Update replaces the held template.
func (m *MemoryRepository) Update(ctx context.Context, r io.Reader) (Info, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxTemplateSize+1))
	if err != nil {
		return Info{}, err
	}
	if len(data) > MaxTemplateSize {
		return Info{}, errors.New(errors.ErrCodeInvalidTemplate, "template exceeds %d bytes", MaxTemplateSize)
	}
	doc, err := Parse(data)
	if err != nil {
		return Info{}, err
	}
	if len(doc.Pages()) == 0 {
		return Info{}, errors.New(errors.ErrCodeInvalidTemplate, "template has no diagram pages")
	}
	m.mu.Lock()
	m.doc, m.size, m.modTime = doc, int64(len(data)), time.Now()
	m.mu.Unlock()
	return m.Info(ctx)
}

var _ Repository = (*MemoryRepository)(nil)
