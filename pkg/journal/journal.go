// Package journal records generation requests.
//
// A [Record] captures what was asked for and what came out (module list,
// point counts, warnings, error, document size), never the document itself.
// Records are kept in memory by default or in MongoDB for server
// deployments.
package journal

import (
	"context"
	"sync"
	"time"
)

// DefaultLimit is the number of records Recent returns when limit <= 0.
const DefaultLimit = 50

// Record describes one generation request.
type Record struct {
	ID          string         `json:"id" bson:"_id"`
	At          time.Time      `json:"at" bson:"at"`
	Modules     []string       `json:"modules" bson:"modules"`
	PointCounts map[string]int `json:"point_counts" bson:"point_counts"`
	Warnings    []string       `json:"warnings,omitempty" bson:"warnings,omitempty"`
	Error       string         `json:"error,omitempty" bson:"error,omitempty"`
	Code        string         `json:"code,omitempty" bson:"code,omitempty"`
	Bytes       int            `json:"bytes" bson:"bytes"`
	Duration    time.Duration  `json:"duration_ns" bson:"duration_ns"`
}

// OK reports whether the request produced a document.
func (r Record) OK() bool { return r.Error == "" }

// Store persists records.
type Store interface {
	Append(ctx context.Context, rec Record) error
	// Recent returns up to limit records, newest first.
	Recent(ctx context.Context, limit int) ([]Record, error)
	Close() error
}

// Memory keeps the most recent records in a ring buffer.
type Memory struct {
	mu   sync.Mutex
	buf  []Record
	next int
	full bool
}

// NewMemory creates a store holding at most capacity records.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Memory{buf: make([]Record, capacity)}
}

// Append stores rec, evicting the oldest record when full.
func (m *Memory) Append(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf[m.next] = rec
	m.next = (m.next + 1) % len(m.buf)
	if m.next == 0 {
		m.full = true
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (m *Memory) Recent(_ context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.next
	if m.full {
		n = len(m.buf)
	}
	if limit > n {
		limit = n
	}
	out := make([]Record, 0, limit)
	for i := 0; i < limit; i++ {
		idx := (m.next - 1 - i + len(m.buf)) % len(m.buf)
		out = append(out, m.buf[idx])
	}
	return out, nil
}

// Close does nothing.
func (m *Memory) Close() error { return nil }

// Discard drops every record.
type Discard struct{}

func (Discard) Append(context.Context, Record) error          { return nil }
func (Discard) Recent(context.Context, int) ([]Record, error) { return nil, nil }
func (Discard) Close() error                                  { return nil }

var (
	_ Store = (*Memory)(nil)
	_ Store = Discard{}
)
