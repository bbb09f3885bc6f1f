// Package history keeps a log of past classifications. It is an add-on to the
// request path: a failing recorder never fails a classification.
package history

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Record struct {
	ID         string    `json:"id" db:"id"`
	Source     string    `json:"source" db:"source"`
	Soil       string    `json:"soil" db:"soil"`
	Confidence float32   `json:"confidence" db:"confidence"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type Recorder interface {
	Record(ctx context.Context, rec Record) (Record, error)
	Recent(ctx context.Context, limit int) ([]Record, error)
}

// prepare fills the ID and timestamp of a new record.
func prepare(rec Record) Record {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	return rec
}

// Memory is a bounded in-process Recorder. The oldest records are dropped first.
type Memory struct {
	mu       sync.Mutex
	records  []Record
	capacity int
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 100
	}
	return &Memory{capacity: capacity}
}

func (m *Memory) Record(_ context.Context, rec Record) (Record, error) {
	rec = prepare(rec)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	if over := len(m.records) - m.capacity; over > 0 {
		m.records = append([]Record(nil), m.records[over:]...)
	}
	return rec, nil
}

// Recent returns up to limit records, newest first.
func (m *Memory) Recent(_ context.Context, limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if limit <= 0 || limit > len(m.records) {
		limit = len(m.records)
	}
	out := make([]Record, 0, limit)
	for i := len(m.records) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}
