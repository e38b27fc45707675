// Package metrics tallies token usage and request metadata per completed
// exchange.
package metrics

import (
	"time"

	"github.com/erossel/convo/core"
)

// Record captures one completed request. NodeID is a weak reference to the
// assistant node the exchange produced; ActiveNodes is the number of nodes
// that were sent as context at call time.
type Record struct {
	NodeID int    `json:"node_id"`
	Model  string `json:"model"`
	core.Usage
	ActiveNodes int       `json:"active_node_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// Tracker is an append-only sequence of records. Records are never mutated
// or deleted; everything else is derived.
type Tracker struct {
	records []Record
}

func New() *Tracker {
	return &Tracker{}
}

// Restore rebuilds a tracker from persisted records.
func Restore(records []Record) *Tracker {
	tracker := New()
	tracker.records = append(tracker.records, records...)
	return tracker
}

func (t *Tracker) Add(record Record) {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	t.records = append(t.records, record)
}

// Records returns a copy of all records in insertion order. The record
// layout is already flat, so this doubles as the tabular projection.
func (t *Tracker) Records() []Record {
	return append([]Record(nil), t.records...)
}

func (t *Tracker) Len() int {
	return len(t.records)
}

// Totals accumulates token usage across all records.
func (t *Tracker) Totals() core.Usage {
	var total core.Usage
	for _, record := range t.records {
		total = total.Add(record.Usage)
	}
	return total
}

// PerModel breaks accumulated usage down by model name.
func (t *Tracker) PerModel() map[string]core.Usage {
	byModel := make(map[string]core.Usage)
	for _, record := range t.records {
		byModel[record.Model] = byModel[record.Model].Add(record.Usage)
	}
	return byModel
}

// Clone returns a fully independent deep copy of the tracker.
func (t *Tracker) Clone() *Tracker {
	return Restore(t.records)
}
