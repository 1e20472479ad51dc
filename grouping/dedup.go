// Package grouping removes duplicate diagnostics and attaches supplemental
// messages to the primary message they elaborate on.
package grouping

import "github.com/Ayymoose/PC-Lint-GUI-sub000/types"

// Deduplicator remembers every message accepted during one run.
// A Deduplicator is not safe for concurrent use.
type Deduplicator struct {
	seen        map[types.Message]struct{}
	primarySeen bool
	duplicates  int64
	orphans     int64
}

// NewDeduplicator creates an empty Deduplicator.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{seen: make(map[types.Message]struct{})}
}

// Insert reports whether msg is new for this run.
// Identity is the whole message. A supplemental message arriving before any
// primary has been accepted can never join a group, so it is rejected and
// not remembered.
func (d *Deduplicator) Insert(msg types.Message) bool {
	if !d.primarySeen && !msg.Type.IsPrimary() {
		d.orphans++
		return false
	}
	if _, ok := d.seen[msg]; ok {
		d.duplicates++
		return false
	}
	d.seen[msg] = struct{}{}
	if msg.Type.IsPrimary() {
		d.primarySeen = true
	}
	return true
}

// Filter returns the messages of msgs accepted by Insert, in order.
func (d *Deduplicator) Filter(msgs []types.Message) []types.Message {
	out := make([]types.Message, 0, len(msgs))
	for _, m := range msgs {
		if d.Insert(m) {
			out = append(out, m)
		}
	}
	return out
}

// Len returns the number of distinct messages accepted.
func (d *Deduplicator) Len() int {
	return len(d.seen)
}

// Duplicates returns how many messages were rejected as already seen.
func (d *Deduplicator) Duplicates() int64 {
	return d.duplicates
}

// Orphans returns how many leading supplemental messages were dropped.
func (d *Deduplicator) Orphans() int64 {
	return d.orphans
}

// Reset forgets everything for a new run.
func (d *Deduplicator) Reset() {
	clear(d.seen)
	d.primarySeen = false
	d.duplicates = 0
	d.orphans = 0
}
