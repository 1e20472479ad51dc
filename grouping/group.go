package grouping

import "github.com/Ayymoose/PC-Lint-GUI-sub000/types"

// Group splits an ordered message sequence into groups.
// Each group opens at a primary message and absorbs the run of supplemental
// messages that immediately follows it. Supplementals before the first
// primary are dropped.
func Group(msgs []types.Message) []types.MessageGroup {
	var groups []types.MessageGroup

	i := 0
	for i < len(msgs) && !msgs[i].Type.IsPrimary() {
		i++
	}

	for i < len(msgs) {
		j := i + 1
		for j < len(msgs) && !msgs[j].Type.IsPrimary() {
			j++
		}
		groups = append(groups, types.MessageGroup{Messages: append([]types.Message(nil), msgs[i:j]...)})
		i = j
	}

	return groups
}

// Grouper groups messages arriving in batches, one batch per module.
// The last group of a batch stays open because the next batch may begin
// with supplementals that belong to it.
type Grouper struct {
	pending *types.MessageGroup
}

// NewGrouper creates a Grouper with no open group.
func NewGrouper() *Grouper {
	return &Grouper{}
}

// Add consumes a batch and returns the groups that can no longer grow.
func (g *Grouper) Add(msgs []types.Message) []types.MessageGroup {
	var closed []types.MessageGroup

	i := 0
	if g.pending != nil {
		for i < len(msgs) && !msgs[i].Type.IsPrimary() {
			g.pending.Messages = append(g.pending.Messages, msgs[i])
			i++
		}
		if i == len(msgs) {
			return nil
		}
		closed = append(closed, *g.pending)
		g.pending = nil
	}

	groups := Group(msgs[i:])
	if len(groups) == 0 {
		return closed
	}

	last := groups[len(groups)-1]
	g.pending = &last
	return append(closed, groups[:len(groups)-1]...)
}

// Flush closes and returns the open group, if any.
func (g *Grouper) Flush() []types.MessageGroup {
	if g.pending == nil {
		return nil
	}
	out := []types.MessageGroup{*g.pending}
	g.pending = nil
	return out
}

// Pending reports whether a group is still open.
func (g *Grouper) Pending() bool {
	return g.pending != nil
}

// Reset discards the open group.
func (g *Grouper) Reset() {
	g.pending = nil
}
