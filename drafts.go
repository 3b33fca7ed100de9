package main

import "time"

// Draft is an uncommitted inline edit of one node.
type Draft struct {
	Patch NodePatch
	Saved time.Time
}

// DraftTable keeps drafts outside the map and the undo history. Entries
// older than the TTL read as absent.
type DraftTable struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[NodeID]Draft
}

func NewDraftTable(ttl time.Duration, now func() time.Time) *DraftTable {
	if now == nil {
		now = time.Now
	}
	return &DraftTable{
		ttl:     ttl,
		now:     now,
		entries: make(map[NodeID]Draft),
	}
}

// Set merges patch into any existing draft for id and stamps it.
func (d *DraftTable) Set(id NodeID, patch NodePatch) {
	cur := d.entries[id].Patch
	if patch.Title != nil {
		cur.Title = patch.Title
	}
	if patch.Description != nil {
		cur.Description = patch.Description
	}
	if patch.Color != nil {
		cur.Color = patch.Color
	}
	d.entries[id] = Draft{Patch: cur, Saved: d.now()}
}

func (d *DraftTable) Get(id NodeID) (Draft, bool) {
	draft, ok := d.entries[id]
	if !ok {
		return Draft{}, false
	}
	if d.expired(draft) {
		delete(d.entries, id)
		return Draft{}, false
	}
	return draft, true
}

func (d *DraftTable) Clear(id NodeID) {
	delete(d.entries, id)
}

func (d *DraftTable) ClearAll() {
	d.entries = make(map[NodeID]Draft)
}

// Prune removes expired drafts and returns how many were dropped.
func (d *DraftTable) Prune() int {
	removed := 0
	for id, draft := range d.entries {
		if d.expired(draft) {
			delete(d.entries, id)
			removed++
		}
	}
	return removed
}

func (d *DraftTable) expired(draft Draft) bool {
	return d.ttl > 0 && d.now().Sub(draft.Saved) > d.ttl
}
