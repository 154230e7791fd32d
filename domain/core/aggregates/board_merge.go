package aggregates

import (
	"boardcore/domain/core/entities"
)

// MergeOptions controls how a remote document lands on local state
type MergeOptions struct {
	// PreservePaths are entity paths with unpushed local changes.
	// The local version wins; the pending push will reconcile remote.
	PreservePaths map[string]struct{}

	// Dragging are item ids in an active drag. Remote field changes
	// apply but the local position is kept.
	Dragging map[string]struct{}

	// SingletonKeys are enforced after the merge, since a concurrent
	// peer may have created a duplicate before seeing ours.
	SingletonKeys []string
}

// MergeResult reports what a merge changed
type MergeResult struct {
	ItemsChanged      int
	ItemsRemoved      int
	SingletonsRemoved []string
}

// MergeDocument reconciles a remote document into local state. The
// remote is authoritative for everything except entities named in the
// options. No domain events are raised: remote changes already
// happened on the peer that made them.
func (b *Board) MergeDocument(doc *BoardDocument, opts MergeOptions) MergeResult {
	result := MergeResult{}
	preserved := func(path string) bool {
		_, ok := opts.PreservePaths[path]
		return ok
	}
	dragging := func(id string) bool {
		_, ok := opts.Dragging[id]
		return ok
	}

	// Items
	for id, remote := range doc.Items {
		if remote == nil || remote.Validate() != nil || preserved("items/"+id) {
			continue
		}
		local, exists := b.items[id]
		if !exists {
			b.items[id] = remote
			result.ItemsChanged++
			continue
		}
		merged := remote.Clone()
		if dragging(id) {
			merged.X, merged.Y = local.X, local.Y
		}
		// A URL hydrated locally is kept when the remote copy has
		// none; peers resolve their own display URLs.
		if merged.Media != nil && merged.Media.URL == "" && local.Media != nil && local.Media.URL != "" {
			merged.Media.URL = local.Media.URL
		}
		b.items[id] = merged
		result.ItemsChanged++
	}
	for id := range b.items {
		if _, still := doc.Items[id]; !still && !preserved("items/"+id) {
			delete(b.items, id)
			result.ItemsRemoved++
		}
	}

	// Groups
	for id, remote := range doc.Groups {
		if remote == nil || preserved("groups/"+id) {
			continue
		}
		remote.Normalize()
		b.groups[id] = remote
	}
	for id := range b.groups {
		if _, still := doc.Groups[id]; !still && !preserved("groups/"+id) {
			delete(b.groups, id)
		}
	}

	// Arrows
	for id, remote := range doc.Arrows {
		if remote == nil || preserved("arrows/"+id) {
			continue
		}
		b.arrows[id] = remote
	}
	for id := range b.arrows {
		if _, still := doc.Arrows[id]; !still && !preserved("arrows/"+id) {
			delete(b.arrows, id)
		}
	}

	// Drawing paths
	for id, remote := range doc.Paths {
		if remote == nil || len(remote.Points) == 0 || preserved("drawingPaths/"+id) {
			continue
		}
		b.paths[id] = remote
	}
	for id := range b.paths {
		if _, still := doc.Paths[id]; !still && !preserved("drawingPaths/"+id) {
			delete(b.paths, id)
		}
	}

	// Connections
	for _, remote := range doc.Conns {
		if remote == nil {
			continue
		}
		key := remote.Key()
		if preserved("connections/" + key) {
			continue
		}
		b.connections[key] = remote
	}
	for key := range b.connections {
		if _, still := doc.Conns[key]; !still && !preserved("connections/"+key) {
			delete(b.connections, key)
		}
	}

	// Bookmarks
	for id, remote := range doc.Bookmarks {
		if remote == nil || preserved("bookmarks/"+id) {
			continue
		}
		b.bookmarks[id] = remote
	}
	for id := range b.bookmarks {
		if _, still := doc.Bookmarks[id]; !still && !preserved("bookmarks/"+id) {
			delete(b.bookmarks, id)
		}
	}

	// Drop dangling references the merge may have introduced.
	for id, arrow := range b.arrows {
		if !b.HasItem(arrow.SourceID) || !b.HasItem(arrow.TargetID) {
			delete(b.arrows, id)
		}
	}
	for key, conn := range b.connections {
		if !b.HasItem(conn.FromNodeID) || !b.HasItem(conn.ToNodeID) {
			delete(b.connections, key)
		}
	}
	for id, group := range b.groups {
		kept := group.ChildIDs[:0]
		for _, childID := range group.ChildIDs {
			if b.HasItem(childID) {
				kept = append(kept, childID)
			}
		}
		group.ChildIDs = kept
		if len(group.ChildIDs) < 2 {
			delete(b.groups, id)
		}
	}

	for _, key := range opts.SingletonKeys {
		result.SingletonsRemoved = append(result.SingletonsRemoved, b.enforceSingletonQuiet(key)...)
	}

	b.touch()
	return result
}

// enforceSingletonQuiet removes singleton duplicates without raising
// deletion events, keeping the oldest copy. Used during merges.
func (b *Board) enforceSingletonQuiet(key string) []string {
	var keeper *entities.Item
	extras := []string{}
	for _, item := range b.items {
		if item.SingletonKey != key {
			continue
		}
		if keeper == nil || item.CreatedAt.Before(keeper.CreatedAt) {
			if keeper != nil {
				extras = append(extras, keeper.ID)
			}
			keeper = item
			continue
		}
		extras = append(extras, item.ID)
	}
	for _, id := range extras {
		delete(b.items, id)
	}
	return extras
}
