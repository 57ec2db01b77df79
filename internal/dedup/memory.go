package dedup

import (
	"context"

	cmap "github.com/orcaman/concurrent-map"
)

// MemoryDeduplicator keeps the per-client windows in process memory. The
// concurrent map's Upsert runs the update under the shard lock, so two
// simultaneous views from the same client cannot both be counted.
type MemoryDeduplicator struct {
	windows cmap.ConcurrentMap
}

func NewMemoryDeduplicator() *MemoryDeduplicator {
	return &MemoryDeduplicator{windows: cmap.New()}
}

func (d *MemoryDeduplicator) ShouldCount(ctx context.Context, clientToken string, postID string) (bool, error) {
	counted := false

	d.windows.Upsert(clientToken, nil, func(exists bool, valueInMap interface{}, _ interface{}) interface{} {
		var window []string
		if exists {
			window = valueInMap.([]string)
		}

		for _, id := range window {
			if id == postID {
				return window
			}
		}

		counted = true
		window = append(window, postID)
		if len(window) > WindowSize {
			// FIFO eviction: drop the oldest entry.
			window = window[len(window)-WindowSize:]
		}
		return window
	})

	return counted, nil
}
