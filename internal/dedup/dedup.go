// Package dedup makes view counting idempotent per client per post.
//
// Each client (identified by an opaque client-supplied token, never by user
// identity, so anonymous readers work too) gets a bounded FIFO window of
// post ids it has already had counted. The mechanism is best-effort: a
// client that loses its token gets a fresh window, which is an accepted
// tradeoff.
package dedup

import "context"

// WindowSize bounds the per-client history; the oldest entry is evicted
// first once the window is full.
const WindowSize = 100

// Deduplicator decides whether a view should be counted. ShouldCount
// returns true and records the post id if it was absent from the client's
// window; it returns false if the post was already counted.
type Deduplicator interface {
	ShouldCount(ctx context.Context, clientToken string, postID string) (bool, error)
}
