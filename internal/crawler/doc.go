// Package crawler discovers new candidate post URLs by driving a scrolling
// feed view to convergence.
//
// The crawler never parses pages itself. It steers an abstract FeedView
// (warm-up scrolls, baseline capture, snapshot, nudge, prune, reload) and
// emits each newly discovered canonical URL exactly once, durably, as it is
// found. Discovery state persists in a SQLite seen-set so that view reloads
// and session replacements cannot re-introduce a URL as new.
//
// A run terminates on one of three conditions: the target count of new URLs
// is reached, a fixed number of consecutive no-growth rounds passes, or the
// hard round cap fires.
package crawler
