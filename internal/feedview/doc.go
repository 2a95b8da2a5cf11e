// Package feedview runs the external feed driver and exposes it as a
// crawler.FeedView.
//
// The driver is a long-lived process (a browser automation script) spoken to
// over stdin/stdout with one JSON object per line. Each request names an op
// ("navigate", "arm", "counts", "reset", "snapshot", "scroll", "nudge",
// "prune", "quit"); each response carries ok plus op-specific fields. Any
// transport failure is reported as a session error so the crawler replaces
// the whole process.
package feedview
