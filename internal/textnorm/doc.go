// Package textnorm canonicalizes the noisy text and URLs extracted from a
// group feed so the rest of the pipeline can compare them reliably.
//
// Normalize flattens stylized unicode letters (the "fancy" mathematical
// alphanumerics used for emphasis in social posts) to plain ASCII and collapses
// whitespace. CanonicalizeURL reduces the many spellings of a post link
// (mobile host, query strings, fragments, trailing slashes) to a single
// identity key. Both are pure, total, and idempotent.
package textnorm
