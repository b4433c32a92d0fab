// Package address normalizes peer-addressed source locations.
//
// A source address has the form `scheme://key[/path]`, for example
// `dat://0c36c5c3.../portal.json`. Three derived forms are used across the
// crawler:
//
//   - Normalize: the raw address with trailing slashes removed. Trackers key
//     their records by this form, so `dat://abc/` and `dat://abc` collide.
//   - Source: the owning source of a document path (`dat://abc/sub/doc.json`
//     resolves to `dat://abc`).
//   - Identity: the normalized address with its scheme removed. Persisted
//     portal records are keyed by it.
package address
