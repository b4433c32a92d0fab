package address

import "strings"

const schemeSep = "://"

// Normalize strips trailing slashes and surrounding whitespace.
func Normalize(raw string) string {
	return strings.TrimRight(strings.TrimSpace(raw), "/")
}

// Source returns the source address that owns a document path.
// Paths without a scheme are returned normalized and otherwise untouched.
func Source(documentPath string) string {
	p := strings.TrimSpace(documentPath)
	i := strings.Index(p, schemeSep)
	if i < 0 {
		return Normalize(p)
	}
	rest := p[i+len(schemeSep):]
	if j := strings.Index(rest, "/"); j >= 0 {
		rest = rest[:j]
	}
	return p[:i+len(schemeSep)] + rest
}

// Key returns the host part of an address (`dat://abc/x` -> `abc`).
func Key(raw string) string {
	return Identity(Source(raw))
}

// Identity returns the normalized address without its scheme.
func Identity(raw string) string {
	n := Normalize(raw)
	if i := strings.Index(n, schemeSep); i >= 0 {
		return n[i+len(schemeSep):]
	}
	return n
}
