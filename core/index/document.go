package index

import "cohort-indexer/core/utils"

// Document is a stored source document.
type Document struct {
	// Table is the table the document was matched to.
	Table string
	// Source is the normalized address of the owning source.
	Source string
	// Path is the full document path, e.g. `dat://key/portal.json`.
	Path string
	// Version is the source version the document was read at.
	Version int64
	// Fields holds the decoded JSON body.
	Fields map[string]any
}

// String returns a string field, or "" when absent or not a string.
func (d Document) String(field string) string {
	s, _ := d.Fields[field].(string)
	return s
}

// Strings returns the string elements of an array field.
func (d Document) Strings(field string) []string {
	items, ok := d.Fields[field].([]any)
	if !ok {
		return nil
	}
	return utils.ToStrings(items)
}

// sortKey renders the values of a compound index for ordering.
func (d Document) sortKey(fields []string) []string {
	key := make([]string, len(fields))
	for i, f := range fields {
		key[i] = utils.ToString(d.Fields[f])
	}
	return key
}
