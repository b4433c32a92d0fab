package index

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Definition declares a table on an index.
type Definition struct {
	// Schema is a JSON Schema document (draft 6 unless "$schema" says
	// otherwise) every stored document must satisfy. Empty accepts any
	// object.
	Schema string
	// Indexes lists secondary index keys usable with OrderBy. Compound keys
	// join field names with "+", e.g. "name+cohortName".
	Indexes []string
	// FilePatterns selects the source documents this table holds, e.g.
	// "/portal.json" or "/portals/*.json".
	FilePatterns []string
}

// Matches reports whether a document path belongs to this table.
func (d Definition) Matches(docPath string) bool {
	for _, pattern := range d.FilePatterns {
		if ok, err := path.Match(pattern, docPath); err == nil && ok {
			return true
		}
	}
	return false
}

// HasIndex reports whether key is a declared secondary index.
func (d Definition) HasIndex(key string) bool {
	for _, k := range d.Indexes {
		if k == key {
			return true
		}
	}
	return false
}

// compileSchema compiles a table's schema document. An empty document yields
// a nil schema.
func compileSchema(table, doc string) (*jsonschema.Schema, error) {
	if strings.TrimSpace(doc) == "" {
		return nil, nil
	}
	parsed, err := jsonschema.UnmarshalJSON(strings.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, table, err)
	}
	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft6)
	loc := table + ".schema.json"
	if err := c.AddResource(loc, parsed); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, table, err)
	}
	schema, err := c.Compile(loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSchema, table, err)
	}
	return schema, nil
}

// validateDocument decodes body and checks it against schema. Bodies must be
// JSON objects.
func validateDocument(schema *jsonschema.Schema, body []byte) error {
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, ok := v.(map[string]any); !ok {
		return fmt.Errorf("%w: expected object, got %T", ErrInvalidDocument, v)
	}
	if schema == nil {
		return nil
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// indexFields splits a compound index key into field names.
func indexFields(key string) []string {
	return strings.Split(key, "+")
}
