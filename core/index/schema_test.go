package index

import (
	"testing"

	"cohort-indexer/core/transport"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSchema_Validate(t *testing.T) {
	schema, err := compileSchema("portals", `{
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"port": {"type": "array", "items": {"type": "string"}},
			"count": {"type": "integer"},
			"live": {"type": "boolean"},
			"meta": {"type": "object"},
			"score": {"type": "number"}
		},
		"required": ["name"]
	}`)
	require.NoError(t, err)

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"Valid", `{"name":"a","port":["x"],"count":2,"live":true,"meta":{},"score":1.5}`, false},
		{"MissingRequired", `{"port":[]}`, true},
		{"WrongType", `{"name":3}`, true},
		{"BadArrayItem", `{"name":"a","port":["x",1]}`, true},
		{"FractionalInteger", `{"name":"a","count":1.5}`, true},
		{"ExtraFieldsAllowed", `{"name":"a","other":1}`, false},
		{"NotAnObject", `["a"]`, true},
		{"Malformed", `{not json`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDocument(schema, []byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDocument)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSchema_EmptyAcceptsObjects(t *testing.T) {
	schema, err := compileSchema("any", "")
	require.NoError(t, err)
	assert.Nil(t, schema)

	assert.NoError(t, validateDocument(schema, []byte(`{"x":1}`)))
	assert.ErrorIs(t, validateDocument(schema, []byte(`"x"`)), ErrInvalidDocument)
}

func TestDefine_RejectsInvalidSchema(t *testing.T) {
	store := NewStore(nil, nil, zap.NewNop(), Config{}, transport.BackoffConfig{})
	ix := store.Index("broken")

	assert.ErrorIs(t, ix.Define("portals", Definition{Schema: `{"type": 12}`}), ErrInvalidSchema)
	assert.ErrorIs(t, ix.Define("portals", Definition{Schema: `{nope`}), ErrInvalidSchema)
}

func TestDefinition_Matches(t *testing.T) {
	d := Definition{FilePatterns: []string{"/portal.json", "/portals/*.json"}}

	assert.True(t, d.Matches("/portal.json"))
	assert.True(t, d.Matches("/portals/abc.json"))
	assert.False(t, d.Matches("/portals/sub/abc.json"))
	assert.False(t, d.Matches("/other.json"))
}

func TestDocument_Accessors(t *testing.T) {
	d := Document{Fields: map[string]any{"name": "x", "port": []any{"a", 2.0, "b"}, "n": 1.0}}

	assert.Equal(t, "x", d.String("name"))
	assert.Equal(t, "", d.String("n"))
	assert.Equal(t, []string{"a", "b"}, d.Strings("port"))
	assert.Nil(t, d.Strings("name"))
	assert.Equal(t, []string{"x", "1"}, d.sortKey([]string{"name", "n"}))
}
