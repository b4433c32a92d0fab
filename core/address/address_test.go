package address

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"TrailingSlash", "dat://abc/", "dat://abc"},
		{"NoSlash", "dat://abc", "dat://abc"},
		{"ManySlashes", "dat://abc///", "dat://abc"},
		{"Whitespace", "  dat://abc/ ", "dat://abc"},
		{"WithPath", "dat://abc/portal.json", "dat://abc/portal.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalize_SameFetcherKey(t *testing.T) {
	assert.Equal(t, Normalize("dat://host"), Normalize("dat://host/"))
	assert.NotEqual(t, Normalize("dat://host"), Normalize("dat://other"))
}

func TestSource(t *testing.T) {
	assert.Equal(t, "dat://host", Source("dat://host/sub/doc.json"))
	assert.Equal(t, "dat://host", Source("dat://host/portal.json"))
	assert.Equal(t, "dat://host", Source("dat://host"))
	assert.Equal(t, "dat://host", Source("dat://host/"))
	assert.Equal(t, "relative/path", Source("relative/path/"))
}

func TestIdentityAndKey(t *testing.T) {
	assert.Equal(t, "host", Identity("dat://host/"))
	assert.Equal(t, "host/x", Identity("dat://host/x"))
	assert.Equal(t, "plain", Identity("plain"))
	assert.Equal(t, "host", Key("dat://host/sub/doc.json"))
}
