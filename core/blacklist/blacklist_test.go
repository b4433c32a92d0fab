package blacklist

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemover struct {
	sources []string
	removed []string
	failOn  string
	listErr error
}

func (f *fakeRemover) Sources(ctx context.Context) ([]string, error) {
	return f.sources, f.listErr
}

func (f *fakeRemover) RemoveSource(ctx context.Context, addr string) error {
	if addr == f.failOn {
		return errors.New("boom")
	}
	f.removed = append(f.removed, addr)
	return nil
}

func TestIsBlacklisted(t *testing.T) {
	f := New([]string{"dat://bad/", "dat://worse"})

	assert.True(t, f.IsBlacklisted("dat://bad"))
	assert.True(t, f.IsBlacklisted("dat://bad/"))
	assert.True(t, f.IsBlacklisted("dat://worse/"))
	assert.False(t, f.IsBlacklisted("dat://good"))
	assert.Equal(t, []string{"dat://bad", "dat://worse"}, f.Entries())
}

func TestNilFilter(t *testing.T) {
	var f *Filter
	assert.False(t, f.IsBlacklisted("dat://any"))
	assert.Equal(t, 0, f.Len())
	assert.Nil(t, f.Entries())
}

func TestPartition(t *testing.T) {
	f := New([]string{"dat://b"})
	allowed, skipped := f.Partition([]string{"dat://a", "dat://b/", "dat://c"})

	assert.Equal(t, []string{"dat://a", "dat://c"}, allowed)
	assert.Equal(t, []string{"dat://b/"}, skipped)
}

func TestLoad(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		f, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 0, f.Len())
	})

	t.Run("ValidFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blacklist.yaml")
		content := "addresses:\n  - dat://one/\n  - dat://two\n  - dat://one\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

		f, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"dat://one", "dat://two"}, f.Entries())
	})

	t.Run("InvalidYAML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "blacklist.yaml")
		require.NoError(t, os.WriteFile(path, []byte("addresses: [unclosed"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestPrune(t *testing.T) {
	f := New([]string{"dat://b", "dat://d"})

	t.Run("RemovesOnlyBlacklisted", func(t *testing.T) {
		r := &fakeRemover{sources: []string{"dat://a", "dat://b", "dat://c"}}
		removed, err := f.Prune(context.Background(), r)
		require.NoError(t, err)
		assert.Equal(t, []string{"dat://b"}, removed)
		assert.Equal(t, []string{"dat://b"}, r.removed)
	})

	t.Run("ContinuesPastFailures", func(t *testing.T) {
		r := &fakeRemover{sources: []string{"dat://b", "dat://d"}, failOn: "dat://b"}
		removed, err := f.Prune(context.Background(), r)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "dat://b")
		assert.Equal(t, []string{"dat://d"}, removed)
	})

	t.Run("ListError", func(t *testing.T) {
		r := &fakeRemover{listErr: errors.New("db down")}
		_, err := f.Prune(context.Background(), r)
		assert.ErrorContains(t, err, "db down")
	})

	t.Run("EmptyFilterSkipsListing", func(t *testing.T) {
		r := &fakeRemover{listErr: errors.New("should not be called")}
		removed, err := New(nil).Prune(context.Background(), r)
		assert.NoError(t, err)
		assert.Empty(t, removed)
	})
}
