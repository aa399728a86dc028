package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Put(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	require.NoError(t, err)

	ref, err := store.Put(context.Background(), "documents", "owner-1/session-1/doc-1.pdf", []byte("%PDF"), "application/pdf")

	require.NoError(t, err)
	assert.Equal(t, "documents/owner-1/session-1/doc-1.pdf", ref)
	data, err := os.ReadFile(filepath.Join(root, "documents", "owner-1", "session-1", "doc-1.pdf"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data))
}

func TestStore_PutReplaces(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "b", "x.png", []byte("one"), "image/png")
	require.NoError(t, err)
	_, err = store.Put(context.Background(), "b", "x.png", []byte("two"), "image/png")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, "b", "x.png"))
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "b"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestStore_PutRejectsEscapingPaths(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"", "../escape.pdf", "a/../../escape.pdf", "/abs.pdf", "a//b.pdf"} {
		_, err := store.Put(context.Background(), "documents", name, []byte("x"), "")
		assert.Error(t, err, name)
	}
	_, err = store.Put(context.Background(), "", "a.pdf", []byte("x"), "")
	assert.Error(t, err)
}

func TestNew_RequiresRoot(t *testing.T) {
	_, err := New("")
	assert.Error(t, err)
}
