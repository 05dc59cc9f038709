package filestoresvc

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	path, n, err := store.Save(ctx, "emp-1", "doc.pdf", strings.NewReader("%PDF-1.4 hello"))
	require.NoError(t, err)
	assert.Equal(t, "emp-1/doc.pdf", path)
	assert.Equal(t, int64(14), n)

	_, err = os.Stat(filepath.Join(root, "emp-1", "doc.pdf"))
	require.NoError(t, err)

	rc, err := store.Open(ctx, path)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.4 hello", string(content))

	require.NoError(t, store.Remove(ctx, path))
	require.NoError(t, store.Remove(ctx, path), "removing twice is fine")
	_, err = store.Open(ctx, path)
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStoreStaysInRoot(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	path, _, err := store.Save(ctx, "../../etc", "../passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "etc/passwd", path)

	_, err = store.Open(ctx, "../outside.txt")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestLocalStoreCancelled(t *testing.T) {
	root := t.TempDir()
	store, err := NewLocalStore(root)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = store.Save(ctx, "emp-1", "doc.pdf", strings.NewReader("data"))
	assert.Error(t, err)

	entries, err := os.ReadDir(filepath.Join(root, "emp-1"))
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp file left behind")
}
