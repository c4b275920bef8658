package fsutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/miminchandrank/Csv-data-analyst/src/fsutil"
)

func TestLocalFileStoreTempFileLifecycle(t *testing.T) {
	store := fsutil.NewLocalFileStore()
	dir := filepath.Join(t.TempDir(), "uploads")

	path, err := store.WriteTempFile(dir, ".csv", []byte("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".csv"))
	assert.Equal(t, dir, filepath.Dir(path))

	data, err := store.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))

	require.NoError(t, store.Remove(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// removing twice is fine
	assert.NoError(t, store.Remove(path))
}
