package osfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelpfs/nfs4d/pkg/vfs"
)

func TestFileLifecycle(t *testing.T) {
	fsys, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fsys.CreateFile("/hello.txt"))
	require.NoError(t, fsys.WriteAll("/hello.txt", []byte("hi")))

	data, err := fsys.ReadAll("/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, "hi", string(data))

	info, err := fsys.Stat("/hello.txt")
	require.NoError(t, err)
	assert.Equal(t, vfs.KindFile, info.Kind)
	assert.Equal(t, int64(2), info.Size)

	require.NoError(t, fsys.Remove("/hello.txt"))
	_, err = fsys.Stat("/hello.txt")
	assert.True(t, vfs.IsNotExist(err))
}

func TestCreateFileIsIdempotent(t *testing.T) {
	fsys, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fsys.CreateFile("/a.txt"))
	require.NoError(t, fsys.CreateFile("/a.txt"))
}

func TestDirectoryListing(t *testing.T) {
	fsys, err := New(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, fsys.CreateDir("/sub"))
	require.NoError(t, fsys.CreateFile("/sub/one.txt"))
	require.NoError(t, fsys.CreateFile("/sub/two.txt"))

	entries, err := fsys.List("/sub")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestNewRejectsNonDirectory(t *testing.T) {
	dir := t.TempDir()
	fsys, err := New(dir)
	require.NoError(t, err)
	require.NoError(t, fsys.CreateFile("/file.txt"))

	_, err = New(dir + "/file.txt")
	assert.Error(t, err)
}
