package memoryfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelpfs/nfs4d/pkg/vfs"
)

func TestLoadYAML(t *testing.T) {
	doc := []byte(`
file1.txt: "Hello, loooooooong world!"
dir1/file2.txt: "Hello, file2!"
dir2: {}
`)
	fsys, err := LoadYAML(doc)
	require.NoError(t, err)

	t.Run("TopLevelFileReadable", func(t *testing.T) {
		data, err := fsys.ReadAll("/file1.txt")
		require.NoError(t, err)
		assert.Equal(t, "Hello, loooooooong world!", string(data))
	})

	t.Run("NestedFileCreatesParentDirectory", func(t *testing.T) {
		info, err := fsys.Stat("/dir1")
		require.NoError(t, err)
		assert.Equal(t, vfs.KindDir, info.Kind)

		data, err := fsys.ReadAll("/dir1/file2.txt")
		require.NoError(t, err)
		assert.Equal(t, "Hello, file2!", string(data))
	})

	t.Run("ExplicitEmptyDirectory", func(t *testing.T) {
		entries, err := fsys.List("/dir2")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("RootListsAllTopLevelEntries", func(t *testing.T) {
		entries, err := fsys.List("/")
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})
}

func TestCreateRemoveWrite(t *testing.T) {
	fsys := New()

	t.Run("CreateFileThenWriteThenRead", func(t *testing.T) {
		require.NoError(t, fsys.CreateFile("/a.txt"))
		require.NoError(t, fsys.WriteAll("/a.txt", []byte("hello")))
		data, err := fsys.ReadAll("/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("RemoveThenStatFails", func(t *testing.T) {
		require.NoError(t, fsys.Remove("/a.txt"))
		_, err := fsys.Stat("/a.txt")
		assert.True(t, vfs.IsNotExist(err))
	})

	t.Run("LookupMissingPathFails", func(t *testing.T) {
		_, err := fsys.Stat("/does/not/exist")
		assert.True(t, vfs.IsNotExist(err))
	})
}
