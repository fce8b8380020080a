package writecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelpfs/nfs4d/pkg/vfs/memoryfs"
)

type fakeOwner struct {
	touched chan string
	dropped chan string
}

func newFakeOwner() *fakeOwner {
	return &fakeOwner{
		touched: make(chan string, 1),
		dropped: make(chan string, 1),
	}
}

func (f *fakeOwner) TouchFile(id string) error {
	f.touched <- id
	return nil
}

func (f *fakeOwner) DropWriteCacheHandle(id string) error {
	f.dropped <- id
	return nil
}

func TestWriteThenCommitFlushesWholeBuffer(t *testing.T) {
	fsys := memoryfs.New()
	require.NoError(t, fsys.CreateFile("/a.txt"))
	owner := newFakeOwner()

	h, err := New(fsys, owner, "fh-1", "/a.txt")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, h.Write(ctx, 0, []byte("hello")))
	require.NoError(t, h.Write(ctx, 5, []byte(" world")))
	require.NoError(t, h.Commit(ctx))

	data, err := fsys.ReadAll("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	assert.Equal(t, "fh-1", <-owner.touched)
	assert.Equal(t, "fh-1", <-owner.dropped)
}

func TestCommitWithoutWriteSkipsTouchButStillDrops(t *testing.T) {
	fsys := memoryfs.New()
	require.NoError(t, fsys.CreateFile("/a.txt"))
	owner := newFakeOwner()

	h, err := New(fsys, owner, "fh-2", "/a.txt")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, h.Commit(ctx))

	select {
	case <-owner.touched:
		t.Fatal("touch should not fire when nothing changed")
	default:
	}
	assert.Equal(t, "fh-2", <-owner.dropped)
}

func TestWriteBeyondCurrentLengthGrowsBuffer(t *testing.T) {
	fsys := memoryfs.New()
	require.NoError(t, fsys.CreateFile("/a.txt"))
	owner := newFakeOwner()

	h, err := New(fsys, owner, "fh-3", "/a.txt")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, h.Write(ctx, 3, []byte("X")))
	require.NoError(t, h.Commit(ctx))

	data, err := fsys.ReadAll("/a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 'X'}, data)
}
