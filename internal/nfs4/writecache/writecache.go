// Package writecache implements the per-filehandle buffered-write
// actor: one goroutine per open write-cache entry, draining a typed
// inbound message channel, matching the actor-per-coordinator model
// the File Manager's registry spawns entries from (§4.5, §9).
package writecache

import (
	"context"
	"fmt"

	"github.com/kelpfs/nfs4d/internal/metrics"
	"github.com/kelpfs/nfs4d/pkg/vfs"
)

// Owner is the subset of the File Manager a Handle calls back into
// once its buffer is committed. Defined here (rather than depending on
// the file package directly) so writecache has no dependency on its
// own owner, avoiding an import cycle.
type Owner interface {
	TouchFile(id string) error
	DropWriteCacheHandle(id string) error
}

type writeMsg struct {
	offset int64
	data   []byte
	reply  chan error
}

type commitMsg struct {
	reply chan error
}

// Handle is a live write-cache entry for one filehandle. It is created
// by the File Manager on first UNSTABLE write and destroyed on COMMIT.
type Handle struct {
	writeCh  chan writeMsg
	commitCh chan commitMsg
}

// New spawns a write-cache actor for fhID/path, seeding its buffer from
// the file's current contents.
func New(fs vfs.FileSystem, owner Owner, fhID, path string) (*Handle, error) {
	initial, err := fs.ReadAll(path)
	if err != nil {
		return nil, fmt.Errorf("writecache: read initial contents of %s: %w", path, err)
	}
	buf := append([]byte(nil), initial...)

	h := &Handle{
		writeCh:  make(chan writeMsg),
		commitCh: make(chan commitMsg),
	}
	go h.run(fs, owner, fhID, path, buf)
	return h, nil
}

func (h *Handle) run(fs vfs.FileSystem, owner Owner, fhID, path string, buf []byte) {
	changed := false
	for {
		select {
		case msg := <-h.writeCh:
			buf = writeAt(buf, msg.offset, msg.data)
			changed = true
			msg.reply <- nil

		case msg := <-h.commitCh:
			var err error
			if changed {
				err = fs.WriteAll(path, buf)
				if err == nil {
					metrics.WriteCacheFlushBytes.Observe(float64(len(buf)))
					err = owner.TouchFile(fhID)
				}
			}
			msg.reply <- err
			_ = owner.DropWriteCacheHandle(fhID)
			return
		}
	}
}

func writeAt(buf []byte, offset int64, data []byte) []byte {
	end := offset + int64(len(data))
	if end > int64(len(buf)) {
		grown := make([]byte, end)
		copy(grown, buf)
		buf = grown
	}
	copy(buf[offset:], data)
	return buf
}

// Write seeks the cache's cursor to offset and writes data, marking the
// entry changed.
func (h *Handle) Write(ctx context.Context, offset int64, data []byte) error {
	reply := make(chan error, 1)
	select {
	case h.writeCh <- writeMsg{offset: offset, data: data, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Commit flushes the whole buffer to the backing file if it changed,
// touches the filehandle through Owner, and always tells Owner to drop
// this entry — the actor exits after replying, matching the
// destroyed-on-commit lifecycle (§3).
func (h *Handle) Commit(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case h.commitCh <- commitMsg{reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
