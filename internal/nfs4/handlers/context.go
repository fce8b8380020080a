package handlers

import (
	"sync"
	"time"

	"github.com/kelpfs/nfs4d/internal/nfs4/client"
	"github.com/kelpfs/nfs4d/internal/nfs4/file"
)

const fhCacheTTL = 10 * time.Second

type cacheEntry struct {
	fh *file.Filehandle
	at time.Time
}

// ConnContext is the per-TCP-connection state shared across every
// COMPOUND call on that connection: the write verifier and the
// filehandle cache PUTFH consults before asking the File Manager (§4.6).
type ConnContext struct {
	mu         sync.Mutex
	RemoteAddr string
	BootTime   uint64
	cache      map[string]cacheEntry
}

// NewConnContext returns a fresh per-connection context stamped with
// the server's boot time, used both as the volatile-filehandle epoch
// and as the write verifier returned by WRITE/COMMIT.
func NewConnContext(remoteAddr string, bootTime uint64) *ConnContext {
	return &ConnContext{
		RemoteAddr: remoteAddr,
		BootTime:   bootTime,
		cache:      make(map[string]cacheEntry),
	}
}

// CacheGet returns the cached filehandle for id if present and no
// older than fhCacheTTL, evicting it otherwise.
func (c *ConnContext) CacheGet(id string) (*file.Filehandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[id]
	if !ok {
		return nil, false
	}
	if time.Since(e.at) > fhCacheTTL {
		delete(c.cache, id)
		return nil, false
	}
	return e.fh, true
}

// CachePut records fh as freshly seen on this connection.
func (c *ConnContext) CachePut(fh *file.Filehandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[fh.ID] = cacheEntry{fh: fh, at: time.Now()}
}

// CacheDrop removes id from the connection's cache, used by COMMIT.
func (c *ConnContext) CacheDrop(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, id)
}

// RequestContext is created fresh for every COMPOUND call and threaded
// through each operation in its argarray, carrying the mutable "current
// filehandle" pointer and handles to both coordinators (§4.6).
type RequestContext struct {
	Conn    *ConnContext
	Clients *client.Manager
	Files   *file.Manager

	// Principal identifies the calling credential (AUTH_SYS machine
	// name and uid, or "anonymous" for AUTH_NONE), used by SETCLIENTID
	// and SETCLIENTID_CONFIRM's callback-collision checks (RFC 7530
	// §9.1.1).
	Principal string

	Current *file.Filehandle
}
