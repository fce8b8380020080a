package handlers

import (
	"context"

	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opCommit implements COMMIT (RFC 7530 §16.4). It commits the entire
// Write Cache buffer regardless of the requested offset/count — there
// is no sub-range commit (§9) — and drops the filehandle from the
// per-connection cache.
func opCommit(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	if _, err := d.Uint64(); err != nil { // offset, ignored
		return types.NFS4ErrBadXDR
	}
	if _, err := d.Uint32(); err != nil { // count, ignored
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}

	handle, err := ctx.Files.GetWriteCacheHandle(ctx.Current)
	if err != nil {
		return types.StatusOf(err)
	}
	if commitErr := handle.Commit(context.Background()); commitErr != nil {
		return types.NFS4ErrIO
	}
	ctx.Conn.CacheDrop(ctx.Current.ID)

	e.FixedOpaque(writeVerifier(ctx.Conn.BootTime))
	return types.NFS4OK
}
