package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opRead implements READ (RFC 7530 §16.23). The stateid is decoded but
// never checked (AnonymousStateid4/BypassStateid4 and real share
// stateids are all accepted identically); the result always claims
// eof = true regardless of whether more data actually follows (§9).
func opRead(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	if _, err := types.DecodeStateid4(d); err != nil {
		return types.NFS4ErrBadXDR
	}
	offset, err := d.Uint64()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	count, err := d.Uint32()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}

	data, readErr := ctx.Files.ReadFile(ctx.Current, offset, count)
	if readErr != nil {
		return types.StatusOf(readErr)
	}

	e.Bool(true) // eof
	e.Opaque(data)
	return types.NFS4OK
}
