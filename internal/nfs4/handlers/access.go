package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opAccess implements ACCESS (RFC 7530 §16.1): echoes the requested
// mask as granted. No permission model backs this server, so every bit
// in SupportedAccessMask is always reported available and the
// requested mask is always granted verbatim — mode and ownership are
// never consulted.
func opAccess(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	mask, err := d.Uint32()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	e.Uint32(types.SupportedAccessMask)
	e.Uint32(mask)
	return types.NFS4OK
}
