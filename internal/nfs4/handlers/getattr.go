package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/attrs"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opGetattr implements GETATTR (RFC 7530 §16.9): returns the fattr4
// (answer bitmap plus encoded values) for the subset of the requested
// mask this server supports.
func opGetattr(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	requested, err := attrs.DecodeBitmap4(d)
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}

	_, value, attrErr := ctx.Files.GetAttrs(ctx.Current.Raw, requested)
	if attrErr != nil {
		return types.StatusOf(attrErr)
	}
	e.FixedOpaque(value)
	return types.NFS4OK
}
