package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/attrs"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opSetattr implements SETATTR (RFC 7530 §16.32). The stateid is
// decoded but never checked, and only the Size attribute is ever
// applied (truncate/extend via read-back-and-rewrite); any other bit
// in the request is simply absent from the returned attrsset.
func opSetattr(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	if _, err := types.DecodeStateid4(d); err != nil {
		return types.NFS4ErrBadXDR
	}
	requested, err := attrs.DecodeBitmap4(d)
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	valueBlob, err := d.Opaque()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}

	var applied []uint32
	if attrs.IsBitSet(requested, attrs.Size) {
		vd := xdr.NewDecoder(valueBlob)
		size, sizeErr := vd.Uint64()
		if sizeErr != nil {
			return types.NFS4ErrBadXDR
		}
		if resizeErr := ctx.Files.Resize(ctx.Current.Raw, size); resizeErr != nil {
			return types.StatusOf(resizeErr)
		}
		attrs.SetBit(&applied, attrs.Size)
	}

	ctx.Conn.CacheDrop(ctx.Current.ID)
	if touchErr := ctx.Files.TouchFile(ctx.Current.ID); touchErr != nil {
		return types.StatusOf(touchErr)
	}
	refreshed, getErr := ctx.Files.GetById(ctx.Current.Raw)
	if getErr != nil {
		return types.StatusOf(getErr)
	}
	ctx.Current = refreshed

	attrs.EncodeBitmap4(e, applied)
	return types.NFS4OK
}
