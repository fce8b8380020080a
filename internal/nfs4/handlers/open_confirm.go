package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opOpenConfirm implements OPEN_CONFIRM (RFC 7530 §16.18). The caller's
// stateid is decoded but never checked against the record it names —
// whichever OPEN share reservation exists on the current filehandle is
// confirmed and echoed back (§9).
func opOpenConfirm(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	if _, err := types.DecodeStateid4(d); err != nil {
		return types.NFS4ErrBadXDR
	}
	if _, err := d.Uint32(); err != nil { // seqid, unused
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}

	rec, ok := ctx.Files.FirstShareLock(ctx.Current.ID)
	if !ok {
		return types.NFS4ErrBadStateid
	}
	ctx.Files.ConfirmLock(rec.Stateid.Other)
	rec.Stateid.Encode(e)
	return types.NFS4OK
}
