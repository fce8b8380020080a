package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opClose implements CLOSE (RFC 7530 §16.2.4): drops the current
// filehandle from the per-connection cache and replies with a stateid
// carrying the call's own seqid and the open_stateid's "other" bytes.
func opClose(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	closeSeqid, err := d.Uint32()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	stateid, err := types.DecodeStateid4(d)
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}

	ctx.Conn.CacheDrop(ctx.Current.ID)
	reply := types.Stateid4{Seqid: closeSeqid, Other: stateid.Other}
	reply.Encode(e)
	return types.NFS4OK
}
