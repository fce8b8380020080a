package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opPutrootfh implements PUTROOTFH (RFC 7530 §16.20): sets current
// filehandle to the root, minted by the File Manager at startup.
func opPutrootfh(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	ctx.Current = ctx.Files.GetRoot()
	return types.NFS4OK
}

// opPutfh implements PUTFH (RFC 7530 §16.19): resolves the supplied
// opaque filehandle id, consulting the per-connection cache before the
// File Manager. A miss clears the current filehandle and reports STALE.
func opPutfh(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	id, err := d.Opaque()
	if err != nil {
		return types.NFS4ErrBadXDR
	}

	if fh, ok := ctx.Conn.CacheGet(string(id)); ok {
		ctx.Current = fh
		return types.NFS4OK
	}

	fh, lookupErr := ctx.Files.GetById(id)
	if lookupErr != nil {
		ctx.Current = nil
		return types.NFS4ErrStale
	}
	ctx.Current = fh
	ctx.Conn.CachePut(fh)
	return types.NFS4OK
}

// opGetfh implements GETFH (RFC 7530 §16.10): returns the current
// filehandle's opaque id.
func opGetfh(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	if ctx.Current == nil {
		return types.NFS4ErrServerfault
	}
	e.Opaque(ctx.Current.Raw)
	return types.NFS4OK
}
