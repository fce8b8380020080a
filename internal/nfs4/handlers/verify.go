package handlers

import (
	"bytes"

	"github.com/kelpfs/nfs4d/internal/nfs4/attrs"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// verifyAttributes decodes a client-supplied fattr4 and compares its
// opaque attr_vals, byte for byte, against the same attributes encoded
// fresh from the current filehandle — the shared comparison VERIFY and
// NVERIFY both build on.
func verifyAttributes(ctx *RequestContext, d *xdr.Decoder) (match bool, status uint32) {
	clientBitmap, err := attrs.DecodeBitmap4(d)
	if err != nil {
		return false, types.NFS4ErrBadXDR
	}
	clientAttrData, err := d.Opaque()
	if err != nil {
		return false, types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return false, types.NFS4ErrStale
	}

	_, fullValue, attrErr := ctx.Files.GetAttrs(ctx.Current.Raw, clientBitmap)
	if attrErr != nil {
		return false, types.StatusOf(attrErr)
	}

	sd := xdr.NewDecoder(fullValue)
	if _, err := attrs.DecodeBitmap4(sd); err != nil {
		return false, types.NFS4ErrServerfault
	}
	serverAttrData, err := sd.Opaque()
	if err != nil {
		return false, types.NFS4ErrServerfault
	}

	return bytes.Equal(clientAttrData, serverAttrData), types.NFS4OK
}

// opVerify implements VERIFY (RFC 7530 §16.34): succeeds iff the
// current filehandle's attributes match the client-supplied fattr4,
// letting a compound short-circuit a conditional SETATTR.
func opVerify(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	match, status := verifyAttributes(ctx, d)
	if status != types.NFS4OK {
		return status
	}
	if !match {
		return types.NFS4ErrNotSame
	}
	return types.NFS4OK
}
