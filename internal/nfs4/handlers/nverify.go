package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opNverify implements NVERIFY (RFC 7530 §16.17), the inverse of
// VERIFY: succeeds when attributes differ, fails NFS4ERR_SAME when
// they match.
func opNverify(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	match, status := verifyAttributes(ctx, d)
	if status != types.NFS4OK {
		return status
	}
	if match {
		return types.NFS4ErrSame
	}
	return types.NFS4OK
}
