package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opRenew implements RENEW (RFC 7530 §16.25): refreshes a confirmed
// client's lease timer via the Client Manager.
func opRenew(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	clientID, err := d.Uint64()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if renewErr := ctx.Clients.RenewLease(clientID); renewErr != nil {
		return types.StatusOf(renewErr)
	}
	return types.NFS4OK
}
