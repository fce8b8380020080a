package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opSetclientidConfirm implements SETCLIENTID_CONFIRM (RFC 7530
// §16.33), completing the handshake SETCLIENTID started.
func opSetclientidConfirm(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	clientID, err := d.Uint64()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	confirmRaw, err := d.FixedOpaque(8)
	if err != nil {
		return types.NFS4ErrBadXDR
	}

	var confirm [8]byte
	copy(confirm[:], confirmRaw)

	if _, confirmErr := ctx.Clients.ConfirmClient(clientID, confirm, ctx.Principal); confirmErr != nil {
		return types.StatusOf(confirmErr)
	}
	return types.NFS4OK
}
