package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/client"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opSetclientid implements SETCLIENTID (RFC 7530 §16.32), delegating
// the verifier/id bookkeeping to the Client Manager's UpsertClient.
func opSetclientid(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	verifierRaw, err := d.FixedOpaque(8)
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	id, err := d.Opaque()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	cbProgram, err := d.Uint32()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	netID, err := d.String()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	addr, err := d.String()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	cbIdent, err := d.Uint32()
	if err != nil {
		return types.NFS4ErrBadXDR
	}

	var verifier [8]byte
	copy(verifier[:], verifierRaw)
	callback := client.Callback{Program: cbProgram, NetID: netID, Address: addr, Ident: cbIdent}

	rec, upsertErr := ctx.Clients.UpsertClient(verifier, string(id), callback, ctx.Principal)
	if upsertErr != nil {
		return types.StatusOf(upsertErr)
	}

	e.Uint64(rec.ClientID)
	e.FixedOpaque(rec.Confirm[:])
	return types.NFS4OK
}
