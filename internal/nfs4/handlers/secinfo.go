package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// Security flavors this server ever reports to SECINFO (RFC 7530
// §16.31). GSS flavors are excluded.
const (
	secInfoFlavorAuthNone = 0
	secInfoFlavorAuthSys  = 1
)

// opSecinfo implements SECINFO (RFC 7530 §16.31): it always reports
// AUTH_SYS and AUTH_NONE as the available security mechanisms for the
// named child, without consulting the backing store. Per §16.31.4 the
// current filehandle is consumed — cleared on return.
func opSecinfo(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	if _, err := d.String(); err != nil { // name, unused
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}
	ctx.Current = nil

	e.Uint32(2)
	e.Uint32(secInfoFlavorAuthSys)
	e.Uint32(secInfoFlavorAuthNone)
	return types.NFS4OK
}
