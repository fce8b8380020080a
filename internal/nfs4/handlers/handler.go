package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// OpHandler decodes one operation's arguments from d, executes it
// against ctx, and — only when it returns NFS4OK — encodes the
// operation's success-arm result into e. A non-OK return must leave e
// untouched, since RFC 7530's nfs_resop4 union carries no value arm for
// most error statuses. REMOVE is the sole exception: it writes a
// successful change_info4 body while still returning a non-OK status.
type OpHandler func(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32

// opTable lists every operation this server implements. Anything else
// is answered NOTSUPP by the COMPOUND dispatcher (§4.7 rule 5); the
// reserved ILLEGAL opcode gets its own dedicated status.
var opTable = map[uint32]OpHandler{
	types.OpPutrootfh:          opPutrootfh,
	types.OpPutfh:              opPutfh,
	types.OpGetfh:              opGetfh,
	types.OpLookup:             opLookup,
	types.OpAccess:             opAccess,
	types.OpGetattr:            opGetattr,
	types.OpSetattr:            opSetattr,
	types.OpOpen:               opOpen,
	types.OpOpenConfirm:        opOpenConfirm,
	types.OpClose:              opClose,
	types.OpRead:               opRead,
	types.OpWrite:              opWrite,
	types.OpCommit:             opCommit,
	types.OpCreate:             opCreate,
	types.OpRemove:             opRemove,
	types.OpReaddir:            opReaddir,
	types.OpRenew:              opRenew,
	types.OpSetclientid:        opSetclientid,
	types.OpSetclientidConfirm: opSetclientidConfirm,
	types.OpSecinfo:            opSecinfo,
	types.OpVerify:             opVerify,
	types.OpNverify:            opNverify,
}
