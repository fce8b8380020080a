package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/attrs"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
	"github.com/kelpfs/nfs4d/pkg/vfs"
)

type openArgs struct {
	seqid        uint32
	shareAccess  uint32
	shareDeny    uint32
	clientID     uint64
	owner        []byte
	isCreate     bool
	createMode   uint32
	verifier     *[8]byte
	claimIsNull  bool
	name         string
}

func decodeOpenArgs(d *xdr.Decoder) (openArgs, bool) {
	var a openArgs
	var err error

	if a.seqid, err = d.Uint32(); err != nil {
		return a, false
	}
	if a.shareAccess, err = d.Uint32(); err != nil {
		return a, false
	}
	if a.shareDeny, err = d.Uint32(); err != nil {
		return a, false
	}
	if a.clientID, err = d.Uint64(); err != nil {
		return a, false
	}
	if a.owner, err = d.Opaque(); err != nil {
		return a, false
	}

	openType, err := d.Uint32()
	if err != nil {
		return a, false
	}
	a.isCreate = openType == types.OpenCreate
	if a.isCreate {
		if a.createMode, err = d.Uint32(); err != nil {
			return a, false
		}
		switch a.createMode {
		case types.Unchecked4, types.Guarded4:
			requested, err := attrs.DecodeBitmap4(d)
			if err != nil {
				return a, false
			}
			if _, err := d.Opaque(); err != nil { // attrvals, unused
				return a, false
			}
			_ = requested
		case types.Exclusive4:
			raw, err := d.FixedOpaque(8)
			if err != nil {
				return a, false
			}
			var v [8]byte
			copy(v[:], raw)
			a.verifier = &v
		default:
			// unrecognised create mode: caller reports NOTSUPP
		}
	}

	claimType, err := d.Uint32()
	if err != nil {
		return a, false
	}
	a.claimIsNull = claimType == types.ClaimNull
	if a.claimIsNull {
		if a.name, err = d.String(); err != nil {
			return a, false
		}
	}
	return a, true
}

// opOpen implements OPEN (RFC 7530 §16.16). Only CLAIM_NULL is
// accepted; UNCHECKED4 and EXCLUSIVE4 create modes are supported,
// GUARDED4 and anything else report NOTSUPP.
func opOpen(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	a, ok := decodeOpenArgs(d)
	if !ok {
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}
	if ctx.Current.Kind != types.NF4DIR {
		return types.NFS4ErrNotdir
	}
	if !a.claimIsNull {
		return types.NFS4ErrNotsupp
	}
	if a.name == "" {
		return types.NFS4ErrInval
	}

	childPath := vfs.Join(ctx.Current.Path, a.name)

	if !a.isCreate {
		child, err := ctx.Files.GetByPath(childPath)
		if err != nil {
			return types.StatusOf(err)
		}
		ctx.Current = child
		types.AnonymousStateid4.Encode(e)
		encodeChangeInfo(e, true, child.Version, child.Version)
		e.Uint32(types.Open4ResultConfirm)
		attrs.EncodeBitmap4(e, nil)
		e.Uint32(types.OpenDelegateNone)
		return types.NFS4OK
	}

	if a.createMode != types.Unchecked4 && a.createMode != types.Exclusive4 {
		return types.NFS4ErrNotsupp
	}

	parent := ctx.Current
	before := parent.Version
	child, stateid, err := ctx.Files.CreateFile(childPath, parent.ID, a.clientID, a.owner, a.shareAccess, a.shareDeny, a.verifier)
	if err != nil {
		return types.StatusOf(err)
	}
	ctx.Current = child

	stateid.Encode(e)
	encodeChangeInfo(e, true, before, before+1)
	e.Uint32(types.Open4ResultConfirm)
	attrs.EncodeBitmap4(e, nil)
	e.Uint32(types.OpenDelegateNone)
	return types.NFS4OK
}

func encodeChangeInfo(e *xdr.Encoder, atomic bool, before, after uint64) {
	e.Bool(atomic)
	e.Uint64(before)
	e.Uint64(after)
}
