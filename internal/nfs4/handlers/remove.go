package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
	"github.com/kelpfs/nfs4d/pkg/vfs"
)

// opRemove implements REMOVE (RFC 7530 §16.24). The success branch
// deliberately reports NFS4ErrStale rather than NFS4OK while still
// encoding a successful change_info4 body — callers must not treat
// STALE from this op as the current filehandle having gone bad.
func opRemove(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	name, err := d.String()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}
	if name == "" {
		return types.NFS4ErrInval
	}

	before := ctx.Current.Version
	childPath := vfs.Join(ctx.Current.Path, name)
	if removeErr := ctx.Files.RemoveFile(childPath, ctx.Current.ID); removeErr != nil {
		return types.StatusOf(removeErr)
	}

	encodeChangeInfo(e, true, before, before+1)
	return types.NFS4ErrStale
}
