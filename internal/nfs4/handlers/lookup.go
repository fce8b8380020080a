package handlers

import (
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
	"github.com/kelpfs/nfs4d/pkg/vfs"
)

// opLookup implements LOOKUP (RFC 7530 §16.12): resolves a child name
// under the current filehandle and replaces it. A miss — whichever
// reason the File Manager gives — clears the current filehandle and is
// reported STALE, not NOENT.
func opLookup(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	name, err := d.String()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrFhexpired
	}

	child, lookupErr := ctx.Files.GetByPath(vfs.Join(ctx.Current.Path, name))
	if lookupErr != nil {
		ctx.Current = nil
		return types.NFS4ErrStale
	}
	ctx.Current = child
	return types.NFS4OK
}
