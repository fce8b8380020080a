package handlers

import (
	"path"

	"github.com/kelpfs/nfs4d/internal/nfs4/attrs"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
	"github.com/kelpfs/nfs4d/pkg/vfs"
)

// opCreate implements CREATE (RFC 7530 §16.4). Only NF4DIR objects are
// ever accepted; the directory is created under the current filehandle,
// or under its parent if the current filehandle names a file.
func opCreate(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	objtype, err := d.Uint32()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if objtype != types.NF4DIR {
		return types.NFS4ErrBadtype
	}
	name, err := d.String()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if _, err := attrs.DecodeBitmap4(d); err != nil {
		return types.NFS4ErrBadXDR
	}
	if _, err := d.Opaque(); err != nil { // attrvals, unused
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}
	if name == "" {
		return types.NFS4ErrInval
	}

	parent := ctx.Current
	if parent.Kind != types.NF4DIR {
		grandparent, gpErr := ctx.Files.GetByPath(path.Dir(parent.Path))
		if gpErr != nil {
			return types.StatusOf(gpErr)
		}
		parent = grandparent
	}

	before := parent.Version
	dirPath := vfs.Join(parent.Path, name)
	child, createErr := ctx.Files.CreateDir(dirPath, parent.ID)
	if createErr != nil {
		return types.StatusOf(createErr)
	}
	ctx.Current = child

	encodeChangeInfo(e, true, before, before+1)
	attrs.EncodeBitmap4(e, nil)
	return types.NFS4OK
}
