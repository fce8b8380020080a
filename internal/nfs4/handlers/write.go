package handlers

import (
	"context"
	"encoding/binary"

	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// opWrite implements WRITE (RFC 7530 §16.38). UNSTABLE writes are
// routed through a lazily-created Write Cache entry; DATA_SYNC and
// FILE_SYNC both take the synchronous path, File Manager's WriteSync,
// which splices the data into the file and writes it back at once (§4.5).
func opWrite(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	if _, err := types.DecodeStateid4(d); err != nil {
		return types.NFS4ErrBadXDR
	}
	offset, err := d.Uint64()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	stable, err := d.Uint32()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	data, err := d.Opaque()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}

	var committed uint32
	if stable == types.Unstable4 {
		handle, cacheErr := ctx.Files.GetWriteCacheHandle(ctx.Current)
		if cacheErr != nil {
			return types.StatusOf(cacheErr)
		}
		if writeErr := handle.Write(context.Background(), int64(offset), data); writeErr != nil {
			return types.NFS4ErrIO
		}
		committed = types.Unstable4
	} else {
		if writeErr := ctx.Files.WriteSync(ctx.Current, offset, data); writeErr != nil {
			return types.StatusOf(writeErr)
		}
		if touchErr := ctx.Files.TouchFile(ctx.Current.ID); touchErr != nil {
			return types.StatusOf(touchErr)
		}
		committed = types.FileSync4
	}

	e.Uint32(uint32(len(data)))
	e.Uint32(committed)
	e.FixedOpaque(writeVerifier(ctx.Conn.BootTime))
	return types.NFS4OK
}

func writeVerifier(bootTime uint64) []byte {
	var v [8]byte
	binary.BigEndian.PutUint64(v[:], bootTime)
	return v[:]
}
