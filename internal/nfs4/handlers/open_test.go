package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kelpfs/nfs4d/internal/nfs4/attrs"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

func encodeOpenExclusiveCreate(name string, verifier [8]byte) []byte {
	e := xdr.NewEncoder()
	e.Uint32(1) // seqid
	e.Uint32(types.OpenShareAccessWrite)
	e.Uint32(types.OpenShareDenyNone)
	e.Uint64(1) // clientID
	e.Opaque([]byte("owner"))
	e.Uint32(types.OpenCreate)
	e.Uint32(types.Exclusive4)
	e.FixedOpaque(verifier[:])
	e.Uint32(types.ClaimNull)
	e.String(name)
	return e.Bytes()
}

func encodeOpenUncheckedCreate(name string) []byte {
	e := xdr.NewEncoder()
	e.Uint32(1)
	e.Uint32(types.OpenShareAccessWrite)
	e.Uint32(types.OpenShareDenyNone)
	e.Uint64(1)
	e.Opaque([]byte("owner"))
	e.Uint32(types.OpenCreate)
	e.Uint32(types.Unchecked4)
	attrs.EncodeBitmap4(e, nil)
	e.Opaque(nil) // attrvals, unused
	e.Uint32(types.ClaimNull)
	e.String(name)
	return e.Bytes()
}

// TestOpOpen_ExclusiveCreateRetransmissionReusesOpen guards the
// CreateVerifier retry path: a client that retransmits the same
// EXCLUSIVE4 CREATE (same verifier) against a file it already created
// must get the same open back, not NFS4ERR_EXIST.
func TestOpOpen_ExclusiveCreateRetransmissionReusesOpen(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Current = ctx.Files.GetRoot()

	verifier := [8]byte{1, 2, 3, 4, 5, 6, 7, 8}
	first := encodeOpenExclusiveCreate("new.txt", verifier)
	status := opOpen(ctx, xdr.NewDecoder(first), xdr.NewEncoder())
	require.Equal(t, uint32(types.NFS4OK), status)

	ctx.Current = ctx.Files.GetRoot()
	second := encodeOpenExclusiveCreate("new.txt", verifier)
	status = opOpen(ctx, xdr.NewDecoder(second), xdr.NewEncoder())
	require.Equal(t, uint32(types.NFS4OK), status, "retransmission with the same verifier must succeed")
}

func TestOpOpen_ExclusiveCreateCollisionWithDifferentVerifier(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Current = ctx.Files.GetRoot()

	first := encodeOpenExclusiveCreate("new.txt", [8]byte{1, 2, 3, 4, 5, 6, 7, 8})
	status := opOpen(ctx, xdr.NewDecoder(first), xdr.NewEncoder())
	require.Equal(t, uint32(types.NFS4OK), status)

	ctx.Current = ctx.Files.GetRoot()
	second := encodeOpenExclusiveCreate("new.txt", [8]byte{9, 9, 9, 9, 9, 9, 9, 9})
	status = opOpen(ctx, xdr.NewDecoder(second), xdr.NewEncoder())
	require.Equal(t, uint32(types.NFS4ErrExist), status)
}

func TestOpOpen_UncheckedCreateOfExistingFileSucceeds(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Current = ctx.Files.GetRoot()

	args := encodeOpenUncheckedCreate("hello.txt")
	status := opOpen(ctx, xdr.NewDecoder(args), xdr.NewEncoder())
	require.Equal(t, uint32(types.NFS4OK), status)
}

func TestOpOpen_NonCreateLookupMissingFileFails(t *testing.T) {
	ctx := newTestContext(t)
	ctx.Current = ctx.Files.GetRoot()

	e := xdr.NewEncoder()
	e.Uint32(1)
	e.Uint32(types.OpenShareAccessRead)
	e.Uint32(types.OpenShareDenyNone)
	e.Uint64(1)
	e.Opaque([]byte("owner"))
	e.Uint32(types.OpenNocreate)
	e.Uint32(types.ClaimNull)
	e.String("missing.txt")

	status := opOpen(ctx, xdr.NewDecoder(e.Bytes()), xdr.NewEncoder())
	require.NotEqual(t, uint32(types.NFS4OK), status)
}
