package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelpfs/nfs4d/internal/nfs4/client"
	"github.com/kelpfs/nfs4d/internal/nfs4/file"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
	"github.com/kelpfs/nfs4d/pkg/vfs/memoryfs"
)

func newTestContext(t *testing.T) *RequestContext {
	t.Helper()
	fsys, err := memoryfs.LoadYAML([]byte(`hello.txt: "hi"`))
	require.NoError(t, err)
	return &RequestContext{
		Conn:      NewConnContext("127.0.0.1:1", 1),
		Clients:   client.New(60),
		Files:     file.New(fsys, 1, 152, 152),
		Principal: "anonymous",
	}
}

func encodeCompound(opnums ...uint32) []byte {
	e := xdr.NewEncoder()
	e.String("")
	e.Uint32(types.MinorVersion0)
	e.Uint32(uint32(len(opnums)))
	for _, op := range opnums {
		e.Uint32(op)
	}
	return e.Bytes()
}

func TestDecodeAndDispatch_PutrootfhGetfh(t *testing.T) {
	ctx := newTestContext(t)
	body := encodeCompound(types.OpPutrootfh, types.OpGetfh)

	out, err := DecodeAndDispatch(context.Background(), ctx, body)
	require.NoError(t, err)

	d := xdr.NewDecoder(out)
	status, err := d.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(types.NFS4OK), status)

	_, err = d.String() // echoed tag
	require.NoError(t, err)
	numResults, err := d.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(2), numResults)
}

func TestDecodeAndDispatch_ShortCircuitsOnError(t *testing.T) {
	ctx := newTestContext(t)
	// GETFH before any PUTFH/PUTROOTFH: no current filehandle.
	body := encodeCompound(types.OpGetfh, types.OpPutrootfh)

	out, err := DecodeAndDispatch(context.Background(), ctx, body)
	require.NoError(t, err)

	d := xdr.NewDecoder(out)
	status, err := d.Uint32()
	require.NoError(t, err)
	assert.NotEqual(t, uint32(types.NFS4OK), status)

	_, _ = d.String()
	numResults, err := d.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), numResults, "second op must not run after the first fails")
}

func TestDecodeAndDispatch_UnknownOpnumIsNotsupp(t *testing.T) {
	ctx := newTestContext(t)
	body := encodeCompound(9999)

	out, err := DecodeAndDispatch(context.Background(), ctx, body)
	require.NoError(t, err)

	d := xdr.NewDecoder(out)
	status, err := d.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(types.NFS4ErrNotsupp), status)
}

func TestDecodeAndDispatch_MinorVersionMismatch(t *testing.T) {
	ctx := newTestContext(t)
	e := xdr.NewEncoder()
	e.String("")
	e.Uint32(1) // unsupported minor version
	e.Uint32(0)
	body := e.Bytes()

	out, err := DecodeAndDispatch(context.Background(), ctx, body)
	require.NoError(t, err)

	d := xdr.NewDecoder(out)
	status, err := d.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(types.NFS4ErrMinorVersMismatch), status)
}
