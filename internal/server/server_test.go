package server

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelpfs/nfs4d/internal/nfs4/client"
	"github.com/kelpfs/nfs4d/internal/nfs4/file"
	"github.com/kelpfs/nfs4d/internal/nfs4/handlers"
	"github.com/kelpfs/nfs4d/internal/rpc"
	"github.com/kelpfs/nfs4d/pkg/vfs/memoryfs"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	fsys, err := memoryfs.LoadYAML([]byte(`hello.txt: "hi"`))
	require.NoError(t, err)
	return New("127.0.0.1:0", 1, client.New(60), file.New(fsys, 1, 152, 152))
}

func acceptStatOf(t *testing.T, reply []byte) uint32 {
	t.Helper()
	require.True(t, len(reply) >= 24)
	return binary.BigEndian.Uint32(reply[20:24])
}

func TestHandleRecord_RejectsUnknownAuthFlavor(t *testing.T) {
	s := newTestServer(t)
	connCtx := handlers.NewConnContext("127.0.0.1:1", 1)
	call := &rpc.Call{
		Xid:        1,
		Program:    rpc.ProgramNFS,
		Version:    rpc.VersionNFS4,
		Procedure:  rpc.ProcedureNull,
		Credential: rpc.Opaque{Flavor: rpc.AuthDES},
	}

	reply, ok := s.handleRecord(context.Background(), connCtx, nil)
	_ = reply
	assert.False(t, ok, "nil record should fail to decode a call header at all")

	reply2, ok2 := s.handleCall(context.Background(), connCtx, call)
	require.True(t, ok2)
	assert.Equal(t, rpc.RPCMsgDenied, binary.BigEndian.Uint32(reply2[8:12]))
}

func TestHandleRecord_RejectsUnknownProgram(t *testing.T) {
	s := newTestServer(t)
	connCtx := handlers.NewConnContext("127.0.0.1:1", 1)
	call := &rpc.Call{
		Xid:        2,
		Program:    999999,
		Version:    rpc.VersionNFS4,
		Procedure:  rpc.ProcedureNull,
		Credential: rpc.Opaque{Flavor: rpc.AuthNull},
	}

	reply, ok := s.handleCall(context.Background(), connCtx, call)
	require.True(t, ok)
	assert.Equal(t, rpc.RPCProgUnavail, acceptStatOf(t, reply))
}

func TestHandleRecord_RejectsUnknownVersion(t *testing.T) {
	s := newTestServer(t)
	connCtx := handlers.NewConnContext("127.0.0.1:1", 1)
	call := &rpc.Call{
		Xid:        3,
		Program:    rpc.ProgramNFS,
		Version:    99,
		Procedure:  rpc.ProcedureNull,
		Credential: rpc.Opaque{Flavor: rpc.AuthNull},
	}

	reply, ok := s.handleCall(context.Background(), connCtx, call)
	require.True(t, ok)
	assert.Equal(t, rpc.RPCProgMismatch, acceptStatOf(t, reply))
}

func TestHandleRecord_NullProcedureSucceeds(t *testing.T) {
	s := newTestServer(t)
	connCtx := handlers.NewConnContext("127.0.0.1:1", 1)
	call := &rpc.Call{
		Xid:        4,
		Program:    rpc.ProgramNFS,
		Version:    rpc.VersionNFS4,
		Procedure:  rpc.ProcedureNull,
		Credential: rpc.Opaque{Flavor: rpc.AuthNull},
	}

	reply, ok := s.handleCall(context.Background(), connCtx, call)
	require.True(t, ok)
	assert.Equal(t, rpc.RPCSuccess, acceptStatOf(t, reply))
}

func TestPrincipalOf_AnonymousWithoutAuthUnix(t *testing.T) {
	call := &rpc.Call{Credential: rpc.Opaque{Flavor: rpc.AuthNull}}
	assert.Equal(t, "anonymous", principalOf(call))
}
