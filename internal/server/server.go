// Package server implements the TCP listener and per-connection RPC
// loop that front the NFSv4.0 protocol engine: record-mark framing,
// RPC call decoding, and credential/program/version acceptance, with
// COMPOUND bodies handed off to the handlers package.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/kelpfs/nfs4d/internal/logger"
	"github.com/kelpfs/nfs4d/internal/metrics"
	"github.com/kelpfs/nfs4d/internal/nfs4/client"
	"github.com/kelpfs/nfs4d/internal/nfs4/file"
	"github.com/kelpfs/nfs4d/internal/nfs4/handlers"
	"github.com/kelpfs/nfs4d/internal/rpc"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

// Server listens for NFSv4.0 TCP connections and dispatches every
// COMPOUND call against a shared Client Manager and File Manager.
type Server struct {
	Addr     string
	BootTime uint64

	Clients *client.Manager
	Files   *file.Manager

	listener net.Listener
	wg       sync.WaitGroup
}

// New returns a Server bound to addr, backed by the given coordinators.
func New(addr string, bootTime uint64, clients *client.Manager, files *file.Manager) *Server {
	return &Server{
		Addr:     addr,
		BootTime: bootTime,
		Clients:  clients,
		Files:    files,
	}
}

// ListenAndServe binds Addr and serves connections until ctx is
// cancelled, at which point the listener is closed and every active
// connection's read loop is given a chance to drain before returning.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.listener = ln
	logger.Info("nfs4d listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	go s.sampleClientCount(ctx)

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				s.wg.Wait()
				return nil
			default:
				return err
			}
		}
		metrics.ConnectionsAccepted.Inc()
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(ctx, conn)
		}()
	}
}

// sampleClientCount periodically mirrors the Client Manager's tracked
// record count into the active-clients gauge until ctx is cancelled.
func (s *Server) sampleClientCount(ctx context.Context) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.ActiveClients.Set(float64(s.Clients.Count()))
		}
	}
}

func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	remote := conn.RemoteAddr().String()
	defer func() {
		_ = conn.Close()
		metrics.ActiveConnections.Dec()
		logger.Debug("connection closed", logger.ClientIP(remote))
	}()
	metrics.ActiveConnections.Inc()
	logger.Debug("connection accepted", logger.ClientIP(remote))

	connCtx := handlers.NewConnContext(remote, s.BootTime)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		record, err := xdr.ReadRecord(conn)
		if err != nil {
			if errors.Is(err, xdr.ErrRecordTooLarge) {
				logger.Debug("oversize record skipped", logger.ClientIP(remote))
				continue
			}
			if !errors.Is(err, io.EOF) {
				logger.Debug("read record failed", logger.ClientIP(remote), logger.Err(err))
			}
			return
		}

		reply, ok := s.handleRecord(ctx, connCtx, record)
		if !ok {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(30 * time.Second))
		if err := xdr.WriteRecord(conn, reply); err != nil {
			logger.Debug("write record failed", logger.ClientIP(remote), logger.Err(err))
			return
		}
	}
}

// handleRecord decodes and answers one RPC call. The second return
// value is false only when the record was too malformed to answer at
// all (an unparseable call header), in which case no reply is sent and
// the connection goes on to the next record.
func (s *Server) handleRecord(ctx context.Context, connCtx *handlers.ConnContext, record []byte) ([]byte, bool) {
	call, err := rpc.DecodeCall(record)
	if err != nil {
		logger.Debug("decode call failed", "error", err)
		return nil, false
	}
	return s.handleCall(ctx, connCtx, call)
}

// handleCall answers one already-decoded RPC call, applying RFC 5531's
// credential/program/version acceptance checks before handing
// COMPOUND bodies off to the handlers package.
func (s *Server) handleCall(ctx context.Context, connCtx *handlers.ConnContext, call *rpc.Call) ([]byte, bool) {
	if call.Credential.Flavor != rpc.AuthNull && call.Credential.Flavor != rpc.AuthUnix {
		return rpc.MakeAuthErrorReply(call.Xid, rpc.RPCAuthErr), true
	}

	if call.Program != rpc.ProgramNFS {
		return rpc.MakeProgUnavailReply(call.Xid), true
	}
	if call.Version != rpc.VersionNFS4 {
		reply, mismatchErr := rpc.MakeProgMismatchReply(call.Xid, rpc.VersionNFS4, rpc.VersionNFS4)
		if mismatchErr != nil {
			return rpc.MakeGarbageArgsReply(call.Xid), true
		}
		return reply, true
	}

	switch call.Procedure {
	case rpc.ProcedureNull:
		return rpc.MakeSuccessReply(call.Xid, nil), true
	case rpc.ProcedureCompound:
		return s.handleCompound(ctx, connCtx, call), true
	default:
		return rpc.MakeProcUnavailReply(call.Xid), true
	}
}

func (s *Server) handleCompound(ctx context.Context, connCtx *handlers.ConnContext, call *rpc.Call) []byte {
	reqCtx := &handlers.RequestContext{
		Conn:      connCtx,
		Clients:   s.Clients,
		Files:     s.Files,
		Principal: principalOf(call),
	}

	body, err := handlers.DecodeAndDispatch(ctx, reqCtx, call.Body)
	if err != nil {
		logger.Debug("compound decode failed", "error", err, "client", connCtx.RemoteAddr)
		return rpc.MakeGarbageArgsReply(call.Xid)
	}
	return rpc.MakeSuccessReply(call.Xid, body)
}

func principalOf(call *rpc.Call) string {
	if call.Credential.Flavor != rpc.AuthUnix {
		return "anonymous"
	}
	auth, err := rpc.ParseUnixAuth(call.Credential.Body)
	if err != nil {
		return "anonymous"
	}
	return auth.MachineName + ":" + strconv.FormatUint(uint64(auth.UID), 10)
}
