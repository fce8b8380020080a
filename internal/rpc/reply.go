package rpc

import (
	"fmt"

	"github.com/kelpfs/nfs4d/internal/xdr"
)

// AuthNoneVerifier is the accepted-reply verifier this server always
// returns: flavor AUTH_NONE with an empty body.
var AuthNoneVerifier = Opaque{Flavor: AuthNull}

func encodeReplyHeader(e *xdr.Encoder, xid uint32) {
	e.Uint32(xid)
	e.Uint32(RPCReply)
}

func encodeVerifier(e *xdr.Encoder, v Opaque) {
	e.Uint32(v.Flavor)
	e.Opaque(v.Body)
}

// MakeAcceptedReply frames a successful or application-level-error
// accepted reply: ReplyState=MSG_ACCEPTED, the given verifier and
// accept status, followed by body (the NULL/COMPOUND result, or
// nothing for a non-SUCCESS accept status other than PROG_MISMATCH).
func MakeAcceptedReply(xid uint32, verf Opaque, acceptStat uint32, body []byte) []byte {
	e := xdr.NewEncoder()
	encodeReplyHeader(e, xid)
	e.Uint32(RPCMsgAccepted)
	encodeVerifier(e, verf)
	e.Uint32(acceptStat)
	if len(body) > 0 {
		e.FixedOpaque(body)
	}
	return e.Bytes()
}

// MakeSuccessReply frames an RPCSuccess accepted reply carrying body,
// the already-XDR-encoded procedure result.
func MakeSuccessReply(xid uint32, body []byte) []byte {
	return MakeAcceptedReply(xid, AuthNoneVerifier, RPCSuccess, body)
}

// MakeGarbageArgsReply frames a GarbageArgs accepted reply: the
// transport-error response required whenever a call's body fails to
// decode, per RFC 5531 §7.4 — the connection itself is never closed.
func MakeGarbageArgsReply(xid uint32) []byte {
	return MakeAcceptedReply(xid, AuthNoneVerifier, RPCGarbageArgs, nil)
}

// MakeProcUnavailReply frames a PROC_UNAVAIL accepted reply for an
// unrecognized procedure number on a recognized program/version.
func MakeProcUnavailReply(xid uint32) []byte {
	return MakeAcceptedReply(xid, AuthNoneVerifier, RPCProcUnavail, nil)
}

// MakeProgUnavailReply frames a PROG_UNAVAIL accepted reply for any
// program number other than the NFS program this server implements.
func MakeProgUnavailReply(xid uint32) []byte {
	return MakeAcceptedReply(xid, AuthNoneVerifier, RPCProgUnavail, nil)
}

// MakeProgMismatchReply frames a PROG_MISMATCH accepted reply carrying
// the [low, high] range of program versions this server supports.
func MakeProgMismatchReply(xid, low, high uint32) ([]byte, error) {
	if low > high {
		return nil, fmt.Errorf("rpc: invalid version range: low (%d) > high (%d)", low, high)
	}
	e := xdr.NewEncoder()
	e.Uint32(low)
	e.Uint32(high)
	return MakeAcceptedReply(xid, AuthNoneVerifier, RPCProgMismatch, e.Bytes()), nil
}

// MakeAuthErrorReply frames an MSG_DENIED reply with RPCAuthErr and the
// given auth stat, used when a call's credential flavor is neither
// AUTH_NONE nor AUTH_UNIX.
func MakeAuthErrorReply(xid uint32, authStat uint32) []byte {
	e := xdr.NewEncoder()
	encodeReplyHeader(e, xid)
	e.Uint32(RPCMsgDenied)
	e.Uint32(RPCAuthErr)
	e.Uint32(authStat)
	return e.Bytes()
}
