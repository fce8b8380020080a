package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for NFSv4.0 operation spans, following OpenTelemetry
// semantic convention style where applicable.
const (
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"

	AttrRPCXID     = "rpc.xid"
	AttrRPCProgram = "rpc.program"
	AttrRPCVersion = "rpc.version"

	AttrNFSOp     = "nfs.op"
	AttrNFSHandle = "nfs.handle"
	AttrNFSOffset = "nfs.offset"
	AttrNFSCount  = "nfs.count"
	AttrNFSSize   = "nfs.size"
	AttrNFSStatus = "nfs.status"
	AttrNFSEOF    = "nfs.eof"
	AttrUID       = "user.uid"
	AttrGID       = "user.gid"
	AttrPrincipal = "user.principal"
	AttrClientID  = "nfs.client_id"
)

// Span names for COMPOUND operation processing.
const (
	SpanCompound = "nfs.COMPOUND"
	SpanOp       = "nfs.op"
)

// ClientIP returns an attribute for client IP address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// ClientAddr returns an attribute for the full client address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// RPCXID returns an attribute for the RPC transaction ID.
func RPCXID(xid uint32) attribute.KeyValue {
	return attribute.Int64(AttrRPCXID, int64(xid))
}

// NFSOp returns an attribute for the RFC 7530 operation mnemonic.
func NFSOp(name string) attribute.KeyValue {
	return attribute.String(AttrNFSOp, name)
}

// NFSHandle returns an attribute for a filehandle, rendered as hex.
func NFSHandle(handle []byte) attribute.KeyValue {
	return attribute.String(AttrNFSHandle, fmt.Sprintf("%x", handle))
}

// NFSOffset returns an attribute for an I/O offset.
func NFSOffset(offset uint64) attribute.KeyValue {
	return attribute.Int64(AttrNFSOffset, int64(offset))
}

// NFSCount returns an attribute for a byte count.
func NFSCount(count uint32) attribute.KeyValue {
	return attribute.Int64(AttrNFSCount, int64(count))
}

// NFSSize returns an attribute for a file size.
func NFSSize(size uint64) attribute.KeyValue {
	return attribute.Int64(AttrNFSSize, int64(size))
}

// NFSStatus returns an attribute for the resulting nfsstat4.
func NFSStatus(status int) attribute.KeyValue {
	return attribute.Int(AttrNFSStatus, status)
}

// NFSEOF returns an attribute for an end-of-file indicator.
func NFSEOF(eof bool) attribute.KeyValue {
	return attribute.Bool(AttrNFSEOF, eof)
}

// UID returns an attribute for a credential's user ID.
func UID(uid uint32) attribute.KeyValue {
	return attribute.Int64(AttrUID, int64(uid))
}

// GID returns an attribute for a credential's group ID.
func GID(gid uint32) attribute.KeyValue {
	return attribute.Int64(AttrGID, int64(gid))
}

// Principal returns an attribute for the calling credential's principal.
func Principal(p string) attribute.KeyValue {
	return attribute.String(AttrPrincipal, p)
}

// ClientID returns an attribute for an NFSv4.0 client ID.
func ClientID(id uint64) attribute.KeyValue {
	return attribute.Int64(AttrClientID, int64(id))
}

// StartNFSOpSpan starts a span for one dispatched COMPOUND operation.
func StartNFSOpSpan(ctx context.Context, op string, handle []byte, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{NFSOp(op)}
	if len(handle) > 0 {
		allAttrs = append(allAttrs, NFSHandle(handle))
	}
	allAttrs = append(allAttrs, attrs...)
	return StartSpan(ctx, "nfs."+op, trace.WithAttributes(allAttrs...))
}
