package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/kelpfs/nfs4d/internal/logger"
	"github.com/kelpfs/nfs4d/internal/metrics"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/telemetry"
	"github.com/kelpfs/nfs4d/internal/xdr"
	"go.opentelemetry.io/otel/trace"
)

// DecodeAndDispatch decodes one COMPOUND4args body and returns the
// encoded COMPOUND4res bytes, following RFC 7530 §16.2's ordered
// dispatch and short-circuit-on-error rules (§4.7). An error return
// means the body itself did not parse as a COMPOUND4args and the
// caller should answer the RPC call with GarbageArgs rather than a
// COMPOUND-level status.
func DecodeAndDispatch(parent context.Context, ctx *RequestContext, body []byte) ([]byte, error) {
	spanCtx, span := telemetry.StartSpan(parent, telemetry.SpanCompound, trace.WithAttributes(telemetry.ClientAddr(ctx.Conn.RemoteAddr), telemetry.Principal(ctx.Principal)))
	defer span.End()

	d := xdr.NewDecoder(body)

	if _, err := d.String(); err != nil { // tag, ignored
		return nil, fmt.Errorf("handlers: decode compound tag: %w", err)
	}
	minorVersion, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("handlers: decode minorversion: %w", err)
	}
	numOps, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("handlers: decode argarray length: %w", err)
	}
	if numOps > types.MaxCompoundOps {
		return nil, fmt.Errorf("handlers: compound operation array too large: %d", numOps)
	}

	results := xdr.NewEncoder()
	finalStatus := uint32(types.NFS4OK)
	var executed uint32

	if minorVersion != types.MinorVersion0 {
		finalStatus = types.NFS4ErrMinorVersMismatch
	} else {
		for i := uint32(0); i < numOps; i++ {
			opnum, err := d.Uint32()
			if err != nil {
				return nil, fmt.Errorf("handlers: decode opnum at index %d: %w", i, err)
			}

			status, resultBody := executeOp(spanCtx, ctx, opnum, d)
			encodeOpResult(results, opnum, status, resultBody)
			executed++
			finalStatus = status

			if status != types.NFS4OK {
				break
			}
		}
	}

	out := xdr.NewEncoder()
	out.Uint32(finalStatus)
	out.String("") // tag is always echoed empty (§4.7)
	out.Uint32(executed)
	out.FixedOpaque(results.Bytes())
	return out.Bytes(), nil
}

func executeOp(spanCtx context.Context, ctx *RequestContext, opnum uint32, d *xdr.Decoder) (uint32, []byte) {
	if opnum == types.OpIllegal {
		return types.NFS4ErrOpIllegal, nil
	}
	handler, ok := opTable[opnum]
	if !ok {
		logger.Debug("unsupported nfsv4 operation", logger.Procedure(types.OpName(opnum)), logger.ClientIP(ctx.Conn.RemoteAddr))
		return types.NFS4ErrNotsupp, nil
	}

	opCtx, opSpan := telemetry.StartNFSOpSpan(spanCtx, types.OpName(opnum), nil)
	defer opSpan.End()

	started := time.Now()
	e := xdr.NewEncoder()
	status := handler(ctx, d, e)
	metrics.ObserveOperation(types.OpName(opnum), status, started)
	telemetry.SetAttributes(spanCtx, telemetry.NFSStatus(int(status)))
	if status != types.NFS4OK {
		telemetry.RecordError(spanCtx, fmt.Errorf("%s: nfsstat4 %d", types.OpName(opnum), status))
	}

	lc := logger.NewLogContext(ctx.Conn.RemoteAddr).WithProcedure(types.OpName(opnum))
	lc = lc.WithTrace(telemetry.TraceID(opCtx), telemetry.SpanID(opCtx))
	logger.DebugCtx(logger.WithContext(opCtx, lc), "dispatched nfsv4 operation", logger.Status(int(status)))
	// Handlers only ever write to e once they've committed to a
	// result, so forwarding e's bytes regardless of status is safe for
	// every op except REMOVE, which deliberately writes a successful
	// cinfo body alongside a STALE status.
	return status, e.Bytes()
}

func encodeOpResult(e *xdr.Encoder, opnum, status uint32, body []byte) {
	e.Uint32(opnum)
	e.Uint32(status)
	if len(body) > 0 {
		e.FixedOpaque(body)
	}
}
