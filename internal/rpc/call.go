package rpc

import (
	"bytes"
	"fmt"

	govxdr "github.com/rasky/go-xdr/xdr2"

	"github.com/kelpfs/nfs4d/internal/xdr"
)

// callHeader is the fixed-shape prefix of every RPC call message (RFC
// 5531 §8): no embedded variable-length opaque, so it is decoded with
// go-xdr's reflection-based Unmarshal rather than the hand-rolled
// decoder used for the rest of the message.
type callHeader struct {
	Xid        uint32
	MsgType    uint32
	RPCVersion uint32
	Program    uint32
	Version    uint32
	Procedure  uint32
}

// Call is a fully decoded RPC call: the fixed header, the credential
// and verifier opaques, and the raw procedure-specific body left for
// the NFSv4.0 dispatcher to decode.
type Call struct {
	Xid        uint32
	Program    uint32
	Version    uint32
	Procedure  uint32
	Credential Opaque
	Verifier   Opaque
	Body       []byte
}

// DecodeCall parses one complete RPC record into a Call.
func DecodeCall(record []byte) (*Call, error) {
	var hdr callHeader
	n, err := govxdr.Unmarshal(bytes.NewReader(record), &hdr)
	if err != nil {
		return nil, fmt.Errorf("rpc: decode call header: %w", err)
	}
	if hdr.MsgType != RPCCall {
		return nil, fmt.Errorf("rpc: message type %d is not CALL", hdr.MsgType)
	}
	if hdr.RPCVersion != 2 {
		return nil, fmt.Errorf("rpc: unsupported RPC version %d", hdr.RPCVersion)
	}

	d := xdr.NewDecoder(record[n:])
	cred, err := decodeOpaqueAuth(d)
	if err != nil {
		return nil, fmt.Errorf("rpc: decode credential: %w", err)
	}
	verf, err := decodeOpaqueAuth(d)
	if err != nil {
		return nil, fmt.Errorf("rpc: decode verifier: %w", err)
	}

	return &Call{
		Xid:        hdr.Xid,
		Program:    hdr.Program,
		Version:    hdr.Version,
		Procedure:  hdr.Procedure,
		Credential: cred,
		Verifier:   verf,
		Body:       append([]byte(nil), d.Rest()...),
	}, nil
}
