package xdr

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFragmentTotal is the accumulated-size cap for one RPC record (RFC
// 1057 record marking), matching the bound specified for this server.
const MaxFragmentTotal = 8 * 1024 * 1024

// ErrRecordTooLarge is returned by ReadRecord when the accumulated
// fragment size of one RPC record exceeds MaxFragmentTotal.
var ErrRecordTooLarge = errors.New("xdr: record exceeds maximum fragment size")

// ReadRecord reads one complete RPC record off r, reassembling the
// fragment chain described by RFC 1057 §10: each fragment is prefixed
// by a 4-byte big-endian header whose top bit marks the last fragment
// of the record and whose low 31 bits give that fragment's length.
func ReadRecord(r io.Reader) ([]byte, error) {
	var record []byte
	for {
		var header [4]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			return nil, err
		}
		raw := binary.BigEndian.Uint32(header[:])
		last := raw&0x80000000 != 0
		length := raw & 0x7fffffff

		if uint64(len(record))+uint64(length) > MaxFragmentTotal {
			// Drain and discard the oversize fragment so the stream stays
			// framed; the caller skips the record and keeps the
			// connection open. No reply is sent, since the record (and
			// its xid) is discarded here.
			if _, err := io.CopyN(io.Discard, r, int64(length)); err != nil {
				return nil, err
			}
			return nil, ErrRecordTooLarge
		}

		fragment := make([]byte, length)
		if _, err := io.ReadFull(r, fragment); err != nil {
			return nil, err
		}
		record = append(record, fragment...)

		if last {
			return record, nil
		}
	}
}

// WriteRecord frames payload as a single last-fragment RPC record and
// writes it to w in one call.
func WriteRecord(w io.Writer, payload []byte) error {
	if len(payload) > MaxFragmentTotal {
		return fmt.Errorf("xdr: reply of %d bytes exceeds maximum fragment size", len(payload))
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload))|0x80000000)
	framed := make([]byte, 0, 4+len(payload))
	framed = append(framed, header[:]...)
	framed = append(framed, payload...)
	_, err := w.Write(framed)
	return err
}
