package types

import (
	"fmt"

	"github.com/kelpfs/nfs4d/internal/xdr"
)

// Stateid4 is the 16-byte (4-byte seqid + 12-byte "other") token that
// identifies an open/share-reservation or byte-range lock (RFC 7530
// §2.6.1.2.1).
type Stateid4 struct {
	Seqid uint32
	Other [12]byte
}

// AnonymousStateid4 is the special all-zero stateid RFC 7530 §8.1.7.1
// reserves for operations performed outside any open/lock context.
var AnonymousStateid4 = Stateid4{}

// BypassStateid4 is the special all-0xFF stateid that asks the server
// to bypass locking checks for READ.
var BypassStateid4 = Stateid4{
	Seqid: 0xFFFFFFFF,
	Other: [12]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF},
}

// DecodeStateid4 reads a stateid4 from d: a 4-byte seqid followed by a
// 12-byte opaque "other" field, with no length prefix on either part.
func DecodeStateid4(d *xdr.Decoder) (Stateid4, error) {
	seqid, err := d.Uint32()
	if err != nil {
		return Stateid4{}, fmt.Errorf("stateid seqid: %w", err)
	}
	other, err := d.FixedOpaque(12)
	if err != nil {
		return Stateid4{}, fmt.Errorf("stateid other: %w", err)
	}
	var s Stateid4
	s.Seqid = seqid
	copy(s.Other[:], other)
	return s, nil
}

// Encode writes the stateid4 wire representation: seqid then other.
func (s Stateid4) Encode(e *xdr.Encoder) {
	e.Uint32(s.Seqid)
	e.FixedOpaque(s.Other[:])
}

// NewOpenStateid builds the share-reservation stateid the File Manager
// mints for a newly created open: a zero seqid field and an "other"
// derived from a monotonic sequence counter, per §4.4.
func NewOpenStateid(seq uint64) Stateid4 {
	var s Stateid4
	s.Other[4] = byte(seq >> 56)
	s.Other[5] = byte(seq >> 48)
	s.Other[6] = byte(seq >> 40)
	s.Other[7] = byte(seq >> 32)
	s.Other[8] = byte(seq >> 24)
	s.Other[9] = byte(seq >> 16)
	s.Other[10] = byte(seq >> 8)
	s.Other[11] = byte(seq)
	return s
}
