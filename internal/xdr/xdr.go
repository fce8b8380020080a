// Package xdr implements the subset of RFC 4506 External Data
// Representation needed to speak NFSv4.0: big-endian fixed-width
// integers, 4-byte-aligned variable-length opaque data and strings, and
// uint32-tagged discriminated unions. It has no dependencies on any
// other package in this module.
package xdr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const maxOpaqueLength = 1 << 20 // 1 MiB, guards against hostile length fields

// Decoder reads successive XDR values from an in-memory byte slice.
// It is not safe for concurrent use.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder wraps b for sequential XDR decoding. b is not copied.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{data: b}
}

// Remaining reports how many bytes have not yet been consumed.
func (d *Decoder) Remaining() int { return len(d.data) - d.pos }

// Pos reports the number of bytes consumed so far.
func (d *Decoder) Pos() int { return d.pos }

// Rest returns the unconsumed tail of the buffer without copying.
func (d *Decoder) Rest() []byte { return d.data[d.pos:] }

func (d *Decoder) need(n int) error {
	if n < 0 || d.pos+n > len(d.data) {
		return fmt.Errorf("xdr: short buffer: need %d bytes, have %d", n, len(d.data)-d.pos)
	}
	return nil
}

// Uint32 decodes a big-endian 32-bit unsigned integer.
func (d *Decoder) Uint32() (uint32, error) {
	if err := d.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.data[d.pos:])
	d.pos += 4
	return v, nil
}

// Uint64 decodes a big-endian 64-bit unsigned integer (XDR "hyper").
func (d *Decoder) Uint64() (uint64, error) {
	if err := d.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return v, nil
}

// Int32 decodes a big-endian signed 32-bit integer.
func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

// Int64 decodes a big-endian signed 64-bit integer.
func (d *Decoder) Int64() (int64, error) {
	v, err := d.Uint64()
	return int64(v), err
}

// Bool decodes an XDR boolean (any nonzero uint32 is true).
func (d *Decoder) Bool() (bool, error) {
	v, err := d.Uint32()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// Opaque decodes variable-length opaque data: length, data, zero padding
// to the next 4-byte boundary.
func (d *Decoder) Opaque() ([]byte, error) {
	length, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("opaque length: %w", err)
	}
	if length > maxOpaqueLength {
		return nil, fmt.Errorf("xdr: opaque length %d exceeds maximum %d", length, maxOpaqueLength)
	}
	if err := d.need(int(length)); err != nil {
		return nil, fmt.Errorf("opaque data: %w", err)
	}
	data := make([]byte, length)
	copy(data, d.data[d.pos:d.pos+int(length)])
	d.pos += int(length)
	return data, d.skipPadding(length)
}

// FixedOpaque decodes exactly n bytes of opaque data with no length
// prefix and no padding, used for fixed-size wire fields such as
// verifiers and stateids.
func (d *Decoder) FixedOpaque(n int) ([]byte, error) {
	if err := d.need(n); err != nil {
		return nil, err
	}
	data := make([]byte, n)
	copy(data, d.data[d.pos:d.pos+n])
	d.pos += n
	return data, nil
}

// String decodes an XDR string using the same wire format as Opaque.
func (d *Decoder) String() (string, error) {
	data, err := d.Opaque()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// padding bytes are skipped without inspection: RFC 4506 requires
// writers zero them but does not require readers to verify.
func (d *Decoder) skipPadding(length uint32) error {
	padding := int((4 - (length % 4)) % 4)
	if padding == 0 {
		return nil
	}
	if err := d.need(padding); err != nil {
		return err
	}
	d.pos += padding
	return nil
}

// Encoder accumulates XDR-encoded values into an internal buffer.
type Encoder struct {
	buf bytes.Buffer
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder { return &Encoder{} }

// Bytes returns the accumulated wire representation.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

// Len reports the number of bytes written so far.
func (e *Encoder) Len() int { return e.buf.Len() }

// Uint32 appends a big-endian 32-bit unsigned integer.
func (e *Encoder) Uint32(v uint32) { _ = binary.Write(&e.buf, binary.BigEndian, v) }

// Uint64 appends a big-endian 64-bit unsigned integer.
func (e *Encoder) Uint64(v uint64) { _ = binary.Write(&e.buf, binary.BigEndian, v) }

// Int32 appends a big-endian signed 32-bit integer.
func (e *Encoder) Int32(v int32) { e.Uint32(uint32(v)) }

// Int64 appends a big-endian signed 64-bit integer.
func (e *Encoder) Int64(v int64) { e.Uint64(uint64(v)) }

// Bool appends an XDR boolean.
func (e *Encoder) Bool(v bool) {
	if v {
		e.Uint32(1)
	} else {
		e.Uint32(0)
	}
}

// Opaque appends variable-length opaque data with its length prefix and
// zero padding to the next 4-byte boundary.
func (e *Encoder) Opaque(data []byte) {
	e.Uint32(uint32(len(data)))
	e.buf.Write(data)
	e.pad(len(data))
}

// FixedOpaque appends exactly len(data) bytes with no length prefix and
// no padding, mirroring Decoder.FixedOpaque.
func (e *Encoder) FixedOpaque(data []byte) { e.buf.Write(data) }

// String appends an XDR string using the Opaque wire format.
func (e *Encoder) String(s string) { e.Opaque([]byte(s)) }

func (e *Encoder) pad(n int) {
	padding := (4 - (n % 4)) % 4
	if padding == 0 {
		return
	}
	var zero [3]byte
	e.buf.Write(zero[:padding])
}

// Reader returns an io.Reader over the bytes written so far, primarily
// for handing a fixed-shape header off to a reflection-based decoder.
func (e *Encoder) Reader() io.Reader { return bytes.NewReader(e.buf.Bytes()) }
