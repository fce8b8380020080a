package file

import (
	"hash/fnv"
	"time"

	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/nfs4/writecache"
)

// Filehandle is this server's in-memory record for one filesystem
// object: the volatile id handed to clients, the canonical VFS path it
// resolves to, and the fabricated attribute state the engine layers on
// top of the backing store (§3, §4.4).
type Filehandle struct {
	ID   string // raw id bytes, used as the map key
	Raw  []byte // same bytes, kept for wire encoding
	Path string
	Kind uint32 // types.NF4REG or types.NF4DIR

	Fileid     uint64
	Version    uint64 // monotonic; doubles as the change attribute
	Size       uint64
	TimeAccess time.Time
	TimeModify time.Time

	// CreateVerifier is set when this file was minted by an
	// EXCLUSIVE4 create, letting a retransmitted CREATE recognise
	// itself instead of failing EXIST.
	CreateVerifier *[8]byte

	WriteCache *writecache.Handle
}

// LockType distinguishes an OPEN share-reservation record from a
// byte-range lock; both live in the same table (§3).
type LockType int

const (
	LockTypeOpen LockType = iota
	LockTypeByteRange
)

// ByteRange is the optional locked region of a LockTypeByteRange record.
type ByteRange struct {
	Offset uint64
	Length uint64
}

// LockingRecord represents either an OPEN share reservation or a
// byte-range lock attached to a filehandle, indexed by stateid,
// filehandle id, client id, and owner (§3).
type LockingRecord struct {
	Stateid     types.Stateid4
	Seqid       uint32
	ClientID    uint64
	Owner       []byte
	Type        LockType
	FilehandleID string
	Range       *ByteRange
	ShareAccess uint32
	ShareDeny   uint32
	Confirmed   bool
}

// Entry is one child returned by ListDir: a directory entry name paired
// with its resolved filehandle.
type Entry struct {
	Name       string
	Filehandle *Filehandle
}

func fileID(path string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(path))
	return h.Sum64()
}
