package client

import (
	"fmt"

	"github.com/kelpfs/nfs4d/internal/nfs4/types"
)

// Error is the typed failure surface of the Client Manager: every
// public method either succeeds or returns one of these, carrying the
// nfsstat4 the caller should map back onto the wire.
type Error struct {
	Op   string
	Code uint32
}

func (e *Error) Error() string {
	return fmt.Sprintf("client: %s: nfsstat4 %d", e.Op, e.Code)
}

// NFSStatus implements types.StatusCoder.
func (e *Error) NFSStatus() uint32 { return e.Code }

func errStaleClientID(op string) error {
	return &Error{Op: op, Code: types.NFS4ErrStaleClientid}
}

func errClidInUse(op string) error {
	return &Error{Op: op, Code: types.NFS4ErrClidInuse}
}
