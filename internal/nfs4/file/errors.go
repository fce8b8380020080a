package file

import "fmt"

// Error is the typed failure surface of the File Manager: every public
// method either succeeds or returns one of these, carrying the
// nfsstat4 the caller should map back onto the wire.
type Error struct {
	Op   string
	Code uint32
}

func (e *Error) Error() string {
	return fmt.Sprintf("file: %s: nfsstat4 %d", e.Op, e.Code)
}

// NFSStatus implements types.StatusCoder.
func (e *Error) NFSStatus() uint32 { return e.Code }
