package types

// StatusCoder is implemented by the typed errors the Client Manager and
// File Manager raise (*client.Error, *file.Error); it lets operation
// handlers map any coordinator failure to an nfsstat4 without a
// dependency cycle between types and those packages.
type StatusCoder interface {
	error
	NFSStatus() uint32
}

// StatusOf maps err to an nfsstat4: NFS4ErrServerfault for anything
// that does not implement StatusCoder, the coded status otherwise. A
// nil err maps to NFS4OK.
func StatusOf(err error) uint32 {
	if err == nil {
		return NFS4OK
	}
	if sc, ok := err.(StatusCoder); ok {
		return sc.NFSStatus()
	}
	return NFS4ErrServerfault
}
