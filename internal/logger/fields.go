package logger

import (
	"fmt"
	"log/slog"
)

// Standard field keys for structured logging. Use these keys
// consistently across log statements so aggregation and querying
// don't have to deal with ad hoc spellings of the same concept.
const (
	// Distributed tracing
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// Protocol & operation
	KeyProcedure = "procedure"  // NFSv4.0 operation name: READ, WRITE, LOOKUP, etc.
	KeyHandle    = "handle"     // Filehandle (opaque, formatted as hex)
	KeyShare     = "share"      // Export root path
	KeyStatus    = "status"     // nfsstat4 code
	KeyStatusMsg = "status_msg" // Human-readable status message

	// File system operations
	KeyPath       = "path"        // Full file/directory path
	KeyFilename   = "filename"    // File or directory name (basename)
	KeyParentPath = "parent_path" // Parent directory path
	KeyOldPath    = "old_path"    // Source path for RENAME
	KeyNewPath    = "new_path"    // Destination path for RENAME
	KeyType       = "type"        // File type: file, directory, symlink, etc.
	KeySize       = "size"        // File size in bytes

	// I/O operations
	KeyOffset = "offset" // File offset for READ/WRITE
	KeyCount  = "count"  // Byte count requested
	KeyEOF    = "eof"    // End of file indicator
	KeyStable = "stable" // WRITE durability level (UNSTABLE4/DATA_SYNC4/FILE_SYNC4)

	// Client identification
	KeyClientIP = "client_ip" // Client IP address
	KeyUID      = "uid"       // Effective user ID
	KeyGID      = "gid"       // Effective group ID
	KeyAuth     = "auth"      // RPC auth flavor

	// Session & connection
	KeyClientID     = "client_id"     // NFSv4.0 client ID (clientid4)
	KeyConnectionID = "connection_id" // TCP connection identifier
	KeyRequestID    = "xid"           // RPC transaction ID

	// Operation metadata
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // Numeric error code

	// Directory operations
	KeyEntries   = "entries"    // Number of directory entries returned
	KeyCookie    = "cookie"     // READDIR continuation cookie
	KeyCookieEnd = "cookie_end" // Highest cookie returned
)

// TraceID returns a slog.Attr for OpenTelemetry trace ID.
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID.
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// Procedure returns a slog.Attr for the NFSv4.0 operation name.
func Procedure(name string) slog.Attr {
	return slog.String(KeyProcedure, name)
}

// Handle returns a slog.Attr for a filehandle, formatted as hex.
func Handle(h []byte) slog.Attr {
	return slog.String(KeyHandle, fmt.Sprintf("%x", h))
}

// Share returns a slog.Attr for the export root path.
func Share(name string) slog.Attr {
	return slog.String(KeyShare, name)
}

// Status returns a slog.Attr for an nfsstat4 code.
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// StatusMsg returns a slog.Attr for a human-readable status message.
func StatusMsg(msg string) slog.Attr {
	return slog.String(KeyStatusMsg, msg)
}

// Path returns a slog.Attr for a file/directory path.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Filename returns a slog.Attr for a file or directory basename.
func Filename(name string) slog.Attr {
	return slog.String(KeyFilename, name)
}

// OldPath returns a slog.Attr for the source path of a RENAME.
func OldPath(p string) slog.Attr {
	return slog.String(KeyOldPath, p)
}

// NewPath returns a slog.Attr for the destination path of a RENAME.
func NewPath(p string) slog.Attr {
	return slog.String(KeyNewPath, p)
}

// Size returns a slog.Attr for a file size in bytes.
func Size(s uint64) slog.Attr {
	return slog.Uint64(KeySize, s)
}

// Offset returns a slog.Attr for a READ/WRITE file offset.
func Offset(off uint64) slog.Attr {
	return slog.Uint64(KeyOffset, off)
}

// Count returns a slog.Attr for a byte count.
func Count(c uint32) slog.Attr {
	return slog.Any(KeyCount, c)
}

// EOF returns a slog.Attr for the end-of-file indicator.
func EOF(eof bool) slog.Attr {
	return slog.Bool(KeyEOF, eof)
}

// Stable returns a slog.Attr for a WRITE's stable_how4 value.
func Stable(s int) slog.Attr {
	return slog.Int(KeyStable, s)
}

// ClientIP returns a slog.Attr for a client IP address.
func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

// UID returns a slog.Attr for an effective user ID.
func UID(uid uint32) slog.Attr {
	return slog.Any(KeyUID, uid)
}

// GID returns a slog.Attr for an effective group ID.
func GID(gid uint32) slog.Attr {
	return slog.Any(KeyGID, gid)
}

// Auth returns a slog.Attr for an RPC auth flavor.
func Auth(flavor uint32) slog.Attr {
	return slog.Any(KeyAuth, flavor)
}

// ClientID returns a slog.Attr for an NFSv4.0 client ID.
func ClientID(id uint64) slog.Attr {
	return slog.Uint64(KeyClientID, id)
}

// ConnectionID returns a slog.Attr for a TCP connection identifier.
func ConnectionID(id string) slog.Attr {
	return slog.String(KeyConnectionID, id)
}

// RequestID returns a slog.Attr for an RPC transaction ID (xid).
func RequestID(id uint32) slog.Attr {
	return slog.Any(KeyRequestID, id)
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for a numeric error code.
func ErrorCode(code int) slog.Attr {
	return slog.Int(KeyErrorCode, code)
}

// Entries returns a slog.Attr for the number of directory entries returned.
func Entries(n int) slog.Attr {
	return slog.Int(KeyEntries, n)
}

// Cookie returns a slog.Attr for a READDIR continuation cookie.
func Cookie(cookie uint64) slog.Attr {
	return slog.Uint64(KeyCookie, cookie)
}

// CookieEnd returns a slog.Attr for the highest cookie returned by READDIR.
func CookieEnd(cookie uint64) slog.Attr {
	return slog.Uint64(KeyCookieEnd, cookie)
}
