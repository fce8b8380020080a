package rpc

// Message types (RFC 5531 §9).
const (
	RPCCall  uint32 = 0
	RPCReply uint32 = 1
)

// Reply states.
const (
	RPCMsgAccepted uint32 = 0
	RPCMsgDenied   uint32 = 1
)

// Accept statuses.
const (
	RPCSuccess      uint32 = 0
	RPCProgUnavail  uint32 = 1
	RPCProgMismatch uint32 = 2
	RPCProcUnavail  uint32 = 3
	RPCGarbageArgs  uint32 = 4
	RPCSystemErr    uint32 = 5
)

// Reject statuses, used when ReplyState is RPCMsgDenied.
const (
	RPCMismatch uint32 = 0
	RPCAuthErr  uint32 = 1
)

// Authentication flavors (RFC 5531 §8.2).
const (
	AuthNull  uint32 = 0
	AuthUnix  uint32 = 1
	AuthShort uint32 = 2
	AuthDES   uint32 = 3
)

// NFS program identity, per RFC 7530.
const (
	ProgramNFS  uint32 = 100003
	VersionNFS4 uint32 = 4

	ProcedureNull     uint32 = 0
	ProcedureCompound uint32 = 1
)
