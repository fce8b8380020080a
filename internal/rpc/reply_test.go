package rpc

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeProgMismatchReply(t *testing.T) {
	t.Run("EncodesVersionRangeAndEchoesXid", func(t *testing.T) {
		reply, err := MakeProgMismatchReply(0xABCD1234, 4, 4)
		require.NoError(t, err)

		assert.Equal(t, uint32(0xABCD1234), binary.BigEndian.Uint32(reply[0:4]))
		assert.Equal(t, RPCReply, binary.BigEndian.Uint32(reply[4:8]))
		assert.Equal(t, RPCMsgAccepted, binary.BigEndian.Uint32(reply[8:12]))

		n := len(reply)
		assert.Equal(t, uint32(4), binary.BigEndian.Uint32(reply[n-8:n-4]))
		assert.Equal(t, uint32(4), binary.BigEndian.Uint32(reply[n-4:]))

		// AcceptStat sits right after the 8-byte empty AUTH_NONE verifier
		// (4-byte flavor + 4-byte zero-length body), at offset 20.
		assert.Equal(t, RPCProgMismatch, binary.BigEndian.Uint32(reply[20:24]))
	})

	t.Run("RejectsInvertedRange", func(t *testing.T) {
		_, err := MakeProgMismatchReply(1, 5, 3)
		assert.ErrorContains(t, err, "low (5) > high (3)")
	})
}

func TestMakeSuccessReply(t *testing.T) {
	body := []byte{0, 0, 0, 0}
	reply := MakeSuccessReply(42, body)

	assert.Equal(t, uint32(42), binary.BigEndian.Uint32(reply[0:4]))
	assert.Equal(t, RPCReply, binary.BigEndian.Uint32(reply[4:8]))
	assert.Equal(t, RPCMsgAccepted, binary.BigEndian.Uint32(reply[8:12]))
	assert.Equal(t, RPCSuccess, binary.BigEndian.Uint32(reply[20:24]))
	assert.Equal(t, body, reply[24:])
}

func TestMakeGarbageArgsReply(t *testing.T) {
	reply := MakeGarbageArgsReply(7)
	assert.Equal(t, RPCGarbageArgs, binary.BigEndian.Uint32(reply[20:24]))
	assert.Len(t, reply, 24)
}
