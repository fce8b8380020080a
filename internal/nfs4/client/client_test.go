package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreshClientHandshake(t *testing.T) {
	m := New(60 * time.Second)

	rec, err := m.UpsertClient([8]byte{0x17, 0xd5, 0x43, 0xae, 0xc5, 0x5f, 0x23, 0x77}, "Linux NFSv4.0 LAPTOP/127.0.0.1", Callback{}, "")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), rec.ClientID)
	assert.False(t, rec.Confirmed)

	confirmed, err := m.ConfirmClient(rec.ClientID, rec.Confirm, "")
	require.NoError(t, err)
	assert.True(t, confirmed.Confirmed)
	assert.True(t, m.IsConfirmed(rec.ClientID))
}

func TestDuplicateIDNewVerifierBeforeConfirm(t *testing.T) {
	m := New(60 * time.Second)

	first, err := m.UpsertClient([8]byte{1}, "same-id", Callback{}, "")
	require.NoError(t, err)

	second, err := m.UpsertClient([8]byte{2}, "same-id", Callback{}, "")
	require.NoError(t, err)

	assert.Equal(t, first.ClientID, second.ClientID)
	assert.NotEqual(t, first.Confirm, second.Confirm)
}

func TestConfirmUnknownClientIsStale(t *testing.T) {
	m := New(60 * time.Second)
	_, err := m.ConfirmClient(999, [8]byte{}, "")
	require.Error(t, err)
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, uint32(10022), clientErr.NFSStatus()) // NFS4ERR_STALE_CLIENTID
}

func TestRenewStaleClientID(t *testing.T) {
	m := New(60 * time.Second)
	err := m.RenewLease(50)
	require.Error(t, err)
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, uint32(10022), clientErr.NFSStatus())
}

func TestRenewNeverUnconfirmsClient(t *testing.T) {
	m := New(60 * time.Second)
	rec, err := m.UpsertClient([8]byte{9}, "leased", Callback{}, "")
	require.NoError(t, err)
	confirmed, err := m.ConfirmClient(rec.ClientID, rec.Confirm, "")
	require.NoError(t, err)

	require.NoError(t, m.RenewLease(confirmed.ClientID))
	assert.True(t, m.IsConfirmed(confirmed.ClientID))
}

func TestConfirmedClientWithDifferentPrincipalIsRejected(t *testing.T) {
	m := New(60 * time.Second)
	rec, err := m.UpsertClient([8]byte{1}, "owned", Callback{}, "alice")
	require.NoError(t, err)
	_, err = m.ConfirmClient(rec.ClientID, rec.Confirm, "alice")
	require.NoError(t, err)

	_, err = m.UpsertClient([8]byte{2}, "owned", Callback{}, "mallory")
	require.Error(t, err)
	var clientErr *Error
	require.ErrorAs(t, err, &clientErr)
	assert.Equal(t, uint32(10017), clientErr.NFSStatus()) // NFS4ERR_CLID_INUSE
}
