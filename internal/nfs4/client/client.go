// Package client implements the Client Manager: the process-wide
// lease/verifier state machine for NFSv4.0 client ids (RFC 7530 §9.1).
package client

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/kelpfs/nfs4d/internal/logger"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
)

// Callback identifies where the server would reach a client for
// delegation recalls. This server never delegates, but the field is
// recorded and echoed the way RFC 7530 §16.35 expects.
type Callback struct {
	Program uint32
	NetID   string
	Address string
	Ident   uint32
}

// Record represents one client's presence under lease.
type Record struct {
	Principal   string
	Verifier    [8]byte
	ID          string
	ClientID    uint64
	Callback    Callback
	Confirm     [8]byte
	Confirmed   bool
	LeaseExpiry time.Time
}

// Manager is the singleton Client Manager. All state changes are
// serialised through mu, giving the single-writer semantics the
// protocol engine's actor-per-coordinator model calls for (§9: "direct
// shared-state protected by a single mutex" is an explicitly sanctioned
// substitute for a mailbox-based actor).
type Manager struct {
	mu    sync.Mutex
	byID  map[string]*Record
	byCID map[uint64]*Record

	nextClientID uint64
	lease        time.Duration
}

// New returns an empty Client Manager advertising the given lease time.
func New(lease time.Duration) *Manager {
	return &Manager{
		byID:         make(map[string]*Record),
		byCID:        make(map[uint64]*Record),
		nextClientID: 1,
		lease:        lease,
	}
}

// LeaseTime returns the server's configured lease duration, advertised
// via the lease_time attribute.
func (m *Manager) LeaseTime() time.Duration { return m.lease }

// UpsertClient implements SETCLIENTID's delegation target: see §4.3.
func (m *Manager) UpsertClient(verifier [8]byte, id string, callback Callback, principal string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing := m.byID[id]
	if existing != nil && existing.Confirmed && existing.Principal != principal {
		return nil, errClidInUse("SETCLIENTID")
	}

	clientID := m.nextClientID
	m.nextClientID++
	if existing != nil {
		clientID = existing.ClientID
		if !existing.Confirmed {
			delete(m.byCID, existing.ClientID)
		}
	}

	confirm, err := randomCookie()
	if err != nil {
		return nil, &Error{Op: "SETCLIENTID", Code: types.NFS4ErrServerfault}
	}

	rec := &Record{
		Principal: principal,
		Verifier:  verifier,
		ID:        id,
		ClientID:  clientID,
		Callback:  callback,
		Confirm:   confirm,
	}
	m.byID[id] = rec
	logger.Debug("client upserted", logger.ClientID(rec.ClientID), "id", id)
	return rec, nil
}

// ConfirmClient implements SETCLIENTID_CONFIRM: see §4.3.
func (m *Manager) ConfirmClient(clientID uint64, confirm [8]byte, principal string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var pending *Record
	for _, rec := range m.byID {
		if rec.ClientID != clientID {
			continue
		}
		if rec.Principal != principal {
			return nil, errClidInUse("SETCLIENTID_CONFIRM")
		}
		if rec.Confirmed {
			if rec.Confirm != confirm {
				delete(m.byID, rec.ID)
				delete(m.byCID, rec.ClientID)
			}
			continue
		}
		if rec.Confirm == confirm {
			pending = rec
		}
	}

	if pending == nil {
		return nil, errStaleClientID("SETCLIENTID_CONFIRM")
	}

	pending.Confirmed = true
	pending.LeaseExpiry = time.Now().Add(m.lease)
	m.byCID[pending.ClientID] = pending
	logger.Info("client confirmed", logger.ClientID(pending.ClientID), "id", pending.ID)
	return pending, nil
}

// RenewLease implements RENEW: refreshes the lease timer for a
// confirmed client, returning errStaleClientID if none exists.
func (m *Manager) RenewLease(clientID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.byCID[clientID]
	if !ok || !rec.Confirmed {
		return errStaleClientID("RENEW")
	}
	rec.LeaseExpiry = time.Now().Add(m.lease)
	return nil
}

// IsConfirmed reports whether clientID names a confirmed, unexpired
// client record, i.e. whether it is still backed by a live lease.
func (m *Manager) IsConfirmed(clientID uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byCID[clientID]
	return ok && rec.Confirmed && time.Now().Before(rec.LeaseExpiry)
}

// Count returns the number of tracked client records (confirmed and
// unconfirmed), exposed purely for the active-client Prometheus gauge.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byID)
}

// Clients returns a snapshot copy of every tracked record, for
// diagnostics and metrics only — never for protocol decisions, since
// the slice can be stale the instant it is returned.
func (m *Manager) Clients() []Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, 0, len(m.byID))
	for _, rec := range m.byID {
		out = append(out, *rec)
	}
	return out
}

func randomCookie() ([8]byte, error) {
	var b [8]byte
	_, err := rand.Read(b[:])
	return b, err
}
