// Package file implements the File Manager: the process-wide registry
// of filehandles, share-reservation locking records, and the
// write-cache handles attached to them (§4.4).
package file

import (
	"encoding/binary"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/kelpfs/nfs4d/internal/logger"
	"github.com/kelpfs/nfs4d/internal/nfs4/attrs"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/nfs4/writecache"
	"github.com/kelpfs/nfs4d/internal/xdr"
	"github.com/kelpfs/nfs4d/pkg/vfs"
)

var rootID = []byte{0x80}

// Manager is the singleton File Manager. Like the Client Manager, its
// state is serialised through a single mutex rather than a mailbox
// actor — an explicitly sanctioned substitute (§9).
type Manager struct {
	mu sync.Mutex

	vfs vfs.FileSystem

	byID   map[string]*Filehandle
	byPath map[string]*Filehandle
	locks  map[[12]byte]*LockingRecord

	writeCache map[string]*writecache.Handle

	bootTime  uint64
	seq       uint64
	lockSeq   uint64
	fsidMajor uint64
	fsidMinor uint64
}

// New returns a File Manager rooted at "/" in fsys, stamping every
// minted filehandle with bootTime and advertising fsidMajor/fsidMinor
// via the fsid attribute.
func New(fsys vfs.FileSystem, bootTime, fsidMajor, fsidMinor uint64) *Manager {
	m := &Manager{
		vfs:        fsys,
		byID:       make(map[string]*Filehandle),
		byPath:     make(map[string]*Filehandle),
		locks:      make(map[[12]byte]*LockingRecord),
		writeCache: make(map[string]*writecache.Handle),
		bootTime:   bootTime,
		fsidMajor:  fsidMajor,
		fsidMinor:  fsidMinor,
	}
	now := time.Now()
	root := &Filehandle{
		ID:         string(rootID),
		Raw:        rootID,
		Path:       "/",
		Kind:       types.NF4DIR,
		Fileid:     fileID("/"),
		TimeAccess: now,
		TimeModify: now,
	}
	m.byID[root.ID] = root
	m.byPath[root.Path] = root
	return m
}

// GetRoot returns the root filehandle, which New mints up front.
func (m *Manager) GetRoot() *Filehandle {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[string(rootID)]
}

// GetById returns the filehandle matching id, verifying against the
// backing VFS that the object still exists. A hit whose backing object
// vanished is evicted and reported STALE; an id this manager never
// minted is reported BADHANDLE.
func (m *Manager) GetById(id []byte) (*Filehandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fh, ok := m.byID[string(id)]
	if !ok {
		return nil, &Error{Op: "GetById", Code: types.NFS4ErrBadhandle}
	}
	if _, err := m.vfs.Stat(fh.Path); err != nil {
		if vfs.IsNotExist(err) {
			m.evictLocked(fh)
			return nil, &Error{Op: "GetById", Code: types.NFS4ErrStale}
		}
		return nil, &Error{Op: "GetById", Code: types.NFS4ErrIO}
	}
	return fh, nil
}

// GetByPath resolves path against the mounted root, returning the
// cached filehandle if one was already minted for it or minting a new
// one otherwise. NOENT if the path does not exist in the backing VFS.
func (m *Manager) GetByPath(path string) (*Filehandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getByPathLocked(path)
}

func (m *Manager) getByPathLocked(path string) (*Filehandle, error) {
	if fh, ok := m.byPath[path]; ok {
		if _, err := m.vfs.Stat(path); err != nil {
			if vfs.IsNotExist(err) {
				m.evictLocked(fh)
				return nil, &Error{Op: "GetByPath", Code: types.NFS4ErrNoent}
			}
			return nil, &Error{Op: "GetByPath", Code: types.NFS4ErrIO}
		}
		return fh, nil
	}

	info, err := m.vfs.Stat(path)
	if err != nil {
		if vfs.IsNotExist(err) {
			return nil, &Error{Op: "GetByPath", Code: types.NFS4ErrNoent}
		}
		return nil, &Error{Op: "GetByPath", Code: types.NFS4ErrIO}
	}

	kind := uint32(types.NF4REG)
	if info.Kind == vfs.KindDir {
		kind = types.NF4DIR
	}
	fh := &Filehandle{
		ID:         string(m.newIDLocked()),
		Path:       path,
		Kind:       kind,
		Fileid:     fileID(path),
		Size:       uint64(info.Size),
		TimeAccess: info.AccessTime,
		TimeModify: info.ModTime,
	}
	fh.Raw = []byte(fh.ID)
	m.byID[fh.ID] = fh
	m.byPath[path] = fh
	return fh, nil
}

func (m *Manager) newIDLocked() []byte {
	m.seq++
	id := make([]byte, 18)
	id[0] = 0x80
	binary.BigEndian.PutUint64(id[1:9], m.bootTime)
	binary.BigEndian.PutUint64(id[9:17], m.seq)
	id[17] = 0x01
	return id
}

// GetAttrs answers GETATTR/CREATE/OPEN result attributes: the subset of
// requested attributes this server supports, and their encoded values.
func (m *Manager) GetAttrs(id []byte, requested []uint32) (answer []uint32, value []byte, err error) {
	fh, err := m.GetById(id)
	if err != nil {
		return nil, nil, err
	}

	m.mu.Lock()
	info, statErr := m.vfs.Stat(fh.Path)
	if statErr != nil {
		m.mu.Unlock()
		return nil, nil, &Error{Op: "GetAttrs", Code: types.NFS4ErrIO}
	}
	src := attrs.Source{
		Type:       fh.Kind,
		Change:     fh.Version,
		Size:       uint64(info.Size),
		Fileid:     fh.Fileid,
		FsidMajor:  m.fsidMajor,
		FsidMinor:  m.fsidMinor,
		Mode:       attrs.FixedMode,
		Owner:      attrs.FixedOwner,
		OwnerGroup: attrs.FixedOwnerGroup,
		SpaceUsed:  uint64(info.Size),
		TimeAccess: [2]uint64{uint64(info.AccessTime.Unix()), 0},
		TimeModify: [2]uint64{uint64(info.ModTime.Unix()), 0},
		Filehandle: fh.Raw,
	}
	src.TimeMetadata = src.TimeModify
	m.mu.Unlock()

	e := xdr.NewEncoder()
	ans := attrs.Encode(e, requested, src)
	return ans, e.Bytes(), nil
}

// CreateFile creates a regular file at path, mints a filehandle for
// it, and attaches a fresh OPEN share-reservation locking record. The
// parent directory is touched so its change/mtime bump.
//
// When verifier is non-nil (EXCLUSIVE4 create) and path already names
// a file this server previously created, the new verifier is compared
// against the one stashed on that create: a match means the client is
// retransmitting its own CREATE and the existing open is handed back
// unchanged, while a mismatch means a genuine name collision and is
// reported NFS4ERR_EXIST (RFC 7530 §16.16.4).
func (m *Manager) CreateFile(path, parentID string, clientID uint64, owner []byte, shareAccess, shareDeny uint32, verifier *[8]byte) (*Filehandle, types.Stateid4, error) {
	m.mu.Lock()
	existing, existed := m.byPath[path]
	var priorVerifier *[8]byte
	if existed {
		priorVerifier = existing.CreateVerifier
	}
	m.mu.Unlock()

	if verifier != nil && existed {
		if priorVerifier != nil && *priorVerifier == *verifier {
			if rec, ok := m.FirstShareLock(existing.ID); ok {
				return existing, rec.Stateid, nil
			}
		} else {
			return nil, types.Stateid4{}, &Error{Op: "CREATE", Code: types.NFS4ErrExist}
		}
	}

	if err := m.vfs.CreateFile(path); err != nil && !vfs.IsExist(err) {
		return nil, types.Stateid4{}, &Error{Op: "CREATE", Code: types.NFS4ErrIO}
	}

	m.mu.Lock()
	fh, lockupErr := m.getByPathLocked(path)
	if lockupErr != nil {
		m.mu.Unlock()
		return nil, types.Stateid4{}, lockupErr
	}
	fh.CreateVerifier = verifier

	m.lockSeq++
	stateid := types.NewOpenStateid(m.lockSeq)
	rec := &LockingRecord{
		Stateid:      stateid,
		ClientID:     clientID,
		Owner:        append([]byte(nil), owner...),
		Type:         LockTypeOpen,
		FilehandleID: fh.ID,
		ShareAccess:  shareAccess,
		ShareDeny:    shareDeny,
	}
	m.locks[stateid.Other] = rec
	m.mu.Unlock()

	if err := m.TouchFile(parentID); err != nil {
		logger.Warn("touch parent after create failed", "parent_id", parentID, "error", err)
	}
	return fh, stateid, nil
}

// CreateDir creates a directory at path and touches the parent so its
// change/mtime bump, mirroring CreateFile for the NF4DIR case of CREATE.
func (m *Manager) CreateDir(path, parentID string) (*Filehandle, error) {
	if err := m.vfs.CreateDir(path); err != nil && !vfs.IsExist(err) {
		return nil, &Error{Op: "CREATE", Code: types.NFS4ErrIO}
	}

	m.mu.Lock()
	fh, lookupErr := m.getByPathLocked(path)
	m.mu.Unlock()
	if lookupErr != nil {
		return nil, lookupErr
	}

	if err := m.TouchFile(parentID); err != nil {
		logger.Warn("touch parent after create failed", "parent_id", parentID, "error", err)
	}
	return fh, nil
}

// ListDir returns the immediate children of a directory filehandle,
// sorted by name so cookie-based pagination is stable across calls.
func (m *Manager) ListDir(fh *Filehandle) ([]Entry, error) {
	infos, err := m.vfs.List(fh.Path)
	if err != nil {
		return nil, &Error{Op: "READDIR", Code: types.NFS4ErrIO}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })

	entries := make([]Entry, 0, len(infos))
	for _, info := range infos {
		name := path.Base(info.Path)
		child, childErr := m.GetByPath(info.Path)
		if childErr != nil {
			continue
		}
		entries = append(entries, Entry{Name: name, Filehandle: child})
	}
	return entries, nil
}

// RemoveFile removes path (file or directory) from the backing store,
// drops its cached filehandle, and touches the parent.
func (m *Manager) RemoveFile(path, parentID string) error {
	if err := m.vfs.Remove(path); err != nil {
		if vfs.IsNotExist(err) {
			return &Error{Op: "REMOVE", Code: types.NFS4ErrNoent}
		}
		return &Error{Op: "REMOVE", Code: types.NFS4ErrIO}
	}

	m.mu.Lock()
	if fh, ok := m.byPath[path]; ok {
		m.evictLocked(fh)
	}
	m.mu.Unlock()

	if parentID != "" {
		_ = m.TouchFile(parentID)
	}
	return nil
}

// TouchFile re-derives a filehandle's attributes from the VFS and bumps
// its version counter, which doubles as the change attribute. It also
// implements writecache.Owner, called back once a commit lands.
func (m *Manager) TouchFile(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	fh, ok := m.byID[id]
	if !ok {
		return &Error{Op: "TouchFile", Code: types.NFS4ErrBadhandle}
	}
	info, err := m.vfs.Stat(fh.Path)
	if err != nil {
		if vfs.IsNotExist(err) {
			m.evictLocked(fh)
			return &Error{Op: "TouchFile", Code: types.NFS4ErrStale}
		}
		return &Error{Op: "TouchFile", Code: types.NFS4ErrIO}
	}
	fh.Size = uint64(info.Size)
	fh.TimeAccess = info.AccessTime
	fh.TimeModify = info.ModTime
	fh.Version++
	return nil
}

// Resize implements the SETATTR Size attribute: truncates or
// zero-extends the backing file to size via a read-back-and-rewrite,
// the only attribute mutation this server supports.
func (m *Manager) Resize(id []byte, size uint64) error {
	fh, err := m.GetById(id)
	if err != nil {
		return err
	}

	data, readErr := m.vfs.ReadAll(fh.Path)
	if readErr != nil {
		return &Error{Op: "SETATTR", Code: types.NFS4ErrIO}
	}

	resized := make([]byte, size)
	copy(resized, data)

	if err := m.vfs.WriteAll(fh.Path, resized); err != nil {
		return &Error{Op: "SETATTR", Code: types.NFS4ErrIO}
	}
	return nil
}

// ReadFile reads up to count bytes starting at offset from fh's backing
// file.
func (m *Manager) ReadFile(fh *Filehandle, offset uint64, count uint32) ([]byte, error) {
	data, err := m.vfs.ReadAll(fh.Path)
	if err != nil {
		return nil, &Error{Op: "READ", Code: types.NFS4ErrIO}
	}
	if offset >= uint64(len(data)) {
		return nil, nil
	}
	end := offset + uint64(count)
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	return data[offset:end], nil
}

// WriteSync implements the FILE_SYNC/DATA_SYNC write path: reads the
// backing file, splices data in at offset (zero-extending the file if
// offset+len(data) passes its end), and writes the whole file back
// immediately (as opposed to the deferred Write Cache path).
func (m *Manager) WriteSync(fh *Filehandle, offset uint64, data []byte) error {
	current, err := m.vfs.ReadAll(fh.Path)
	if err != nil {
		return &Error{Op: "WRITE", Code: types.NFS4ErrIO}
	}
	end := offset + uint64(len(data))
	if end > uint64(len(current)) {
		grown := make([]byte, end)
		copy(grown, current)
		current = grown
	}
	copy(current[offset:], data)
	if err := m.vfs.WriteAll(fh.Path, current); err != nil {
		return &Error{Op: "WRITE", Code: types.NFS4ErrIO}
	}
	return nil
}

// UpdateFilehandle replaces the stored record for fh.ID with fh,
// used after a write-through cache commit changes size/mtime.
func (m *Manager) UpdateFilehandle(fh *Filehandle) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[fh.ID] = fh
	m.byPath[fh.Path] = fh
}

// GetWriteCacheHandle returns the live write-cache actor for fh,
// spawning one on first reference.
func (m *Manager) GetWriteCacheHandle(fh *Filehandle) (*writecache.Handle, error) {
	m.mu.Lock()
	if h, ok := m.writeCache[fh.ID]; ok {
		m.mu.Unlock()
		return h, nil
	}
	m.mu.Unlock()

	h, err := writecache.New(m.vfs, m, fh.ID, fh.Path)
	if err != nil {
		return nil, &Error{Op: "GetWriteCacheHandle", Code: types.NFS4ErrIO}
	}

	m.mu.Lock()
	if existing, ok := m.writeCache[fh.ID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	m.writeCache[fh.ID] = h
	fh.WriteCache = h
	m.mu.Unlock()
	return h, nil
}

// DropWriteCacheHandle implements writecache.Owner: it removes the
// registry entry and clears the owning filehandle's cache pointer.
func (m *Manager) DropWriteCacheHandle(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.writeCache, id)
	if fh, ok := m.byID[id]; ok {
		fh.WriteCache = nil
	}
	return nil
}

// GetLock returns the locking record for a stateid's "other" field, if
// any is currently attached.
func (m *Manager) GetLock(other [12]byte) (*LockingRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.locks[other]
	return rec, ok
}

// FirstShareLock returns some OPEN share-reservation record attached to
// fhID, if any. OPEN_CONFIRM uses this instead of looking its stateid
// up directly, per the server's relaxed confirmation semantics (§9).
func (m *Manager) FirstShareLock(fhID string) (*LockingRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.locks {
		if rec.Type == LockTypeOpen && rec.FilehandleID == fhID {
			return rec, true
		}
	}
	return nil, false
}

// ConfirmLock marks a share-reservation record confirmed (OPEN_CONFIRM).
func (m *Manager) ConfirmLock(other [12]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.locks[other]; ok {
		rec.Confirmed = true
	}
}

// ReleaseLock drops a locking record, used by CLOSE.
func (m *Manager) ReleaseLock(other [12]byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, other)
}

func (m *Manager) evictLocked(fh *Filehandle) {
	delete(m.byID, fh.ID)
	delete(m.byPath, fh.Path)
	delete(m.writeCache, fh.ID)
	for other, rec := range m.locks {
		if rec.FilehandleID == fh.ID {
			delete(m.locks, other)
		}
	}
}
