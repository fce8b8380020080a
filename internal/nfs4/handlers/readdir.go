package handlers

import (
	"strings"

	"github.com/kelpfs/nfs4d/internal/nfs4/attrs"
	"github.com/kelpfs/nfs4d/internal/nfs4/file"
	"github.com/kelpfs/nfs4d/internal/nfs4/types"
	"github.com/kelpfs/nfs4d/internal/xdr"
)

const (
	readdirFirstCookie    = 3
	readdirEntryOverhead  = 8 + 5 // plus name length, toward dircount
	readdirEntryMaxWeight = 200   // flat weight toward maxcount
)

// opReaddir implements READDIR (RFC 7530 §16.17). Cookies 0..2 are
// reserved and entries are numbered from 3 upward; the cookieverf is a
// sampled digest of the current child-name listing rather than a real
// generation counter (§9).
func opReaddir(ctx *RequestContext, d *xdr.Decoder, e *xdr.Encoder) uint32 {
	cookie, err := d.Uint64()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	suppliedVerf, err := d.FixedOpaque(8)
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	dircount, err := d.Uint32()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	maxcount, err := d.Uint32()
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	requested, err := attrs.DecodeBitmap4(d)
	if err != nil {
		return types.NFS4ErrBadXDR
	}
	if ctx.Current == nil {
		return types.NFS4ErrStale
	}
	if ctx.Current.Kind != types.NF4DIR {
		return types.NFS4ErrNotdir
	}

	entries, listErr := ctx.Files.ListDir(ctx.Current)
	if listErr != nil {
		return types.StatusOf(listErr)
	}

	verf := readdirCookieverf(entries)
	if cookie != 0 && string(suppliedVerf) != string(verf[:]) {
		return types.NFS4ErrNotSame
	}

	type emitted struct {
		cookie uint64
		entry  file.Entry
	}
	var pending []emitted
	for i, ent := range entries {
		c := uint64(readdirFirstCookie + i)
		if c > cookie {
			pending = append(pending, emitted{cookie: c, entry: ent})
		}
	}

	var dirBudget, maxBudget uint32
	eof := true
	var encoded []emitted
	for _, p := range pending {
		weight := uint32(readdirEntryOverhead + len(p.entry.Name))
		if dircount != 0 && dirBudget+weight > dircount {
			eof = false
			break
		}
		if maxcount != 0 && maxBudget+readdirEntryMaxWeight > maxcount {
			eof = false
			break
		}
		dirBudget += weight
		maxBudget += readdirEntryMaxWeight
		encoded = append(encoded, p)
	}

	body := xdr.NewEncoder()
	body.FixedOpaque(verf[:])
	for _, p := range encoded {
		body.Bool(true) // another entry follows
		body.Uint64(p.cookie)
		body.String(p.entry.Name)
		_, value, attrErr := ctx.Files.GetAttrs(p.entry.Filehandle.Raw, requested)
		if attrErr != nil {
			return types.StatusOf(attrErr)
		}
		body.FixedOpaque(value)
	}
	body.Bool(false) // no further entries
	body.Bool(eof)
	e.FixedOpaque(body.Bytes())
	return types.NFS4OK
}

// readdirCookieverf derives a directory's cookieverf by concatenating
// all child names and sampling every ceil(len/8)-th byte, zero-padded
// to 8 bytes. An empty directory's verifier is all-zero.
func readdirCookieverf(entries []file.Entry) [8]byte {
	var verf [8]byte
	var b strings.Builder
	for _, ent := range entries {
		b.WriteString(ent.Name)
	}
	s := b.String()
	if len(s) == 0 {
		return verf
	}
	step := (len(s) + 7) / 8
	for i := 0; i < 8; i++ {
		idx := i * step
		if idx >= len(s) {
			break
		}
		verf[i] = s[idx]
	}
	return verf
}
