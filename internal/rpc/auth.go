package rpc

import (
	"fmt"

	"github.com/kelpfs/nfs4d/internal/xdr"
)

const maxAuthUnixGIDs = 16
const maxAuthUnixMachineName = 255

// Opaque is a decoded RPC authentication field: a flavor tag plus its
// opaque body. The body is never interpreted beyond AUTH_UNIX, per the
// scope of this server — RPCSEC_GSS and AUTH_DES are decoded only far
// enough to be skipped.
type Opaque struct {
	Flavor uint32
	Body   []byte
}

func decodeOpaqueAuth(d *xdr.Decoder) (Opaque, error) {
	flavor, err := d.Uint32()
	if err != nil {
		return Opaque{}, fmt.Errorf("auth flavor: %w", err)
	}
	body, err := d.Opaque()
	if err != nil {
		return Opaque{}, fmt.Errorf("auth body: %w", err)
	}
	return Opaque{Flavor: flavor, Body: body}, nil
}

// UnixAuth is the decoded body of an AUTH_UNIX (AUTH_SYS) credential.
// Its content is accepted and parsed but never used for authorization;
// this server speaks AUTH_NONE and AUTH_UNIX only, not RPCSEC_GSS.
type UnixAuth struct {
	Stamp       uint32
	MachineName string
	UID         uint32
	GID         uint32
	GIDs        []uint32
}

// ParseUnixAuth decodes an AUTH_UNIX credential body per RFC 5531 §8.2.
func ParseUnixAuth(body []byte) (*UnixAuth, error) {
	if len(body) == 0 {
		return nil, fmt.Errorf("rpc: empty AUTH_UNIX body")
	}
	d := xdr.NewDecoder(body)

	stamp, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("stamp: %w", err)
	}

	nameLen, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("machine name length: %w", err)
	}
	if nameLen > maxAuthUnixMachineName {
		return nil, fmt.Errorf("rpc: machine name too long: %d", nameLen)
	}
	nameBytes, err := d.FixedOpaque(int(nameLen))
	if err != nil {
		return nil, fmt.Errorf("machine name: %w", err)
	}
	if padding := (4 - (nameLen % 4)) % 4; padding > 0 {
		if _, err := d.FixedOpaque(int(padding)); err != nil {
			return nil, fmt.Errorf("machine name padding: %w", err)
		}
	}

	uid, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("uid: %w", err)
	}
	gid, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("gid: %w", err)
	}
	gidCount, err := d.Uint32()
	if err != nil {
		return nil, fmt.Errorf("gid count: %w", err)
	}
	if gidCount > maxAuthUnixGIDs {
		return nil, fmt.Errorf("rpc: too many gids: %d", gidCount)
	}
	gids := make([]uint32, gidCount)
	for i := range gids {
		gids[i], err = d.Uint32()
		if err != nil {
			return nil, fmt.Errorf("gid[%d]: %w", i, err)
		}
	}

	return &UnixAuth{
		Stamp:       stamp,
		MachineName: string(nameBytes),
		UID:         uid,
		GID:         gid,
		GIDs:        gids,
	}, nil
}

func (a *UnixAuth) String() string {
	return fmt.Sprintf("UnixAuth{machine=%s uid=%d gid=%d gids=%v}", a.MachineName, a.UID, a.GID, a.GIDs)
}
