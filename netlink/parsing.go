package netlink

import (
	"fmt"
	"net/netip"

	"github.com/josharian/native"
	"github.com/mdlayher/netlink"
	"github.com/mdlayher/netlink/nlenc"
	"golang.org/x/sys/unix"

	"github.com/scitags/rdma-res-go/types"
)

const (
	// Netlink attribute headers are 4 bytes long (struct nlattr).
	nlaHeaderLen = 4

	// Offsets into a struct sockaddr_in{,6} as laid out within a
	// struct __kernel_sockaddr_storage.
	sockaddrPortOff  = 2
	sockaddrIn4Off   = 4
	sockaddrIn6Off   = 8
	sizeofSockaddrIn = sockaddrIn4Off + 4
	sizeofSockaddrI6 = sockaddrIn6Off + 16
)

// Table holds the attributes found on a flat attribute stream indexed by
// their id. It's the equivalent of the tb[] arrays filled by libmnl.
type Table struct {
	attrs [AttrMax][]byte
	seen  [AttrMax]bool
}

// Decode walks the attribute stream in b. Attributes we don't know about are
// ignored and, when repeated, the last occurrence wins. Every known attribute
// is validated against the policy so that the typed accessors are always safe
// to call on present attributes.
func Decode(b []byte) (*Table, error) {
	ad, err := netlink.NewAttributeDecoder(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	t := &Table{}
	for ad.Next() {
		id := AttrID(ad.Type())
		if id == RDMA_NLDEV_ATTR_UNSPEC || id >= AttrMax {
			continue
		}

		data := ad.Bytes()
		if err := validate(id, data); err != nil {
			return nil, err
		}

		t.attrs[id] = data
		t.seen[id] = true
	}

	if err := ad.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	return t, nil
}

func validate(id AttrID, data []byte) error {
	var ok bool
	switch policy[id] {
	case TypeU8:
		ok = len(data) == 1
	case TypeU32:
		ok = len(data) == 4
	case TypeU64:
		ok = len(data) == 8
	case TypeString:
		ok = len(data) > 0 && data[len(data)-1] == 0x00
	case TypeNested:
		ok = len(data) == 0 || len(data) >= nlaHeaderLen
	default:
		ok = true
	}

	if !ok {
		return fmt.Errorf("%w: %s has a bad payload of %d bytes", ErrMalformed, id, len(data))
	}
	return nil
}

// Has reports whether attribute id was present on the stream.
func (t *Table) Has(id AttrID) bool {
	return id < AttrMax && t.seen[id]
}

// Bytes returns the raw payload of attribute id.
func (t *Table) Bytes(id AttrID) ([]byte, bool) {
	if !t.Has(id) {
		return nil, false
	}
	return t.attrs[id], true
}

func (t *Table) Uint8(id AttrID) (uint8, bool) {
	if !t.Has(id) {
		return 0, false
	}
	return nlenc.Uint8(t.attrs[id]), true
}

func (t *Table) Uint32(id AttrID) (uint32, bool) {
	if !t.Has(id) {
		return 0, false
	}
	return nlenc.Uint32(t.attrs[id]), true
}

func (t *Table) Uint64(id AttrID) (uint64, bool) {
	if !t.Has(id) {
		return 0, false
	}
	return nlenc.Uint64(t.attrs[id]), true
}

// Uint widens an unsigned attribute to 64 bits according to the width the
// policy declares for it. Attributes that aren't unsigned integers are
// reported as absent.
func (t *Table) Uint(id AttrID) (uint64, bool) {
	if !t.Has(id) {
		return 0, false
	}

	switch policy[id] {
	case TypeU8:
		return uint64(nlenc.Uint8(t.attrs[id])), true
	case TypeU32:
		return uint64(nlenc.Uint32(t.attrs[id])), true
	case TypeU64:
		return nlenc.Uint64(t.attrs[id]), true
	}
	return 0, false
}

func (t *Table) String(id AttrID) (string, bool) {
	if !t.Has(id) {
		return "", false
	}
	return nlenc.String(t.attrs[id]), true
}

// Nested walks the entries of the nested list attribute id, decoding each of
// them into a fresh Table handed over to fn. Errors returned by fn are passed
// through untouched so that callers can tell them apart from ErrMalformed.
// A missing attribute is an empty list.
func (t *Table) Nested(id AttrID, fn func(*Table) error) error {
	b, ok := t.Bytes(id)
	if !ok || len(b) == 0 {
		return nil
	}

	ad, err := netlink.NewAttributeDecoder(b)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, id, err)
	}

	for ad.Next() {
		entry, err := Decode(ad.Bytes())
		if err != nil {
			return fmt.Errorf("%s entry: %w", id, err)
		}
		if err := fn(entry); err != nil {
			return err
		}
	}

	if err := ad.Err(); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, id, err)
	}

	return nil
}

// DecodeSockaddr decodes a struct __kernel_sockaddr_storage as sent on
// RDMA_NLDEV_ATTR_RES_{SRC,DST}_ADDR. The family is in host order whilst the
// port and address are in network order. Only AF_INET and AF_INET6 are known.
func DecodeSockaddr(b []byte) (netip.Addr, uint16, error) {
	if len(b) < sockaddrPortOff {
		return netip.Addr{}, 0, fmt.Errorf("%w: short payload of %d bytes", ErrAddrFamily, len(b))
	}

	family := native.Endian.Uint16(b[:sockaddrPortOff])
	switch family {
	case unix.AF_INET:
		if len(b) < sizeofSockaddrIn {
			return netip.Addr{}, 0, fmt.Errorf("%w: short AF_INET payload of %d bytes", ErrAddrFamily, len(b))
		}
		port := Ntohs(native.Endian.Uint16(b[sockaddrPortOff:sockaddrIn4Off]))
		return netip.AddrFrom4([4]byte(b[sockaddrIn4Off:sizeofSockaddrIn])), port, nil

	case unix.AF_INET6:
		if len(b) < sizeofSockaddrI6 {
			return netip.Addr{}, 0, fmt.Errorf("%w: short AF_INET6 payload of %d bytes", ErrAddrFamily, len(b))
		}
		port := Ntohs(native.Endian.Uint16(b[sockaddrPortOff:sockaddrIn4Off]))
		return netip.AddrFrom16([16]byte(b[sockaddrIn6Off:sizeofSockaddrI6])), port, nil
	}

	return netip.Addr{}, 0, fmt.Errorf("%w: family %d", ErrAddrFamily, family)
}

// DecodeDriver walks the vendor specific attributes carried on
// RDMA_NLDEV_ATTR_DRIVER. These are tuples of {key, [print-type], value}
// where the key is always a string and the print type is optional: when
// present it asks for the value to be shown in a different base. Once a tuple
// is found to be out of order we simply stop, returning what we got so far.
func DecodeDriver(b []byte) ([]types.DriverAttr, error) {
	if len(b) == 0 {
		return nil, nil
	}

	ad, err := netlink.NewAttributeDecoder(b)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, RDMA_NLDEV_ATTR_DRIVER, err)
	}

	var (
		attrs []types.DriverAttr
		key   *types.DriverAttr
	)

walk:
	for ad.Next() {
		id := AttrID(ad.Type())
		data := ad.Bytes()
		if id < AttrMax {
			if err := validate(id, data); err != nil {
				return nil, err
			}
		}

		if key == nil {
			if id != RDMA_NLDEV_ATTR_DRIVER_STRING {
				break
			}
			key = &types.DriverAttr{Key: nlenc.String(data)}
			continue
		}

		switch id {
		case RDMA_NLDEV_ATTR_DRIVER_PRINT_TYPE:
			key.Hex = nlenc.Uint8(data) == RDMA_NLDEV_PRINT_TYPE_HEX
			continue
		case RDMA_NLDEV_ATTR_DRIVER_STRING:
			key.Kind, key.Str = types.DriverString, nlenc.String(data)
		case RDMA_NLDEV_ATTR_DRIVER_S32:
			key.Kind, key.SNum = types.DriverS32, int64(int32(nlenc.Uint32(data)))
		case RDMA_NLDEV_ATTR_DRIVER_U32:
			key.Kind, key.Num = types.DriverU32, uint64(nlenc.Uint32(data))
		case RDMA_NLDEV_ATTR_DRIVER_S64:
			key.Kind, key.SNum = types.DriverS64, int64(nlenc.Uint64(data))
		case RDMA_NLDEV_ATTR_DRIVER_U64:
			key.Kind, key.Num = types.DriverU64, nlenc.Uint64(data)
		default:
			break walk
		}

		attrs = append(attrs, *key)
		key = nil
	}

	if err := ad.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, RDMA_NLDEV_ATTR_DRIVER, err)
	}

	return attrs, nil
}
