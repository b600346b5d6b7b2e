// Package nltest builds NLDEV messages the way the kernel encodes them so
// that decoding can be exercised without an RDMA device.
package nltest

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"github.com/josharian/native"
	nl "github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"github.com/scitags/rdma-res-go/netlink"
)

// A struct __kernel_sockaddr_storage is 128 bytes long.
const sizeofSockaddrStorage = 128

// Attr appends one attribute to an encoder.
type Attr func(ae *nl.AttributeEncoder)

// Encode lays out attrs as a flat attribute stream. Being a test helper it
// panics on encoding errors.
func Encode(attrs ...Attr) []byte {
	ae := nl.NewAttributeEncoder()
	for _, attr := range attrs {
		attr(ae)
	}

	b, err := ae.Encode()
	if err != nil {
		panic(fmt.Sprintf("couldn't encode attributes: %v", err))
	}
	return b
}

func U8(id netlink.AttrID, v uint8) Attr {
	return func(ae *nl.AttributeEncoder) { ae.Uint8(uint16(id), v) }
}

func U32(id netlink.AttrID, v uint32) Attr {
	return func(ae *nl.AttributeEncoder) { ae.Uint32(uint16(id), v) }
}

func U64(id netlink.AttrID, v uint64) Attr {
	return func(ae *nl.AttributeEncoder) { ae.Uint64(uint16(id), v) }
}

// Str adds a NUL terminated string.
func Str(id netlink.AttrID, s string) Attr {
	return func(ae *nl.AttributeEncoder) { ae.String(uint16(id), s) }
}

// Raw adds b verbatim, which comes in handy to break the policy.
func Raw(id netlink.AttrID, b []byte) Attr {
	return func(ae *nl.AttributeEncoder) { ae.Bytes(uint16(id), b) }
}

// Nest wraps attrs in a nested attribute.
func Nest(id netlink.AttrID, attrs ...Attr) Attr {
	return func(ae *nl.AttributeEncoder) {
		ae.Nested(uint16(id), func(nae *nl.AttributeEncoder) error {
			for _, attr := range attrs {
				attr(nae)
			}
			return nil
		})
	}
}

// List builds a resource list such as RDMA_NLDEV_ATTR_RES_QP. Entries are
// tagged with the id following the list's as the kernel does.
func List(list netlink.AttrID, entries ...[]Attr) Attr {
	nested := make([]Attr, 0, len(entries))
	for _, entry := range entries {
		nested = append(nested, Nest(list+1, entry...))
	}
	return Nest(list, nested...)
}

// Resource builds the payload of a resource dump reply for a single device.
func Resource(devIndex uint32, devName string, list netlink.AttrID, entries ...[]Attr) []byte {
	return Encode(
		U32(netlink.RDMA_NLDEV_ATTR_DEV_INDEX, devIndex),
		Str(netlink.RDMA_NLDEV_ATTR_DEV_NAME, devName),
		List(list, entries...),
	)
}

// Device builds the payload of an RDMA_NLDEV_CMD_GET reply.
func Device(devIndex uint32, devName string) []byte {
	return Encode(
		U32(netlink.RDMA_NLDEV_ATTR_DEV_INDEX, devIndex),
		Str(netlink.RDMA_NLDEV_ATTR_DEV_NAME, devName),
		Str(netlink.RDMA_NLDEV_ATTR_FW_VERSION, "16.35.2000"),
	)
}

// Sockaddr lays out ap as a struct __kernel_sockaddr_storage.
func Sockaddr(ap netip.AddrPort) []byte {
	b := make([]byte, sizeofSockaddrStorage)
	binary.BigEndian.PutUint16(b[2:4], ap.Port())

	addr := ap.Addr()
	if addr.Is4() {
		native.Endian.PutUint16(b[0:2], unix.AF_INET)
		a := addr.As4()
		copy(b[4:8], a[:])
		return b
	}

	native.Endian.PutUint16(b[0:2], unix.AF_INET6)
	a := addr.As16()
	copy(b[8:24], a[:])
	return b
}

// SockaddrFamily builds a sockaddr of an arbitrary family.
func SockaddrFamily(family uint16) []byte {
	b := make([]byte, sizeofSockaddrStorage)
	native.Endian.PutUint16(b[0:2], family)
	return b
}
