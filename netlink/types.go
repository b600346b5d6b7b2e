package netlink

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformed flags a structurally invalid attribute stream or an
	// attribute violating the NLDEV policy. Iteration must stop on it.
	ErrMalformed = errors.New("malformed netlink attribute")

	// ErrAddrFamily flags a socket address we can't decode. Only the record
	// carrying it is affected.
	ErrAddrFamily = errors.New("unsupported socket address")
)

// AttrID is an rdma_nldev_attr identifier.
type AttrID uint16

func (id AttrID) String() string {
	if s, ok := attrName[id]; ok {
		return s
	}
	return fmt.Sprintf("RDMA_NLDEV_ATTR(%d)", uint16(id))
}

// Command is an rdma_nldev_command.
type Command uint16

// MsgType builds the netlink message type for an NLDEV command as done by the
// RDMA_NL_GET_TYPE macro.
func (c Command) MsgType() uint16 {
	return RDMA_NL_NLDEV<<10 + uint16(c)
}

// AttrType is the payload type an attribute is validated against.
type AttrType int

const (
	TypeUnspec AttrType = iota
	TypeU8
	TypeU32
	TypeU64
	TypeString
	TypeNested
	TypeBinary
)

// Device identifies an RDMA device as reported on RDMA_NLDEV_CMD_GET.
type Device struct {
	Index uint32
	Name  string
}
