package res

import (
	"errors"
	"fmt"
	"log/slog"
	"net/netip"

	"github.com/scitags/rdma-res-go/netlink"
	"github.com/scitags/rdma-res-go/types"
)

var (
	// ErrMissing flags an entry lacking a required attribute. The entry is
	// skipped but the dump goes on.
	ErrMissing = errors.New("missing required attribute")

	// ErrUnknownKind is returned when asking for a schema we don't have.
	ErrUnknownKind = errors.New("unknown resource kind")
)

// fieldSpec describes how to pull a single field off an entry.
type fieldSpec struct {
	name   string
	id     netlink.AttrID
	kind   types.ValueKind
	format types.Format

	// derive turns numeric codes into display strings for Derived fields.
	derive func(uint64) string

	// optional fields don't take part in filtering when absent.
	optional bool
}

func (f fieldSpec) extract(t *netlink.Table) types.Field {
	field := types.Field{Name: f.name, Kind: f.kind, Format: f.format, Optional: f.optional}

	switch f.kind {
	case types.Text:
		field.Value.Str, field.Present = t.String(f.id)
	case types.Derived:
		var code uint64
		if code, field.Present = t.Uint(f.id); field.Present {
			field.Value.Str = f.derive(code)
		}
	default:
		field.Value.Num, field.Present = t.Uint(f.id)
	}

	return field
}

type addrSpec struct {
	name string
	id   netlink.AttrID
}

// Schema describes a resource kind: how to ask the kernel for it, what an
// entry must carry and how to turn it into a record. Schemas are immutable.
type Schema struct {
	Kind    types.Kind
	Command netlink.Command

	// List is the nested attribute carrying the entries.
	List netlink.AttrID

	// Required attributes must all be present on every entry.
	Required []netlink.AttrID

	// Owner requires at least one of a pid or a kernel name.
	Owner bool

	// Link kinds are identified by device and port rather than device alone.
	Link bool

	// Filterable fields and how they're compared.
	Filterable map[string]types.ValueKind

	fields []fieldSpec
	addrs  []addrSpec
}

// ValidateRequired checks an entry carries every required attribute.
func (s *Schema) ValidateRequired(t *netlink.Table) error {
	for _, id := range s.Required {
		if !t.Has(id) {
			return fmt.Errorf("%w: %s", ErrMissing, id)
		}
	}

	if s.Owner && !t.Has(netlink.RDMA_NLDEV_ATTR_RES_PID) && !t.Has(netlink.RDMA_NLDEV_ATTR_RES_KERN_NAME) {
		return fmt.Errorf("%w: neither %s nor %s", ErrMissing,
			netlink.RDMA_NLDEV_ATTR_RES_PID, netlink.RDMA_NLDEV_ATTR_RES_KERN_NAME)
	}

	return nil
}

// Extract builds the record for an entry of device dev. Absent optional
// attributes keep their defaults. Addresses we can't decode yield an error
// wrapping netlink.ErrAddrFamily, a malformed driver table one wrapping
// netlink.ErrMalformed.
func (s *Schema) Extract(t *netlink.Table, dev netlink.Device) (*types.Record, error) {
	r := &types.Record{
		Kind:     s.Kind,
		DevIndex: dev.Index,
		DevName:  dev.Name,
		Link:     s.Link,
		Fields:   make([]types.Field, 0, len(s.fields)),
	}

	if s.Link {
		r.Port, r.HasPort = t.Uint32(netlink.RDMA_NLDEV_ATTR_PORT_INDEX)
	}

	for _, f := range s.fields {
		r.Fields = append(r.Fields, f.extract(t))
	}

	r.Owner = owner(t)

	for _, a := range s.addrs {
		b, ok := t.Bytes(a.id)
		if !ok {
			r.Trailer = append(r.Trailer, types.Address(a.name, netip.AddrPort{}, false)...)
			continue
		}

		addr, port, err := netlink.DecodeSockaddr(b)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", a.name, err)
		}
		r.Trailer = append(r.Trailer, types.Address(a.name, netip.AddrPortFrom(addr, port), true)...)
	}

	if b, ok := t.Bytes(netlink.RDMA_NLDEV_ATTR_DRIVER); ok {
		driver, err := netlink.DecodeDriver(b)
		if err != nil {
			return nil, err
		}
		r.Driver = driver
	}

	return r, nil
}

// owner prefers the pid when an entry carries both a pid and a kernel name.
func owner(t *netlink.Table) types.Owner {
	pid, hasPID := t.Uint32(netlink.RDMA_NLDEV_ATTR_RES_PID)
	name, hasName := t.String(netlink.RDMA_NLDEV_ATTR_RES_KERN_NAME)

	switch {
	case hasPID && hasName:
		slog.Debug("entry carries both a pid and a kernel name, keeping the pid", "pid", pid, "name", name)
		return types.Process{PID: pid}
	case hasPID:
		return types.Process{PID: pid}
	case hasName:
		return types.Kernel{Name: name}
	}
	return nil
}

var registry = map[types.Kind]*Schema{}

func register(s *Schema) {
	registry[s.Kind] = s
}

// Lookup returns the schema for kind.
func Lookup(kind types.Kind) (*Schema, error) {
	s, ok := registry[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, kind)
	}
	return s, nil
}

// common fields

func num(name string, id netlink.AttrID) fieldSpec {
	return fieldSpec{name: name, id: id, kind: types.Numeric, format: types.Decimal}
}

func key(name string, id netlink.AttrID) fieldSpec {
	return fieldSpec{name: name, id: id, kind: types.Numeric, format: types.Hex}
}

func derived(name string, id netlink.AttrID, derive func(uint64) string) fieldSpec {
	return fieldSpec{name: name, id: id, kind: types.Derived, format: types.String, derive: derive}
}

// optional marks f as filtered on only when the entry carries it. Other
// absent fields are compared as their defaults.
func optional(f fieldSpec) fieldSpec {
	f.optional = true
	return f
}
