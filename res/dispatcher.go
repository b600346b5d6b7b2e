package res

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fatih/structs"

	"github.com/scitags/rdma-res-go/filter"
	"github.com/scitags/rdma-res-go/netlink"
	"github.com/scitags/rdma-res-go/types"
)

// ErrEnvelope flags a reply lacking the device identity or the resource list.
var ErrEnvelope = errors.New("invalid resource envelope")

// Reasons an entry can be skipped for.
const (
	SkipMissing  = "missing"
	SkipAddress  = "address"
	SkipPort     = "port"
	SkipFiltered = "filtered"
)

// Sink receives every accepted record. Records aren't retained after the
// call returns.
type Sink interface {
	Render(*types.Record) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(*types.Record) error

func (f SinkFunc) Render(r *types.Record) error {
	return f(r)
}

// Stats keeps track of what happened to the entries of a query.
type Stats struct {
	Kind     string            `structs:"kind"`
	Messages uint64            `structs:"messages"`
	Entries  uint64            `structs:"entries"`
	Rendered uint64            `structs:"rendered"`
	Skipped  map[string]uint64 `structs:"skipped"`
}

// MarshalJSON implements the json.Marshaler interface with the help of
// structs so that the field names are controlled by the struct tags.
func (s Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(structs.New(s).Map())
}

// Dispatcher walks the replies to a resource dump for a single kind. It
// validates every reply's envelope and then decodes, filters and hands over
// each entry to the sink. It's not safe for concurrent use.
type Dispatcher struct {
	schema  *Schema
	filters filter.Set
	port    uint32
	sink    Sink

	stats Stats
}

// NewDispatcher builds a dispatcher for schema. A port of 0 accepts entries
// on every port.
func NewDispatcher(schema *Schema, filters filter.Set, port uint32, sink Sink) *Dispatcher {
	return &Dispatcher{
		schema:  schema,
		filters: filters,
		port:    port,
		sink:    sink,
		stats:   Stats{Kind: schema.Kind.String(), Skipped: map[string]uint64{}},
	}
}

// Stats returns a snapshot of the counters.
func (d *Dispatcher) Stats() Stats {
	s := d.stats
	s.Skipped = make(map[string]uint64, len(d.stats.Skipped))
	for reason, n := range d.stats.Skipped {
		s.Skipped[reason] = n
	}
	return s
}

// Dispatch processes the payload of a single reply. It returns the first
// fatal error found: an invalid envelope (ErrEnvelope), a structurally
// invalid attribute stream (netlink.ErrMalformed) or a sink failure. Records
// handed to the sink before the error are not taken back.
func (d *Dispatcher) Dispatch(msg []byte) error {
	d.stats.Messages++

	t, err := netlink.Decode(msg)
	if err != nil {
		return fmt.Errorf("couldn't decode %s reply: %w", d.schema.Kind, err)
	}

	idx, hasIdx := t.Uint32(netlink.RDMA_NLDEV_ATTR_DEV_INDEX)
	name, hasName := t.String(netlink.RDMA_NLDEV_ATTR_DEV_NAME)
	if !hasIdx || !hasName || !t.Has(d.schema.List) {
		return fmt.Errorf("%w: %s reply lacks the device identity or %s",
			ErrEnvelope, d.schema.Kind, d.schema.List)
	}
	dev := netlink.Device{Index: idx, Name: name}

	return t.Nested(d.schema.List, func(entry *netlink.Table) error {
		return d.entry(dev, entry)
	})
}

func (d *Dispatcher) entry(dev netlink.Device, t *netlink.Table) error {
	d.stats.Entries++

	if err := d.schema.ValidateRequired(t); err != nil {
		d.skip(SkipMissing, dev, err)
		return nil
	}

	if port, ok := t.Uint32(netlink.RDMA_NLDEV_ATTR_PORT_INDEX); ok && port != 0 && d.port != 0 && port != d.port {
		d.skip(SkipPort, dev, fmt.Errorf("port %d", port))
		return nil
	}

	rec, err := d.schema.Extract(t, dev)
	if err != nil {
		if errors.Is(err, netlink.ErrAddrFamily) {
			d.skip(SkipAddress, dev, err)
			return nil
		}
		return fmt.Errorf("couldn't extract %s entry: %w", d.schema.Kind, err)
	}

	if !d.filters.Accept(rec) {
		d.skip(SkipFiltered, dev, nil)
		return nil
	}

	if err := d.sink.Render(rec); err != nil {
		return fmt.Errorf("couldn't render %s entry: %w", d.schema.Kind, err)
	}
	d.stats.Rendered++

	return nil
}

func (d *Dispatcher) skip(reason string, dev netlink.Device, err error) {
	d.stats.Skipped[reason]++
	slog.Debug("skipping entry", "kind", d.schema.Kind, "dev", dev.Name, "reason", reason, "err", err)
}
