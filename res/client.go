package res

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/scitags/rdma-res-go/filter"
	"github.com/scitags/rdma-res-go/netlink"
	"github.com/scitags/rdma-res-go/types"
)

// ErrNoDevice is returned when the queried device doesn't exist.
var ErrNoDevice = errors.New("no such device")

// Transport talks to the kernel. It's implemented by *netlink.Conn.
type Transport interface {
	Devices() ([]netlink.Device, error)
	Dump(cmd netlink.Command, devIndex, port uint32) ([][]byte, error)
}

// Query selects the resources to show.
type Query struct {
	Kind types.Kind

	// Device restricts the query to a single device when not empty.
	Device string

	// Port restricts link kinds (cm_id, qp) to a single port when not 0.
	Port uint32

	Filters []filter.Pair
}

type Client struct {
	t Transport
}

func NewClient(t Transport) *Client {
	return &Client{t: t}
}

// Show dumps the resources selected by q, handing every accepted record to
// sink. Filters are validated before talking to the kernel at all.
func (c *Client) Show(q Query, sink Sink) (Stats, error) {
	schema, err := Lookup(q.Kind)
	if err != nil {
		return Stats{}, err
	}

	filters, err := filter.Build(schema.Filterable, q.Filters)
	if err != nil {
		return Stats{}, err
	}

	port := q.Port
	if !schema.Link && port != 0 {
		slog.Debug("ignoring the port for a per-device resource", "kind", q.Kind, "port", port)
		port = 0
	}

	devs, err := c.devices(q.Device)
	if err != nil {
		return Stats{}, err
	}

	d := NewDispatcher(schema, filters, port, sink)
	for _, dev := range devs {
		msgs, err := c.t.Dump(schema.Command, dev.Index, port)
		if err != nil {
			return d.Stats(), fmt.Errorf("couldn't dump %s on %s: %w", q.Kind, dev.Name, err)
		}

		for _, msg := range msgs {
			if err := d.Dispatch(msg); err != nil {
				return d.Stats(), err
			}
		}
	}

	stats := d.Stats()
	slog.Debug("finished query", "kind", q.Kind, "devices", len(devs), "rendered", stats.Rendered)
	return stats, nil
}

func (c *Client) devices(name string) ([]netlink.Device, error) {
	devs, err := c.t.Devices()
	if err != nil {
		return nil, fmt.Errorf("couldn't list rdma devices: %w", err)
	}

	if name == "" {
		return devs, nil
	}

	for _, dev := range devs {
		if dev.Name == name {
			return []netlink.Device{dev}, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNoDevice, name)
}
