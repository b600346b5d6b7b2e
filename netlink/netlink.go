//go:build linux

package netlink

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mdlayher/netlink"
	"golang.org/x/sys/unix"

	"github.com/scitags/rdma-res-go/types"
)

// Conn is a connection to the kernel's RDMA netlink interface. It's not safe
// for concurrent use: callers sharing a Conn must serialise the requests.
type Conn struct {
	c *netlink.Conn
}

// Dial opens a NETLINK_RDMA socket. Be sure to Close the returned connection
// to avoid leaking fds.
func Dial() (*Conn, error) {
	c, err := netlink.Dial(unix.NETLINK_RDMA, nil)
	if err != nil {
		return nil, fmt.Errorf("couldn't open a NETLINK_RDMA socket: %w", err)
	}

	// Extended acknowledgements give us richer error messages and are supported
	// since 4.12. Older kernels simply return unix.ENOPROTOOPT.
	if err := c.SetOption(netlink.ExtendedAcknowledge, true); err != nil {
		slog.Debug("couldn't set option ExtendedAcknowledge", "err", err)
	}

	return &Conn{c: c}, nil
}

func (c *Conn) Close() error {
	return c.c.Close()
}

// Devices dumps the RDMA devices known to the kernel with RDMA_NLDEV_CMD_GET.
func (c *Conn) Devices() ([]Device, error) {
	msgs, err := c.execute(RDMA_NLDEV_CMD_GET, nil)
	if err != nil {
		return nil, err
	}

	devs := make([]Device, 0, len(msgs))
	for _, msg := range msgs {
		t, err := Decode(msg)
		if err != nil {
			return nil, fmt.Errorf("couldn't decode device: %w", err)
		}

		idx, ok := t.Uint32(RDMA_NLDEV_ATTR_DEV_INDEX)
		if !ok {
			slog.Warn("device reported without an index, skipping it")
			continue
		}
		name, _ := t.String(RDMA_NLDEV_ATTR_DEV_NAME)

		devs = append(devs, Device{Index: idx, Name: name})
	}

	slog.Debug("dumped rdma devices", "n", len(devs))
	return devs, nil
}

// Dump issues a resource dump request for device devIndex. A port of 0
// implies no port was specified. The payloads of every message in the reply
// are returned in the order they were received.
func (c *Conn) Dump(cmd Command, devIndex, port uint32) ([][]byte, error) {
	ae := netlink.NewAttributeEncoder()
	ae.Uint32(uint16(RDMA_NLDEV_ATTR_DEV_INDEX), devIndex)
	if port != 0 {
		ae.Uint32(uint16(RDMA_NLDEV_ATTR_PORT_INDEX), port)
	}

	data, err := ae.Encode()
	if err != nil {
		return nil, fmt.Errorf("couldn't encode dump request: %w", err)
	}

	return c.execute(cmd, data)
}

func (c *Conn) execute(cmd Command, data []byte) ([][]byte, error) {
	req := netlink.Message{
		Header: netlink.Header{
			Type:  netlink.HeaderType(cmd.MsgType()),
			Flags: netlink.Request | netlink.Dump,
		},
		Data: data,
	}

	msgs, err := c.c.Execute(req)
	if err != nil {
		return nil, fmt.Errorf("netlink request %d failed: %w", cmd, err)
	}

	out := make([][]byte, 0, len(msgs))
	for _, msg := range msgs {
		out = append(out, msg.Data)
	}

	slog.Log(context.Background(), types.LevelTrace, "netlink reply", "cmd", cmd, "messages", len(out))
	return out, nil
}
