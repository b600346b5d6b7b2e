//go:build !linux

package netlink

import "errors"

var errUnsupported = errors.New("NETLINK_RDMA is only available on linux")

type Conn struct{}

func Dial() (*Conn, error) {
	return nil, errUnsupported
}

func (c *Conn) Close() error {
	return nil
}

func (c *Conn) Devices() ([]Device, error) {
	return nil, errUnsupported
}

func (c *Conn) Dump(cmd Command, devIndex, port uint32) ([][]byte, error) {
	return nil, errUnsupported
}
