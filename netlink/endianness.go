package netlink

import (
	ne "github.com/josharian/native"
)

// Ntohs turns a 16-bit value read in host order off network ordered bytes
// into its actual value.
func Ntohs(in uint16) uint16 {
	if !ne.IsBigEndian {
		return uint16((in&0xFF)<<8) | uint16((in>>8)&0xFF)
	}
	return in
}
