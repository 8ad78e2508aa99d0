// Package netx answers questions about the host's network.
package netx

import "net"

// Iface is the part of a network interface HasNetwork looks at.
type Iface struct {
	Name  string
	Flags net.Flags
	Addrs []net.Addr
}

// ListFunc enumerates interfaces. SystemInterfaces is the real one.
type ListFunc func() ([]Iface, error)

// SystemInterfaces lists the host interfaces with their addresses.
// Interfaces whose addresses cannot be read are reported without them.
func SystemInterfaces() ([]Iface, error) {
	ifs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	out := make([]Iface, 0, len(ifs))
	for _, i := range ifs {
		addrs, _ := i.Addrs()
		out = append(out, Iface{Name: i.Name, Flags: i.Flags, Addrs: addrs})
	}
	return out, nil
}

// HasNetwork reports whether at least one non-loopback interface is up and
// carries an address. It says nothing about whether any peer is reachable.
func HasNetwork(list ListFunc) bool {
	if list == nil {
		list = SystemInterfaces
	}
	ifs, err := list()
	if err != nil {
		return false
	}
	for _, i := range ifs {
		if i.Flags&net.FlagUp == 0 || i.Flags&net.FlagLoopback != 0 {
			continue
		}
		if len(i.Addrs) > 0 {
			return true
		}
	}
	return false
}
