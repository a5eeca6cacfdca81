// SPDX-License-Identifier: EPL-2.0

package control

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"

	"golang.org/x/net/ipv4"
)

var ErrNoIPv4 = errors.New("no usable IPv4 address")

// Multicast describes the control group.
type Multicast struct {
	Group string
	Port  int
	// Bind is the optional local host:port senders send from.
	Bind      string
	Interface string
	TTL       int
	Loopback  bool
}

func (m Multicast) iface() (*net.Interface, error) {
	if m.Interface == "" {
		return nil, nil
	}
	ifi, err := net.InterfaceByName(m.Interface)
	if err != nil {
		return nil, fmt.Errorf("interface %s: %w", m.Interface, err)
	}

	return ifi, nil
}

// OpenMulticastSender dials the group and applies TTL, interface and
// loopback settings.
func OpenMulticastSender(m Multicast) (*net.UDPConn, error) {
	group := &net.UDPAddr{IP: net.ParseIP(m.Group), Port: m.Port}

	var local *net.UDPAddr
	if m.Bind != "" {
		var err error
		local, err = net.ResolveUDPAddr("udp4", m.Bind)
		if err != nil {
			return nil, fmt.Errorf("bind address %s: %w", m.Bind, err)
		}
	}

	conn, err := net.DialUDP("udp4", local, group)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", group, err)
	}

	pc := ipv4.NewPacketConn(conn)
	ttl := m.TTL
	if ttl <= 0 {
		ttl = 1
	}
	if err := pc.SetMulticastTTL(ttl); err != nil {
		conn.Close()
		return nil, fmt.Errorf("multicast ttl: %w", err)
	}
	if err := pc.SetMulticastLoopback(m.Loopback); err != nil {
		conn.Close()
		return nil, fmt.Errorf("multicast loopback: %w", err)
	}

	ifi, err := m.iface()
	if err != nil {
		conn.Close()
		return nil, err
	}
	if ifi != nil {
		if err := pc.SetMulticastInterface(ifi); err != nil {
			conn.Close()
			return nil, fmt.Errorf("multicast interface: %w", err)
		}
	}

	return conn, nil
}

// MulticastDialer adapts OpenMulticastSender to a Sender Dialer.
func MulticastDialer(m Multicast) Dialer {
	return func() (io.WriteCloser, error) {
		conn, err := OpenMulticastSender(m)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// ListenMulticast binds the group port and joins the group.
func ListenMulticast(m Multicast) (net.PacketConn, error) {
	conn, err := net.ListenPacket("udp4", fmt.Sprintf("0.0.0.0:%d", m.Port))
	if err != nil {
		return nil, fmt.Errorf("listen :%d: %w", m.Port, err)
	}

	ifi, err := m.iface()
	if err != nil {
		conn.Close()
		return nil, err
	}

	pc := ipv4.NewPacketConn(conn)
	if err := pc.JoinGroup(ifi, &net.UDPAddr{IP: net.ParseIP(m.Group)}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("join %s: %w", m.Group, err)
	}

	return conn, nil
}

// LocalIPv4 returns the first non-loopback IPv4 address, preferring the
// named interface when one is given.
func LocalIPv4(iface string) (netip.Addr, error) {
	var addrs []net.Addr
	var err error
	if iface != "" {
		var ifi *net.Interface
		ifi, err = net.InterfaceByName(iface)
		if err != nil {
			return netip.Addr{}, fmt.Errorf("interface %s: %w", iface, err)
		}
		addrs, err = ifi.Addrs()
	} else {
		addrs, err = net.InterfaceAddrs()
	}
	if err != nil {
		return netip.Addr{}, fmt.Errorf("interface addresses: %w", err)
	}

	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		addr, ok := netip.AddrFromSlice(ipnet.IP)
		if !ok {
			continue
		}
		addr = addr.Unmap()
		if addr.Is4() && !addr.IsLoopback() {
			return addr, nil
		}
	}

	return netip.Addr{}, ErrNoIPv4
}
