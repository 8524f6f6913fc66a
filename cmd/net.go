package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// guessIpAddress takes a base IP address and a partial address string,
// and fills in the missing octets from the base address.
func guessIpAddress(baseAddress net.IP, partialAddr string) (net.IP, error) {
	ip := make(net.IP, len(baseAddress))
	copy(ip, baseAddress)
	octets := strings.Split(partialAddr, ".")
	if len(octets) == 1 && octets[0] == "" {
		return ip, nil
	}
	if len(octets) > len(ip) {
		return net.IP{}, fmt.Errorf("too many octets in %q", partialAddr)
	}
	for i := 0; i < len(octets); i++ {
		var octet byte
		_, err := fmt.Sscanf(octets[i], "%d", &octet)
		if err != nil {
			return net.IP{}, err
		}
		ip[len(ip)-len(octets)+i] = octet
	}
	return ip, nil
}

// subnetOfListener returns the IP network (CIDR) of the interface that contains
// the local address used by the provided TCP listener.
func subnetOfListener(l *net.TCPListener) (net.IPNet, error) {
	tcpAddr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		return net.IPNet{}, fmt.Errorf("listener is not TCP")
	}
	ip := tcpAddr.IP
	if ip == nil || ip.IsUnspecified() {
		return net.IPNet{}, fmt.Errorf("listener has unspecified IP %v", ip)
	}

	ifaces, err := net.Interfaces()
	if err != nil {
		return net.IPNet{}, err
	}
	for _, ifi := range ifaces {
		addrs, _ := ifi.Addrs()
		for _, a := range addrs {
			var ipnet *net.IPNet
			switch v := a.(type) {
			case *net.IPNet:
				ipnet = v
			case *net.IPAddr:
				ipnet = &net.IPNet{IP: v.IP, Mask: v.IP.DefaultMask()}
			default:
				continue
			}
			if ipnet == nil {
				continue
			}
			if ipnet.Contains(ip) || ipnet.IP.Equal(ip) {
				return *ipnet, nil
			}
		}
	}
	return net.IPNet{}, fmt.Errorf("no interface found for ip %v", ip)
}

// splitHostPort splits an address into host and port, using defaultPort if no port is specified.
func splitHostPort(addr string, defaultPort int) (string, string, error) {
	ipaddr, port, err := net.SplitHostPort(addr)
	if err != nil {
		addr = addr + ":" + strconv.Itoa(defaultPort)
		ipaddr, port, err = net.SplitHostPort(addr)
		if err != nil {
			return "", "", err
		}
	}
	return ipaddr, port, nil
}

// parsePeers reads id=address pairs. Several pairs may share one value
// separated by commas.
func parsePeers(values []string) (map[string]string, error) {
	peers := make(map[string]string)
	for _, value := range values {
		for _, pair := range strings.Split(value, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			id, addr, ok := strings.Cut(pair, "=")
			if !ok || id == "" || addr == "" {
				return nil, fmt.Errorf("invalid peer %q (expected id=host:port)", pair)
			}
			if _, dup := peers[id]; dup {
				return nil, fmt.Errorf("peer %q given twice", id)
			}
			peers[id] = addr
		}
	}
	return peers, nil
}

// resolvePeer completes a peer address relative to the local one: a missing
// port defaults to the local port and a partial host is filled in from the
// local IP, so "42" on 192.168.0.1:7000 becomes 192.168.0.42:7000.
func resolvePeer(local *net.TCPAddr, addr string) (string, error) {
	host, port, err := splitHostPort(addr, local.Port)
	if err != nil {
		return "", err
	}
	if host == "localhost" || net.ParseIP(host) != nil {
		return net.JoinHostPort(host, port), nil
	}
	base := local.IP.To4()
	if base == nil {
		return net.JoinHostPort(host, port), nil
	}
	ip, err := guessIpAddress(base, host)
	if err != nil {
		// not a partial address, a host name then
		return net.JoinHostPort(host, port), nil
	}
	return net.JoinHostPort(ip.String(), port), nil
}

func parsePortRange(s string) (uint16, uint16, error) {
	from, to, ok := strings.Cut(s, "-")
	if !ok {
		to = from
	}
	start, err := strconv.ParseUint(from, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port range %q: %w", s, err)
	}
	end, err := strconv.ParseUint(to, 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid port range %q: %w", s, err)
	}
	if start < 1 || start > end {
		return 0, 0, fmt.Errorf("invalid port range %q", s)
	}
	return uint16(start), uint16(end), nil
}
