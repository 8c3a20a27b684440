package query

import (
	"net"
	"strconv"
)

// resolvedAddrs is the address-family-specific result of preflight
// resolution: where to send to, and what (if anything) to bind locally.
type resolvedAddrs struct {
	remote *net.UDPAddr
	local  *net.UDPAddr
}

// resolveUDP implements the preflight address resolution shared by the UDP,
// TCP and TLS transports: match families between destination and an explicit
// source, and synthesize a wildcard source when only a source port was
// given. When where is a hostname rather than a literal address, family
// constrains which resolved address is used.
func resolveUDP(where string, port uint16, source net.IP, sourcePort uint16, family Family) (resolvedAddrs, error) {
	remoteIP := net.ParseIP(where)
	if remoteIP == nil {
		ips, err := net.LookupIP(where)
		if err != nil {
			return resolvedAddrs{}, err
		}
		remoteIP, err = selectByFamily(ips, family)
		if err != nil {
			return resolvedAddrs{}, err
		}
	}
	remote := &net.UDPAddr{IP: remoteIP, Port: int(port)}

	var local *net.UDPAddr
	if source != nil {
		if isIPv4(source) != isIPv4(remoteIP) {
			return resolvedAddrs{}, valueError("source and destination address families do not match")
		}
		local = &net.UDPAddr{IP: source, Port: int(sourcePort)}
	} else if sourcePort != 0 {
		switch {
		case isIPv4(remoteIP):
			local = &net.UDPAddr{IP: net.IPv4zero, Port: int(sourcePort)}
		case remoteIP.To16() != nil:
			local = &net.UDPAddr{IP: net.IPv6zero, Port: int(sourcePort)}
		default:
			return resolvedAddrs{}, valueError("cannot determine the wildcard address family for source_port")
		}
	}

	return resolvedAddrs{remote: remote, local: local}, nil
}

// resolveTCP is resolveUDP's counterpart for stream transports, returning
// net.TCPAddr instead.
func resolveTCP(where string, port uint16, source net.IP, sourcePort uint16, family Family) (*net.TCPAddr, *net.TCPAddr, error) {
	r, err := resolveUDP(where, port, source, sourcePort, family)
	if err != nil {
		return nil, nil, err
	}
	remote := &net.TCPAddr{IP: r.remote.IP, Port: r.remote.Port}
	var local *net.TCPAddr
	if r.local != nil {
		local = &net.TCPAddr{IP: r.local.IP, Port: r.local.Port}
	}
	return remote, local, nil
}

func isIPv4(ip net.IP) bool { return ip.To4() != nil }

// selectByFamily picks the first address in ips matching family, or the
// first address outright when family is FamilyUnspec.
func selectByFamily(ips []net.IP, family Family) (net.IP, error) {
	if family == FamilyUnspec {
		return ips[0], nil
	}
	want4 := family == FamilyINET
	for _, ip := range ips {
		if isIPv4(ip) == want4 {
			return ip, nil
		}
	}
	return nil, valueError("no address of the requested family was found")
}

// networkForFamily narrows a dial network ("tcp", "udp") to its v4/v6
// variant per family, for dialers that resolve addr internally and so
// cannot be steered by selectByFamily.
func networkForFamily(network string, family Family) string {
	switch family {
	case FamilyINET:
		return network + "4"
	case FamilyINET6:
		return network + "6"
	default:
		return network
	}
}

func joinHostPort(host string, port uint16) string {
	return net.JoinHostPort(host, strconv.Itoa(int(port)))
}

// sourceMatches reports whether a UDP reply's observed source address is
// acceptable for the given destination: an exact match, or a port-only
// match when the destination is a multicast address.
func sourceMatches(dest *net.UDPAddr, got *net.UDPAddr) bool {
	if dest.Port != got.Port {
		return false
	}
	if dest.IP.IsMulticast() {
		return true
	}
	return dest.IP.Equal(got.IP)
}
