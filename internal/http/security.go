package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// proxyNetworks are the peers whose forwarding headers are believed: the
// loopback and private ranges a local reverse proxy would connect from.
var proxyNetworks = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
	netip.MustParsePrefix("fc00::/7"),
}

func fromProxy(a netip.Addr) bool {
	a = a.Unmap()
	for _, p := range proxyNetworks {
		if p.Contains(a) {
			return true
		}
	}
	return false
}

// clientIP is the address rate limits and request logs are keyed on.
// X-Forwarded-For is walked right to left past our own proxies, so a value
// the client prepended never wins over the hop our proxy recorded.
func clientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil || !fromProxy(addr) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop, err := netip.ParseAddr(strings.TrimSpace(hops[i]))
			if err != nil {
				break
			}
			if i == 0 || !fromProxy(hop) {
				return hop.String()
			}
		}
	}

	if xri, err := netip.ParseAddr(strings.TrimSpace(r.Header.Get("X-Real-IP"))); err == nil {
		return xri.String()
	}
	return addr.String()
}
