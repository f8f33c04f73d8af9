package ratelimit

import (
	"net/http"
	"net/netip"
	"strings"
)

// GetClientIP returns the address a vote is attributed to. Behind a trusted
// proxy the rightmost public X-Forwarded-For hop wins, then X-Real-IP.
// Without one, only RemoteAddr is used.
func GetClientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			hops := strings.Split(xff, ",")
			for i := len(hops) - 1; i >= 0; i-- {
				hop := strings.TrimSpace(hops[i])
				if hop != "" && !isPrivateIP(hop) {
					return hop
				}
			}
			return strings.TrimSpace(hops[len(hops)-1])
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}
	return remoteIP(r.RemoteAddr)
}

func remoteIP(remoteAddr string) string {
	if ap, err := netip.ParseAddrPort(remoteAddr); err == nil {
		return ap.Addr().Unmap().String()
	}
	if addr, err := netip.ParseAddr(remoteAddr); err == nil {
		return addr.String()
	}
	if host, _, ok := cutLast(remoteAddr, ":"); ok {
		if addr, err := netip.ParseAddr(host); err == nil {
			return addr.String()
		}
	}
	return remoteAddr
}

func cutLast(s, sep string) (before, after string, found bool) {
	if i := strings.LastIndex(s, sep); i >= 0 {
		return s[:i], s[i+len(sep):], true
	}
	return s, "", false
}

// isPrivateIP reports loopback, link-local and RFC 1918 / ULA addresses,
// including their IPv4-mapped forms.
func isPrivateIP(ipStr string) bool {
	addr, err := netip.ParseAddr(ipStr)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast()
}
