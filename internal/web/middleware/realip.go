package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"github.com/JonMunkholm/FinSummary/internal/core"
)

// ClientIP resolves the client address and stores it in the request context.
// X-Real-IP and X-Forwarded-For are honoured only when the connection comes
// from one of the trusted proxy prefixes; otherwise RemoteAddr stands. The
// resolved address replaces RemoteAddr so per-IP rate limiting keys on it.
func ClientIP(trustedProxies []string) func(http.Handler) http.Handler {
	trusted := parsePrefixes(trustedProxies)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			remote, ok := parseAddr(r.RemoteAddr)

			if ok && isTrusted(remote, trusted) {
				if fwd, found := forwardedIP(r); found {
					r.RemoteAddr = fwd.String()
					remote = fwd
				}
			}

			if ok {
				ctx := core.ContextWithIPAddress(r.Context(), remote.String())
				r = r.WithContext(ctx)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forwardedIP returns X-Real-IP, or the first X-Forwarded-For hop, when valid.
func forwardedIP(r *http.Request) (netip.Addr, bool) {
	if rip := strings.TrimSpace(r.Header.Get("X-Real-IP")); rip != "" {
		addr, err := netip.ParseAddr(rip)
		return addr.Unmap(), err == nil
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		addr, err := netip.ParseAddr(strings.TrimSpace(first))
		return addr.Unmap(), err == nil
	}
	return netip.Addr{}, false
}

func parsePrefixes(cidrs []string) []netip.Prefix {
	var out []netip.Prefix
	for _, cidr := range cidrs {
		cidr = strings.TrimSpace(cidr)
		if cidr == "" {
			continue
		}
		if p, err := netip.ParsePrefix(cidr); err == nil {
			out = append(out, p.Masked())
			continue
		}
		if a, err := netip.ParseAddr(cidr); err == nil {
			out = append(out, netip.PrefixFrom(a.Unmap(), a.Unmap().BitLen()))
			continue
		}
		slog.Warn("client ip: invalid trusted proxy, skipping", "cidr", cidr)
	}
	return out
}

// parseAddr accepts host:port or a bare IP.
func parseAddr(addr string) (netip.Addr, bool) {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	a, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return a.Unmap(), true
}

func isTrusted(ip netip.Addr, trusted []netip.Prefix) bool {
	for _, p := range trusted {
		if p.Contains(ip) {
			return true
		}
	}
	return false
}
