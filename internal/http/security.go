package http

import (
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"sync/atomic"
)

// securityMetrics counts limiter rejections and flagged requests.
type securityMetrics struct {
	rateLimitHits      int64
	suspiciousRequests int64
}

// forwarders may set X-Forwarded-For and X-Real-IP: loopback and the
// RFC 1918 ranges.
var forwarders = []netip.Prefix{
	netip.MustParsePrefix("127.0.0.0/8"),
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("::1/128"),
}

func forwardedBy(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range forwarders {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// extractClientIP returns the client address. Forwarding headers count only
// when the peer itself is in forwarders.
func extractClientIP(r *http.Request) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	addr, err := netip.ParseAddr(peer)
	if err != nil || !forwardedBy(addr) {
		return peer
	}

	candidates := []string{r.Header.Get("X-Real-IP")}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		candidates = append([]string{first}, candidates...)
	}
	for _, c := range candidates {
		if ip, err := netip.ParseAddr(strings.TrimSpace(c)); err == nil {
			return ip.String()
		}
	}
	return peer
}

var suspiciousPatterns = []string{
	"../", "..\\", ".env", "wp-admin", "phpmyadmin",
	"admin.php", "config.php", ".git", ".ssh",
	"eval(", "javascript:", "<script", "union select",
	"etc/passwd", "cmd.exe",
}

var suspiciousAgents = []string{"sqlmap", "nmap", "nikto", "gobuster", "dirb"}

// suspiciousReason names the first probe signature r matches, or returns ""
// for ordinary traffic. Flagged requests are counted and logged, not rejected.
func suspiciousReason(r *http.Request, metrics *securityMetrics) string {
	reason := classifyRequest(r)
	if reason != "" && metrics != nil {
		atomic.AddInt64(&metrics.suspiciousRequests, 1)
	}
	return reason
}

func classifyRequest(r *http.Request) string {
	switch r.Method {
	case "TRACE", "TRACK", "DEBUG", "CONNECT":
		return "method " + r.Method
	}
	if len(r.URL.String()) > 2048 {
		return "oversized url"
	}

	path := strings.ToLower(r.URL.Path)
	query := r.URL.RawQuery
	if unescaped, err := url.QueryUnescape(query); err == nil {
		query = unescaped
	}
	query = strings.ToLower(query)
	for _, pattern := range suspiciousPatterns {
		if strings.Contains(path, pattern) {
			return "path " + pattern
		}
		if strings.Contains(query, pattern) {
			return "query " + pattern
		}
	}

	userAgent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, agent := range suspiciousAgents {
		if strings.Contains(userAgent, agent) {
			return "agent " + agent
		}
	}
	return ""
}
