package utils

import (
	"net"
	"strings"
)

// reserved labels never resolve to a tenant. Requests arriving on these
// hosts are treated as main-domain traffic.
var reservedLabels = map[string]bool{
	"www":       true,
	"localhost": true,
}

// Slugify normalizes a raw name into a subdomain label: lowercased, every
// run of characters outside [a-z0-9-] replaced with a single hyphen, and
// leading/trailing hyphens trimmed. The transformation is deterministic so
// a tenant always lands on the same label. Returns "" when nothing
// survives the stripping.
func Slugify(raw string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(raw) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// SubdomainFromHost extracts the tenant-candidate label from a request's
// Host header. Ports are stripped first. When the host sits under the
// configured base domain the apex is cut off and the leftmost remaining
// label is the tenant; the bare apex itself carries no tenant. Hosts
// outside the base domain (local dev setups like "pizza.localhost") fall
// back to taking the leftmost label. Bare IPs, single-label hosts and
// reserved labels ("www", "localhost") yield "" meaning main-domain, no
// tenant.
func SubdomainFromHost(host, baseDomain string) string {
	h := host
	if i := strings.LastIndex(h, ":"); i >= 0 && strings.Count(h, ":") == 1 {
		h = h[:i]
	}
	h = strings.Trim(h, "[]") // bracketed IPv6 literals
	if net.ParseIP(h) != nil {
		return ""
	}
	h = strings.ToLower(h)

	if bd := strings.ToLower(strings.TrimSpace(baseDomain)); bd != "" {
		if h == bd {
			return ""
		}
		if rest, ok := strings.CutSuffix(h, "."+bd); ok {
			first := strings.Split(rest, ".")[0]
			if first == "" || reservedLabels[first] {
				return ""
			}
			return first
		}
	}

	labels := strings.Split(h, ".")
	if len(labels) < 2 {
		return ""
	}
	first := labels[0]
	if reservedLabels[first] {
		return ""
	}
	return first
}
