package ipcheck

import (
	"regexp"
)

// The accepted grammar is deliberately narrower than net.ParseIP (and
// validator's "ip" tag): IPv6 must be written as all eight groups, so
// zero-compressed forms like "::1" are rejected.
var (
	ipv4Pattern = regexp.MustCompile(`^(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)$`)
	ipv6Pattern = regexp.MustCompile(`^(?:[0-9a-fA-F]{1,4}:){7}[0-9a-fA-F]{1,4}$`)
)

// Valid reports whether candidate is a strict dotted-quad IPv4 address
// (each octet 0-255) or a full 8-group colon-separated IPv6 address.
// Pure predicate, no side effects.
func Valid(candidate string) bool {
	return ipv4Pattern.MatchString(candidate) || ipv6Pattern.MatchString(candidate)
}

// Invalid returns the members of ips that fail Valid, preserving input
// order. An empty slice means every member is valid.
func Invalid(ips []string) []string {
	var bad []string
	for _, ip := range ips {
		if !Valid(ip) {
			bad = append(bad, ip)
		}
	}
	return bad
}
