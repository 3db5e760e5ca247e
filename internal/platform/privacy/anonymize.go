// Package privacy masks personal data before it reaches logs.
package privacy

import (
	"fmt"
	"net"
	"strings"
)

// AnonymizeIP truncates an address to its network: IPv4 to /24, IPv6 to /48.
// A host:port pair is accepted. Returns "unknown" for empty input and
// "invalid" for anything unparseable.
func AnonymizeIP(addr string) string {
	if addr == "" || addr == "unknown" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}

	parsed := net.ParseIP(addr)
	if parsed == nil {
		return "invalid"
	}
	if v4 := parsed.To4(); v4 != nil {
		return fmt.Sprintf("%d.%d.%d.0", v4[0], v4[1], v4[2])
	}
	return fmt.Sprintf("%02x%02x:%02x%02x:%02x%02x::",
		parsed[0], parsed[1],
		parsed[2], parsed[3],
		parsed[4], parsed[5])
}

// MaskTail keeps the last keep runes of s and replaces the rest with '*'.
func MaskTail(s string, keep int) string {
	runes := []rune(s)
	if keep < 0 {
		keep = 0
	}
	if len(runes) <= keep {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-keep) + string(runes[len(runes)-keep:])
}

// MaskEmail keeps the first rune of the local part and the whole domain.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return MaskTail(email, 0)
	}
	local := []rune(email[:at])
	return string(local[0]) + strings.Repeat("*", len(local)-1) + email[at:]
}
