// Package email normalizes member contact addresses and derives the name parts
// external identity directories expect.
package email

import (
	"net/mail"
	"strings"
	"unicode"
)

const maxAddressLength = 254

// Normalize trims and lower-cases addr and reports whether it is a bare,
// well-formed address (no display name, domain with at least one dot).
func Normalize(addr string) (string, bool) {
	addr = strings.ToLower(strings.TrimSpace(addr))
	if addr == "" || len(addr) > maxAddressLength {
		return "", false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return "", false
	}
	at := strings.LastIndexByte(addr, '@')
	if at <= 0 {
		return "", false
	}
	domain := addr[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", false
	}
	return addr, true
}

// SplitFullName splits a display name into given and family parts. Single-word
// names repeat the word as family name, since directories require both.
func SplitFullName(fullName string) (given, family string) {
	parts := strings.Fields(fullName)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return capitalize(parts[0]), capitalize(parts[0])
	default:
		return capitalize(strings.Join(parts[:len(parts)-1], " ")), capitalize(parts[len(parts)-1])
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
