package handler

import (
	"net/mail"
	"strings"
)

// isValidEmail reports whether addr is a syntactically valid bare email
// address. Display names, comments, and dotless domains are rejected.
func isValidEmail(addr string) bool {
	if addr == "" || strings.ContainsAny(addr, " \t") {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return false
	}
	at := strings.LastIndex(parsed.Address, "@")
	domain := parsed.Address[at+1:]
	if !strings.Contains(domain, ".") {
		return false
	}
	return !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
