package widget

import "regexp"

// Session holds the two pieces of widget-wide state. The token is the opaque
// session identifier handed back by the server; empty means "no token yet"
// and serializes as null on the wire.
type Session struct {
	Email string
	Token string
}

// Reset clears both fields, returning the widget to the entry state.
func (s *Session) Reset() {
	s.Email = ""
	s.Token = ""
}

// Same shape the browser widget checked: local@domain.tld, no whitespace.
var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s is a syntactically plausible email address.
func ValidEmail(s string) bool {
	return emailRe.MatchString(s)
}
