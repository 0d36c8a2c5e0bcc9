package natsadapter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samirrijal/geocoin/internal/core/domain"
)

const (
	sessionStream   = "GEOCOIN_SESSIONS"
	positionStream  = "GEOCOIN_POSITIONS"
	sessionSubjects = "geocoin.session.>"
	positionPrefix  = "geocoin.position."
)

// token encodes s as a single subject token. Bytes outside [A-Za-z0-9-]
// become "_XX" (upper-case hex), so distinct ids never share a token and
// untoken recovers the id exactly.
func token(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if c := s[i]; isTokenChar(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "_%02X", c)
		}
	}
	return b.String()
}

// untoken reverses token. ok is false for anything token cannot produce.
func untoken(t string) (string, bool) {
	var b strings.Builder
	b.Grow(len(t))
	for i := 0; i < len(t); i++ {
		c := t[i]
		if c != '_' {
			if !isTokenChar(c) {
				return "", false
			}
			b.WriteByte(c)
			continue
		}
		if i+2 >= len(t) {
			return "", false
		}
		v, err := strconv.ParseUint(t[i+1:i+3], 16, 8)
		if err != nil || isTokenChar(byte(v)) || t[i+1:i+3] != strings.ToUpper(t[i+1:i+3]) {
			return "", false
		}
		b.WriteByte(byte(v))
		i += 2
	}
	return b.String(), true
}

func isTokenChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-'
}

// SessionSubject is the subject a session event is published on.
func SessionSubject(sessionID string, kind domain.EventKind) string {
	return "geocoin.session." + token(sessionID) + "." + string(kind)
}

// SessionWildcard matches every event of one session.
func SessionWildcard(sessionID string) string {
	return "geocoin.session." + token(sessionID) + ".>"
}

// PositionSubject is the subject position fixes for a session arrive on.
func PositionSubject(sessionID string) string {
	return positionPrefix + token(sessionID)
}

// sessionFromPositionSubject extracts the session id from a position subject.
func sessionFromPositionSubject(subject string) (string, bool) {
	tok, ok := strings.CutPrefix(subject, positionPrefix)
	if !ok || tok == "" || strings.Contains(tok, ".") {
		return "", false
	}
	return untoken(tok)
}
