package ir

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeTitle converts a page title into DB-key form.
//
// The title is NFC-normalized, trimmed, runs of spaces and underscores are
// collapsed into a single underscore and the first letter is upper-cased.
// NormalizeTitle is idempotent.
func NormalizeTitle(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if r == '_' || unicode.IsSpace(r) {
			return ' '
		}
		return r
	}, s)
	s = strings.Join(strings.Fields(s), "_")
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// EncodeURI escapes a wiki name for use as the local part of an IRI.
//
// Spaces become underscores, "-" becomes "-2D" and every byte outside
// [A-Za-z0-9_.] becomes "-XX" with XX its upper-case hex value. The result
// only contains characters that are valid in a prefixed name.
func EncodeURI(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ':
			b.WriteByte('_')
		case isUnreserved(c):
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "-%02X", c)
		}
	}
	return b.String()
}

// DecodeURI reverses EncodeURI. Underscores are kept, since DB keys use them
// in place of spaces.
func DecodeURI(s string) (string, error) {
	if !strings.Contains(s, "-") {
		return s, nil
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '-' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("DecodeURI: truncated escape at offset %d in %q", i, s)
		}
		v, err := strconv.ParseUint(s[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("DecodeURI: invalid escape %q in %q", s[i:i+3], s)
		}
		b.WriteByte(byte(v))
		i += 2
	}
	return b.String(), nil
}

func isUnreserved(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '.'
}
