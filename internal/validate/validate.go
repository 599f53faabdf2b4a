package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	reDigit = regexp.MustCompile(`[0-9]`)
	// any printable ASCII that is not a letter, digit or space
	reSymbol = regexp.MustCompile("[!-/:-@\\[-`{-~]")
)

const (
	MinPasswordLen = 8
	MaxTitleLen    = 50
	MaxDescLen     = 500
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Password requires at least MinPasswordLen characters with one digit and one symbol.
func Password(s string) bool {
	if utf8.RuneCountInString(s) < MinPasswordLen {
		return false
	}
	return reDigit.MatchString(s) && reSymbol.MatchString(s)
}

// ID validates a resource identifier taken from a path.
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Title trims s and checks it is present and at most MaxTitleLen characters.
func Title(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > MaxTitleLen {
		return "", false
	}
	return s, true
}

func Description(s string) bool { return utf8.RuneCountInString(s) <= MaxDescLen }
