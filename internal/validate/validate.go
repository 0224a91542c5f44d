package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reQ     = regexp.MustCompile(`^[\p{L}0-9 _'&.\-]{1,50}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Q validates a search query: trims, enforces allowed characters and max length
func Q(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if len(s) > 50 {
		s = s[:50]
	}
	return s, reQ.MatchString(s)
}

// ID validates a simple resource identifier (product/contact ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

// Password enforces the bcrypt-safe length window.
func Password(s string) bool {
	return len(s) >= 8 && len(s) <= 72
}

// Page parses a positive integer, falling back to def for anything else.
func Page(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func Rating(n int) bool { return n >= 1 && n <= 5 }
