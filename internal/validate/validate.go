package validate

import (
	"regexp"
	"strings"
	"time"
)

var (
	reEmail  = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID     = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	rePhone  = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	rePostal = regexp.MustCompile(`^[0-9]{5}$`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Name validates a displayable name with a reasonable max length.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 100 {
		return "", false
	}
	return s, true
}

// ID validates a simple resource identifier (book/category/order ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Qty clamps a quantity into [1,50].
func Qty(n int) int {
	if n < 1 {
		return 1
	}
	if n > 50 {
		return 50
	}
	return n
}

// Password enforces length plus character-class minimums.
func Password(s string) bool {
	if l := len(s); l < 8 || l > 72 {
		return false
	}
	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		}
	}
	return hasLower && hasUpper && hasDigit
}

// Year accepts print years from movable type to next year's frontlist.
func Year(n int) bool {
	return n >= 1450 && n <= time.Now().Year()+1
}

func Price(p float64) bool { return p >= 0 }

func Phone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePhone.MatchString(s)
}

func PostalCode(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, rePostal.MatchString(s)
}

// OrderStatus reports whether s names a known order status.
func OrderStatus(s string) bool {
	switch s {
	case "pending", "paid", "shipped", "completed", "cancelled":
		return true
	}
	return false
}
