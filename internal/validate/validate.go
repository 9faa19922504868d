package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// MaxQuantity bounds a single cart request.
const MaxQuantity = 999

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates a simple resource identifier (product/category ids).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// OptionalID accepts an empty value; anything else must be an ID.
func OptionalID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", true
	}
	return ID(s)
}

// Name validates a displayable name with a reasonable max length. Empty is allowed.
func Name(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, len(s) <= 80
}

// Quantity bounds a signed cart quantity. Negative values are valid deltas.
func Quantity(n int) bool {
	return n >= -MaxQuantity && n <= MaxQuantity
}

// Width parses the optional image width query value. An empty value means no resize.
func Width(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 4096 {
		return 0, false
	}
	return n, true
}

// PaymentMethod accepts the two supported methods.
func PaymentMethod(s string) (string, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	return s, s == "card" || s == "cash"
}

// CardNumber only bounds the length; the payment authorizer decides validity.
func CardNumber(s string) bool {
	return len(s) <= 32
}

// IdempotencyKey accepts printable ASCII without spaces, up to 128 characters.
func IdempotencyKey(s string) bool {
	if len(s) == 0 || len(s) > 128 {
		return false
	}
	for _, r := range s {
		if r <= ' ' || r > '~' {
			return false
		}
	}
	return true
}

// Password enforces length and character classes for new shop accounts.
func Password(s string) bool {
	l := len(s)
	if l < 8 || l > 64 {
		return false
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, r := range s {
		switch {
		case 'a' <= r && r <= 'z':
			hasLower = true
		case 'A' <= r && r <= 'Z':
			hasUpper = true
		case '0' <= r && r <= '9':
			hasDigit = true
		default:
			hasSymbol = true
		}
	}
	return hasLower && hasUpper && hasDigit && hasSymbol
}

// MinPassword is the looser rule used by the SDET service: at least 6 characters.
func MinPassword(s string) bool {
	return len(s) >= 6 && len(s) <= 128
}
