// Package contact normalizes and checks the free-form contact details typed
// into donation, sponsor and profile forms: phone numbers, email addresses,
// UPI payment handles and short text fields.
package contact

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// upiPattern matches a UPI virtual payment address such as "name@okbank".
var upiPattern = regexp.MustCompile(`^[a-zA-Z0-9.\-_]{2,256}@[a-zA-Z][a-zA-Z0-9]{1,63}$`)

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// ValidEmail reports whether email has a plausible local@domain.tld shape.
func ValidEmail(email string) bool {
	email = NormalizeEmail(email)
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}
	domain := email[at+1:]
	dot := strings.LastIndex(domain, ".")
	return dot > 0 && dot < len(domain)-1 && !strings.ContainsAny(email, " \t")
}

// NormalizePhone strips a phone number down to digits only.
// A bare 10-digit Indian mobile number gets the 91 country code, and a
// leading trunk 0 before 10 digits is replaced by it, so "098765 43210",
// "+91 98765-43210" and "9876543210" share one canonical form.
func NormalizePhone(phone string) string {
	var digits strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	result := digits.String()
	switch {
	case len(result) == 10:
		result = "91" + result
	case len(result) == 11 && result[0] == '0':
		result = "91" + result[1:]
	}
	return result
}

// ValidPhone reports whether phone normalizes to a dialable length.
func ValidPhone(phone string) bool {
	n := len(NormalizePhone(phone))
	return n >= 10 && n <= 15
}

// ValidUPI reports whether id looks like a UPI virtual payment address.
func ValidUPI(id string) bool {
	return upiPattern.MatchString(strings.TrimSpace(id))
}

// CleanText trims s, folds it to Unicode NFC and collapses runs of
// whitespace. Hindi and Telugu input from different keyboards then compares
// equal byte-for-byte.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}
