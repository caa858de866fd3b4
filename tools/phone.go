package tools

import (
	"strings"
	"unicode"
)

// DefaultDialingCode is the South African country code. Beacon Isle
// residents share numbers in local format (0821234567) most of the time.
const DefaultDialingCode = "27"

// NormalizePhone turns a raw phone number into the identity key used for
// listing ownership and rate limiting: digits only, prefixed with the
// dialing code and without '+'.
//
// It never fails. Garbage in gives a best-effort (possibly wrong) key.
func NormalizePhone(raw string) string {
	return NormalizePhoneWithCode(raw, DefaultDialingCode)
}

// NormalizePhoneWithCode is NormalizePhone for another dialing code.
//
//   - keeps only digits
//   - already starts with the dialing code -> unchanged
//   - leading trunk zero -> replaced by the dialing code
//   - anything else -> dialing code prepended
func NormalizePhoneWithCode(raw string, dialingCode string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	phone := b.String()

	if strings.HasPrefix(phone, dialingCode) {
		return phone
	}
	if strings.HasPrefix(phone, "0") {
		return dialingCode + phone[1:]
	}
	return dialingCode + phone
}
