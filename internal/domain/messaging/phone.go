package messaging

import "strings"

// DefaultCountryCode is prefixed to national numbers
const DefaultCountryCode = "91"

// NormalizePhone converts a user-entered number into the digits-only
// international form the providers expect. Numbers are assumed to be Indian:
// ten digits get the country code, and eleven digits with a trunk 0 lose the
// 0 and get the country code. Anything else is returned as cleaned.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '+' {
			b.WriteRune(r)
		}
	}
	phone := strings.TrimPrefix(b.String(), "+")

	switch {
	case len(phone) == 10:
		return DefaultCountryCode + phone
	case len(phone) == 11 && phone[0] == '0':
		return DefaultCountryCode + phone[1:]
	}
	return phone
}
