package invoice

import "fmt"

// OverpaymentPolicy decides what happens when a payment exceeds the balance
type OverpaymentPolicy string

const (
	// OverpaymentReject refuses payments larger than the outstanding balance
	OverpaymentReject OverpaymentPolicy = "reject"
	// OverpaymentAllow accepts them and lets the balance go negative
	OverpaymentAllow OverpaymentPolicy = "allow"
)

// DefaultOverpaymentPolicy is used when nothing is configured
const DefaultOverpaymentPolicy = OverpaymentReject

// ParseOverpaymentPolicy validates a configured policy name
func ParseOverpaymentPolicy(s string) (OverpaymentPolicy, error) {
	switch OverpaymentPolicy(s) {
	case OverpaymentReject, OverpaymentAllow:
		return OverpaymentPolicy(s), nil
	case "":
		return DefaultOverpaymentPolicy, nil
	}
	return "", fmt.Errorf("unknown overpayment policy %q", s)
}
