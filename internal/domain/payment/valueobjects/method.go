package valueobjects

import "strings"

type PaymentMethod string

const (
	MethodCard       PaymentMethod = "card"
	MethodUPI        PaymentMethod = "upi"
	MethodNetbanking PaymentMethod = "netbanking"
	MethodWallet     PaymentMethod = "wallet"
	MethodEMI        PaymentMethod = "emi"
	MethodManual     PaymentMethod = "manual"
	MethodUnknown    PaymentMethod = "unknown"
)

// ParseMethod maps the gateway's method field; anything unexpected is unknown.
func ParseMethod(s string) PaymentMethod {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case MethodCard, MethodUPI, MethodNetbanking, MethodWallet, MethodEMI, MethodManual:
		return m
	default:
		return MethodUnknown
	}
}

func (m PaymentMethod) String() string {
	return string(m)
}
