package valueobjects

import (
	"fmt"
	"strings"
)

type PaymentType string

const (
	PaymentTypeOneTime   PaymentType = "one-time"
	PaymentTypeRecurring PaymentType = "recurring"
	PaymentTypeUnknown   PaymentType = "unknown"
)

// ParsePaymentType accepts the two values a client may request.
func ParsePaymentType(s string) (PaymentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "one-time", "one_time", "onetime":
		return PaymentTypeOneTime, nil
	case "recurring":
		return PaymentTypeRecurring, nil
	default:
		return "", fmt.Errorf("invalid payment type %q: must be one-time or recurring", s)
	}
}

// PaymentTypeFromStorage never fails; unknown values read as PaymentTypeUnknown.
func PaymentTypeFromStorage(s string) PaymentType {
	pt, err := ParsePaymentType(s)
	if err != nil {
		return PaymentTypeUnknown
	}
	return pt
}

func (p PaymentType) String() string {
	if p == "" {
		return string(PaymentTypeUnknown)
	}
	return string(p)
}

func (p PaymentType) IsRecurring() bool {
	return p == PaymentTypeRecurring
}
