package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMethod(t *testing.T) {
	tests := map[string]PaymentMethod{
		"card":       MethodCard,
		"UPI":        MethodUPI,
		"netbanking": MethodNetbanking,
		"paylater":   MethodUnknown,
		"":           MethodUnknown,
	}
	for input, want := range tests {
		assert.Equal(t, want, ParseMethod(input), input)
	}
}

func TestPaymentStatus_IsValid(t *testing.T) {
	assert.True(t, PaymentStatusCompleted.IsValid())
	assert.True(t, PaymentStatusCancelled.IsValid())
	assert.False(t, PaymentStatus("refunded").IsValid())
}
