// Package id generates the identifiers this service hands to the gateway and
// to clients.
package id

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// receiptMaxLen is the gateway's limit on order receipts.
const receiptMaxLen = 40

// NewRequestID returns a random request correlation id.
func NewRequestID() string {
	return uuid.NewString()
}

// NewReceipt builds a unique order receipt for a user checkout.
func NewReceipt(userID uint) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	receipt := fmt.Sprintf("rcpt_%d_%s", userID, suffix)
	if len(receipt) > receiptMaxLen {
		receipt = receipt[:receiptMaxLen]
	}
	return receipt
}

// ManualPaymentID builds the ledger payment id for an administrator-recorded
// payment. It never collides with gateway ids, which start with "pay_".
func ManualPaymentID(at time.Time, userID uint) string {
	return fmt.Sprintf("MANUAL_%d_%d", at.UnixMilli(), userID)
}
