package valueobjects

type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

var validStatuses = map[PaymentStatus]bool{
	PaymentStatusCompleted: true,
	PaymentStatusFailed:    true,
	PaymentStatusPending:   true,
	PaymentStatusCancelled: true,
}

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) IsValid() bool {
	return validStatuses[s]
}
