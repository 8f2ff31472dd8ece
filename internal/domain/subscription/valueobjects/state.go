package valueobjects

// State is the lifecycle position derived from a subscription record.
type State string

const (
	StateFree           State = "free"
	StatePendingPayment State = "pending_payment"
	StateActive         State = "active"
	StateExpired        State = "expired"
	StateSuspended      State = "suspended"
)

func (s State) String() string {
	return string(s)
}
