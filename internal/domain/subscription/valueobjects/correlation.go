package valueobjects

import "fmt"

// CorrelationKind tells which gateway object a correlation id points at.
type CorrelationKind string

const (
	CorrelationNone      CorrelationKind = ""
	CorrelationOneTime   CorrelationKind = "one_time"
	CorrelationRecurring CorrelationKind = "recurring"
)

// Correlation links a local subscription to one gateway object: an order for
// one-time checkouts or a subscription for recurring billing.
type Correlation struct {
	Kind CorrelationKind
	ID   string
}

func OneTime(orderID string) Correlation {
	return Correlation{Kind: CorrelationOneTime, ID: orderID}
}

func Recurring(subscriptionID string) Correlation {
	return Correlation{Kind: CorrelationRecurring, ID: subscriptionID}
}

// ParseCorrelation rebuilds a correlation from stored columns.
func ParseCorrelation(kind, id string) (Correlation, error) {
	if id == "" {
		return Correlation{}, nil
	}
	switch CorrelationKind(kind) {
	case CorrelationOneTime, CorrelationRecurring:
		return Correlation{Kind: CorrelationKind(kind), ID: id}, nil
	default:
		return Correlation{}, fmt.Errorf("invalid correlation kind %q for id %s", kind, id)
	}
}

func (c Correlation) IsZero() bool {
	return c.ID == ""
}

func (c Correlation) IsRecurring() bool {
	return c.Kind == CorrelationRecurring && c.ID != ""
}

func (c Correlation) IsOneTime() bool {
	return c.Kind == CorrelationOneTime && c.ID != ""
}

func (c Correlation) String() string {
	if c.IsZero() {
		return "none"
	}
	return fmt.Sprintf("%s:%s", c.Kind, c.ID)
}
