package valueobjects

import "strings"

// Status is the persisted subscription status. The empty value means no
// subscription; legacy "inactive" and "null" spellings parse to it.
type Status string

const (
	StatusNone    Status = ""
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
)

func ParseStatus(s string) Status {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive
	case "expired":
		return StatusExpired
	default:
		return StatusNone
	}
}

func (s Status) String() string {
	if s == StatusNone {
		return "none"
	}
	return string(s)
}

func (s Status) IsActive() bool {
	return s == StatusActive
}
