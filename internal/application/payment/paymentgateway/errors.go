package paymentgateway

import (
	"errors"
	"fmt"
)

var (
	ErrSignatureMismatch = errors.New("signature mismatch")
	ErrMalformedEvent    = errors.New("malformed webhook event")
)

// Error is a non-2xx answer from the gateway API.
type Error struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *Error) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("gateway returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("gateway returned status %d: %s: %s", e.StatusCode, e.Code, e.Description)
}

// IsNotFound reports whether err is a gateway 404.
func IsNotFound(err error) bool {
	var gwErr *Error
	return errors.As(err, &gwErr) && gwErr.StatusCode == 404
}
