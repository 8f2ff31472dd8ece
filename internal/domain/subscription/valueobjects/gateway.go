package valueobjects

import "strings"

// Gateway records who granted the current subscription.
type Gateway string

const (
	GatewayNone     Gateway = ""
	GatewayRazorpay Gateway = "razorpay"
	GatewayAdmin    Gateway = "admin"
)

func ParseGateway(s string) Gateway {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "razorpay":
		return GatewayRazorpay
	case "admin":
		return GatewayAdmin
	default:
		return GatewayNone
	}
}

func (g Gateway) String() string {
	if g == GatewayNone {
		return "none"
	}
	return string(g)
}
