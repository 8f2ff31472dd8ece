package valueobjects

type PaymentGateway string

const (
	PaymentGatewayRazorpay PaymentGateway = "razorpay"
	PaymentGatewayAdmin    PaymentGateway = "admin"
)

func (g PaymentGateway) String() string {
	return string(g)
}
