package types

const (
	HeaderRequestID         = "X-Request-ID"
	HeaderAuthorization     = "Authorization"
	HeaderRazorpaySignature = "X-Razorpay-Signature"
	HeaderRazorpayEventID   = "X-Razorpay-Event-Id"
)
