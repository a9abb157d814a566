package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/cohortly/cohortly/internal/config"
	ierr "github.com/cohortly/cohortly/internal/errors"
	"github.com/cohortly/cohortly/internal/logger"
)

// Verifier authenticates inbound webhook notifications. Verification runs
// over the exact raw request bytes; the body must not be parsed or mutated
// before this check.
type Verifier struct {
	secret []byte
	logger *logger.Logger
}

// NewVerifier creates a webhook verifier from the shared signing secret.
func NewVerifier(cfg *config.Configuration, log *logger.Logger) *Verifier {
	return &Verifier{
		secret: []byte(cfg.Razorpay.WebhookSecret),
		logger: log,
	}
}

// VerifySignature checks the hex-encoded HMAC-SHA256 signature the gateway
// sends against the raw payload.
func (v *Verifier) VerifySignature(payload []byte, signature string) error {
	if len(v.secret) == 0 {
		return ierr.NewError("webhook secret not configured").
			WithHint("Configure the gateway webhook secret").
			Mark(ierr.ErrSystem)
	}
	if signature == "" {
		return ierr.NewError("missing webhook signature").
			WithHint("Signature header is required").
			Mark(ierr.ErrSignature)
	}

	received, err := hex.DecodeString(signature)
	if err != nil {
		return ierr.WithError(err).
			WithHint("Signature must be a valid hex string").
			Mark(ierr.ErrSignature)
	}

	mac := hmac.New(sha256.New, v.secret)
	mac.Write(payload)
	expected := mac.Sum(nil)

	// Constant-time comparison to prevent timing attacks
	if !hmac.Equal(expected, received) {
		v.logger.Errorw("webhook signature mismatch",
			"payload_length", len(payload),
			"signature_length", len(received))
		return ierr.NewError("webhook signature verification failed").
			WithHint("Invalid webhook signature").
			Mark(ierr.ErrSignature)
	}

	return nil
}
