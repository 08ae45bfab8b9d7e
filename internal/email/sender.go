package email

import (
	"context"
	"errors"
	"time"

	"kidpal/internal/domain"
)

// Sender define la interfaz para correos al padre/madre: verificacion OTP
// y alertas de seguridad.
type Sender interface {
	SendVerificationOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
	SendSafetyAlert(ctx context.Context, toEmail string, kidName string, flag domain.SafetyFlag) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendVerificationOTP(_ context.Context, _ string, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendSafetyAlert(_ context.Context, _ string, _ string, _ domain.SafetyFlag) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
