package domain

import "time"

// Kid es la cuenta del nino. Siempre pertenece a un correo de padre/madre
// que valida el registro via OTP y puede fijar un PIN de supervision.
type Kid struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Age              int        `json:"age,omitempty"`
	ParentEmail      string     `json:"parent_email"`
	ParentPinHash    string     `json:"-"`
	ParentVerifiedAt *time.Time `json:"parent_verified_at,omitempty"`
	OtpCodeHash      string     `json:"-"`
	OtpExpiresAt     *time.Time `json:"otp_expires_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
