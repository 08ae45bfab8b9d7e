package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kidpal/internal/domain"
	"kidpal/internal/email"
	"kidpal/internal/repository"
)

// KidService coordina reglas de negocio para cuentas de ninos: registro
// supervisado, verificacion del padre por OTP y PIN parental.
type KidService struct {
	logger        *zap.Logger
	kids          repository.KidRepository
	personalities *PersonalityService
	emailSender   email.Sender
	otpLimiter    RateLimiter
}

func NewKidService(logger *zap.Logger, kids repository.KidRepository, personalities *PersonalityService, emailSender email.Sender, otpLimiter RateLimiter) *KidService {
	if otpLimiter == nil {
		otpLimiter = NewMemoryRateLimiter(otpTTL, 3)
	}
	return &KidService{
		logger:        logger,
		kids:          kids,
		personalities: personalities,
		emailSender:   emailSender,
		otpLimiter:    otpLimiter,
	}
}

type RegisterKidInput struct {
	Name        string
	Age         int
	ParentEmail string
	ParentPin   string
}

var (
	ErrKidNotFound      = errors.New("kid not found")
	ErrOTPNotRequested  = errors.New("otp not requested")
	ErrOTPExpired       = errors.New("otp expired")
	ErrOTPInvalid       = errors.New("otp invalid")
	ErrEmailSendFailure = errors.New("email send failed")
	ErrRateLimited      = errors.New("rate limited")
	ErrInvalidPin       = errors.New("invalid parent pin")
	ErrInvalidEmail     = errors.New("invalid email")
	ErrInvalidName      = errors.New("invalid name")
)

const otpTTL = 10 * time.Minute

// Register crea la cuenta del nino. El padre queda sin verificar hasta
// pasar el flujo de OTP.
func (s *KidService) Register(ctx context.Context, input RegisterKidInput) (domain.Kid, error) {
	if s.kids == nil {
		return domain.Kid{}, errors.New("kid service not configured")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return domain.Kid{}, ErrInvalidName
	}
	parentEmail := normalizeEmail(input.ParentEmail)
	if parentEmail == "" {
		return domain.Kid{}, ErrInvalidEmail
	}

	var pinHash string
	if pin := strings.TrimSpace(input.ParentPin); pin != "" {
		hashBytes, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
		if err != nil {
			return domain.Kid{}, err
		}
		pinHash = string(hashBytes)
	}

	kid := domain.Kid{
		ID:            uuid.NewString(),
		Name:          name,
		Age:           input.Age,
		ParentEmail:   parentEmail,
		ParentPinHash: pinHash,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.kids.Create(ctx, kid); err != nil {
		return domain.Kid{}, err
	}

	if s.personalities != nil {
		if _, err := s.personalities.InitForKid(ctx, kid.ID); err != nil {
			return domain.Kid{}, fmt.Errorf("init personality: %w", err)
		}
	}
	return kid, nil
}

func (s *KidService) GetByID(ctx context.Context, id string) (domain.Kid, error) {
	kid, err := s.kids.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Kid{}, ErrKidNotFound
	}
	return kid, err
}

// RequestParentOTP genera un codigo y lo manda al correo del padre.
func (s *KidService) RequestParentOTP(ctx context.Context, kidID string) (domain.Kid, error) {
	if s.kids == nil {
		return domain.Kid{}, errors.New("kid service not configured")
	}

	kid, err := s.GetByID(ctx, kidID)
	if err != nil {
		return domain.Kid{}, err
	}

	if s.otpLimiter != nil && !s.otpLimiter.Allow(ctx, kid.ParentEmail) {
		return domain.Kid{}, ErrRateLimited
	}

	code, hash, expiresAt, err := generateOTP()
	if err != nil {
		return domain.Kid{}, err
	}

	if err := s.kids.SaveOTP(ctx, kid.ID, hash, sql.NullTime{Time: expiresAt, Valid: true}); err != nil {
		return domain.Kid{}, err
	}

	if s.emailSender == nil {
		return domain.Kid{}, ErrEmailSendFailure
	}
	if err := s.emailSender.SendVerificationOTP(ctx, kid.ParentEmail, code, expiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send verification otp failed", zap.Error(err), zap.String("email", kid.ParentEmail))
		}
		return domain.Kid{}, ErrEmailSendFailure
	}

	kid.OtpExpiresAt = &expiresAt
	return kid, nil
}

// VerifyParentOTP valida el codigo y marca al padre como verificado.
func (s *KidService) VerifyParentOTP(ctx context.Context, kidID, code string) (domain.Kid, error) {
	if s.kids == nil {
		return domain.Kid{}, errors.New("kid service not configured")
	}

	code = strings.TrimSpace(code)
	if !isValidOTPCode(code) {
		return domain.Kid{}, ErrOTPInvalid
	}

	kid, err := s.GetByID(ctx, kidID)
	if err != nil {
		return domain.Kid{}, err
	}

	if kid.OtpCodeHash == "" || kid.OtpExpiresAt == nil {
		return domain.Kid{}, ErrOTPNotRequested
	}
	if time.Now().UTC().After(*kid.OtpExpiresAt) {
		return domain.Kid{}, ErrOTPExpired
	}
	if !verifyOTP(code, kid.OtpCodeHash) {
		return domain.Kid{}, ErrOTPInvalid
	}

	if err := s.kids.MarkParentVerified(ctx, kid.ID); err != nil {
		return domain.Kid{}, err
	}

	verifiedAt := time.Now().UTC()
	kid.ParentVerifiedAt = &verifiedAt
	kid.OtpCodeHash = ""
	kid.OtpExpiresAt = nil
	return kid, nil
}

// CheckParentPin valida el PIN parental para las vistas de supervision
// (flags de seguridad, borrado de cuenta).
func (s *KidService) CheckParentPin(ctx context.Context, kidID, pin string) error {
	kid, err := s.GetByID(ctx, kidID)
	if err != nil {
		return err
	}
	if kid.ParentPinHash == "" {
		return ErrInvalidPin
	}
	if err := bcrypt.CompareHashAndPassword([]byte(kid.ParentPinHash), []byte(strings.TrimSpace(pin))); err != nil {
		return ErrInvalidPin
	}
	return nil
}

// Delete borra la cuenta y todo lo que posee, como operacion explicita de
// aplicacion (nada de cascadas implicitas).
func (s *KidService) Delete(ctx context.Context, kidID string) error {
	if err := s.kids.Delete(ctx, kidID); err != nil {
		return fmt.Errorf("delete kid: %w", err)
	}
	return nil
}

/*
========================
 Helpers de OTP
========================
*/

func generateOTP() (string, string, time.Time, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", "", time.Time{}, err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", "", time.Time{}, err
	}
	saltStr := base64.StdEncoding.EncodeToString(salt)
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])

	expiresAt := time.Now().UTC().Add(otpTTL)
	return code, saltStr + ":" + hash, expiresAt, nil
}

func verifyOTP(code, stored string) bool {
	parts := strings.Split(stored, ":")
	if len(parts) != 2 {
		return false
	}
	saltStr := parts[0]
	expectedHash := parts[1]
	hashBytes := sha256.Sum256([]byte(saltStr + ":" + code))
	hash := base64.StdEncoding.EncodeToString(hashBytes[:])
	return subtle.ConstantTimeCompare([]byte(hash), []byte(expectedHash)) == 1
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

/*
========================
 Limitador en memoria
========================
*/

type memoryRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
}

// NewMemoryRateLimiter crea un rate limiter en memoria, para tests y
// despliegues sin Redis.
func NewMemoryRateLimiter(window time.Duration, max int) RateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
	}
}

func (l *memoryRateLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now().UTC()
	cutoff := now.Add(-l.window)
	entries := l.hits[key]
	kept := entries[:0]
	for _, ts := range entries {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	kept = append(kept, now)
	l.hits[key] = kept
	return true
}
