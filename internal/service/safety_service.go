package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kidpal/internal/domain"
	"kidpal/internal/email"
	"kidpal/internal/repository"
)

const maxExcerptLen = 200

// SafetyService corre el clasificador, persiste el registro de auditoria
// y alerta al padre/madre cuando corresponde. El clasificador en si es
// puro; los efectos viven aca.
type SafetyService struct {
	logger     *zap.Logger
	classifier SafetyClassifier
	flags      repository.SafetyFlagRepository
	kids       repository.KidRepository
	sender     email.Sender
}

func NewSafetyService(
	logger *zap.Logger,
	flags repository.SafetyFlagRepository,
	kids repository.KidRepository,
	sender email.Sender,
) *SafetyService {
	return &SafetyService{
		logger: logger,
		flags:  flags,
		kids:   kids,
		sender: sender,
	}
}

// Classify expone el clasificador puro sin efectos.
func (s *SafetyService) Classify(message string) domain.SafetyCheckResult {
	return s.classifier.Classify(message)
}

// CheckMessage clasifica y, si el resultado no es "none", persiste el flag
// de auditoria y notifica al padre en critical/high. Un fallo de auditoria
// o de correo no bloquea la conversacion: se loguea y se sigue.
func (s *SafetyService) CheckMessage(ctx context.Context, kidID, message string) domain.SafetyCheckResult {
	result := s.classifier.Classify(message)
	if result.Severity == domain.SeverityNone {
		return result
	}

	flag := domain.SafetyFlag{
		ID:             uuid.NewString(),
		KidID:          kidID,
		MessageExcerpt: excerpt(message),
		Flags:          result.Flags,
		Severity:       result.Severity,
		Action:         result.Action,
		CreatedAt:      time.Now().UTC(),
	}

	if result.ShouldNotifyParent() {
		flag.ParentNotified = s.notifyParent(ctx, kidID, flag)
	}

	if err := s.flags.Create(ctx, flag); err != nil {
		s.logger.Error("persist safety flag failed", zap.Error(err), zap.String("kid_id", kidID))
	}

	s.logger.Info("message flagged",
		zap.String("kid_id", kidID),
		zap.String("severity", string(result.Severity)),
		zap.String("action", string(result.Action)),
		zap.Strings("flags", result.Flags),
	)
	return result
}

func (s *SafetyService) ListFlags(ctx context.Context, kidID string, limit int) ([]domain.SafetyFlag, error) {
	return s.flags.ListByKid(ctx, kidID, limit)
}

func (s *SafetyService) notifyParent(ctx context.Context, kidID string, flag domain.SafetyFlag) bool {
	kid, err := s.kids.GetByID(ctx, kidID)
	if err != nil {
		s.logger.Error("get kid for safety alert failed", zap.Error(err), zap.String("kid_id", kidID))
		return false
	}
	if err := s.sender.SendSafetyAlert(ctx, kid.ParentEmail, kid.Name, flag); err != nil {
		s.logger.Error("send safety alert failed", zap.Error(err), zap.String("kid_id", kidID))
		return false
	}
	return true
}

// excerpt recorta el mensaje sin partir una runa multibyte: el excerpt
// va a una columna text y Postgres rechaza UTF-8 invalido.
func excerpt(message string) string {
	if len(message) <= maxExcerptLen {
		return message
	}
	cut := maxExcerptLen
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	return message[:cut]
}
