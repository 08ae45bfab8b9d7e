package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Catalogo estatico: feature -> nivel minimo de amistad. Solo lectura en
// runtime; mantener alineado con levelRewards.
var featureCatalog = map[string]int{
	"sticker_pack_basic":     2,
	"catchphrase":            3,
	"pun_mode":               3,
	"daily_fun_fact":         4,
	"empathy_mode":           5,
	"sticker_pack_silly":     5,
	"story_time":             6,
	"extended_memory":        7,
	"sticker_pack_rare":      7,
	"inside_jokes":           8,
	"adventure_mode":         9,
	"best_friend_badge":      10,
	"sticker_pack_legendary": 10,
}

var ErrUnknownFeature = errors.New("unknown feature")

// FeatureGate decide que features estan disponibles para un nivel dado.
// Es un predicado puro mas un formateador de mensajes; los efectos de cada
// feature los aplica la capa de respuesta, no el gate.
type FeatureGate struct {
	logger *zap.Logger
}

func NewFeatureGate(logger *zap.Logger) *FeatureGate {
	return &FeatureGate{logger: logger}
}

// IsUnlocked: nivel actual >= nivel requerido. Un feature desconocido
// queda bloqueado (con warning), nunca lanza error en modo laxo.
func (g *FeatureGate) IsUnlocked(featureID string, currentLevel int) bool {
	required, ok := featureCatalog[featureID]
	if !ok {
		if g.logger != nil {
			g.logger.Warn("unknown feature requested", zap.String("feature_id", featureID))
		}
		return false
	}
	return currentLevel >= required
}

// IsUnlockedStrict es la variante que devuelve error para IDs desconocidos.
func (g *FeatureGate) IsUnlockedStrict(featureID string, currentLevel int) (bool, error) {
	required, ok := featureCatalog[featureID]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownFeature, featureID)
	}
	return currentLevel >= required, nil
}

// RequiredLevel expone el catalogo para consumidores de solo lectura.
func (g *FeatureGate) RequiredLevel(featureID string) (int, bool) {
	required, ok := featureCatalog[featureID]
	return required, ok
}

// UnlockedFeatures lista los features disponibles al nivel dado.
func (g *FeatureGate) UnlockedFeatures(currentLevel int) []string {
	return CumulativeRewards(currentLevel)
}

// GateMessage explica cuantos niveles faltan, con frase singular cuando
// falta exactamente uno.
func (g *FeatureGate) GateMessage(featureID string, currentLevel int) string {
	required, ok := featureCatalog[featureID]
	if !ok {
		return "That's not something I know how to do yet!"
	}
	if currentLevel >= required {
		return "That's already unlocked, let's go!"
	}

	needed := required - currentLevel
	if needed == 1 {
		return "Just one more friendship level and this unlocks! We're so close!"
	}
	return fmt.Sprintf("This unlocks at friendship level %d, only %d more levels to go!", required, needed)
}
