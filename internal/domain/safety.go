package domain

import "time"

// Severity es el nivel de riesgo detectado en un mensaje entrante.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high" // reservado: ninguna regla actual lo emite
	SeverityCritical Severity = "critical"
)

// SafetyAction es la accion recomendada al generador de respuestas.
type SafetyAction string

const (
	ActionAllow              SafetyAction = "allow"
	ActionCrisisResponse     SafetyAction = "crisis_response"
	ActionSupportiveResponse SafetyAction = "supportive_response"
	ActionPoliteDecline      SafetyAction = "polite_decline"
	ActionFilterAndEducate   SafetyAction = "filter_and_educate"
)

// Categorias de contenido flageado.
const (
	FlagCrisis        = "crisis"
	FlagAbuse         = "abuse"
	FlagBullying      = "bullying"
	FlagInappropriate = "inappropriate_request"
	FlagProfanity     = "profanity"
)

// SafetyCheckResult es el valor transitorio que produce el clasificador
// por cada mensaje; no es una entidad, persistirlo es decision del caller.
type SafetyCheckResult struct {
	Flags    []string     `json:"flags"`
	Severity Severity     `json:"severity"`
	Action   SafetyAction `json:"action"`
}

// Safe indica si el mensaje puede seguir el flujo normal de respuesta.
func (r SafetyCheckResult) Safe() bool {
	return r.Severity != SeverityCritical && r.Severity != SeverityHigh
}

// ShouldNotifyParent indica si hay que alertar al padre/madre. Incluye
// "high" aunque el clasificador actual nunca lo produzca, para que un
// flag manual o una regla futura escale sin tocar a los consumidores.
func (r SafetyCheckResult) ShouldNotifyParent() bool {
	return r.Severity == SeverityCritical || r.Severity == SeverityHigh
}

// SafetyFlag es el registro de auditoria de una clasificacion distinta
// de "none".
type SafetyFlag struct {
	ID             string       `json:"id"`
	KidID          string       `json:"kid_id"`
	MessageExcerpt string       `json:"message_excerpt"`
	Flags          []string     `json:"flags"`
	Severity       Severity     `json:"severity"`
	Action         SafetyAction `json:"action"`
	ParentNotified bool         `json:"parent_notified"`
	CreatedAt      time.Time    `json:"created_at"`
}
