package service

import (
	"kidpal/internal/domain"
)

// Tope suave por conversacion para deltas derivados de patrones de
// conversacion, encima del limite duro [0,1] del TraitAdjuster.
const maxDriftPerConversation = 0.02

// TraitDelta es un ajuste propuesto por la politica de deriva.
type TraitDelta struct {
	Trait domain.TraitName
	Delta float64
}

/*
========================
 Politica de deriva
========================
*/

// DriftFromMetrics traduce las senales del turno a deltas de rasgos,
// todos acotados a +-maxDriftPerConversation. La personalidad cambia de a
// poco: una conversacion nunca mueve un rasgo mas de 0.02.
func DriftFromMetrics(m domain.ConversationMetrics) []TraitDelta {
	var deltas []TraitDelta

	// Al nino le gusto un chiste: mas humor.
	if m.PositiveJokeResponse {
		deltas = append(deltas, TraitDelta{Trait: domain.TraitHumor, Delta: 0.02})
	}

	// Lenguaje casual: el bot relaja la formalidad.
	if m.CasualLanguageDetected {
		deltas = append(deltas, TraitDelta{Trait: domain.TraitFormality, Delta: -0.02})
	}

	// Muchas preguntas: la curiosidad se contagia. Pocas: baja suave.
	if m.UserQuestionRatio > 0.5 {
		deltas = append(deltas, TraitDelta{Trait: domain.TraitCuriosity, Delta: 0.02})
	} else if m.UserQuestionRatio < 0.1 {
		deltas = append(deltas, TraitDelta{Trait: domain.TraitCuriosity, Delta: -0.01})
	}

	// Mensajes largos: nino enganchado, sube la energia. Muy cortos: baja.
	if m.AvgMessageLength > 60 {
		deltas = append(deltas, TraitDelta{Trait: domain.TraitEnergy, Delta: 0.01})
	} else if m.AvgMessageLength > 0 && m.AvgMessageLength < 10 {
		deltas = append(deltas, TraitDelta{Trait: domain.TraitEnergy, Delta: -0.01})
	}

	for i := range deltas {
		deltas[i].Delta = capDrift(deltas[i].Delta)
	}
	return deltas
}

func capDrift(d float64) float64 {
	if d > maxDriftPerConversation {
		return maxDriftPerConversation
	}
	if d < -maxDriftPerConversation {
		return -maxDriftPerConversation
	}
	return d
}
