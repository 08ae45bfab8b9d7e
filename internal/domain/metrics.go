package domain

// ConversationMetrics son las senales por turno que alimentan la politica
// de deriva de rasgos. Las produce la capa de conversacion, no el store.
type ConversationMetrics struct {
	PositiveJokeResponse   bool    `json:"positive_joke_response"`
	CasualLanguageDetected bool    `json:"casual_language_detected"`
	UserQuestionRatio      float64 `json:"user_question_ratio"`
	AvgMessageLength       float64 `json:"avg_message_length"`
}
