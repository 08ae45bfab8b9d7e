package service

import (
	"strings"

	"kidpal/internal/domain"
)

/*
========================
 Metricas por turno
========================
*/

// Marcadores de lenguaje casual tipicos del chat infantil.
var casualMarkers = []string{
	"lol", "lmao", "haha", "hehe", "omg", "idk", "btw", "brb",
	"gonna", "wanna", "gotta", "kinda", "sorta", "ya", "yup", "nah",
	"cuz", "bc", "tho", "u r", "ur ",
}

// Respuestas que indican que un chiste aterrizo bien.
var jokeAppreciationMarkers = []string{
	"haha", "hahaha", "lol", "lmao", "so funny", "that's funny",
	"thats funny", "good one", "you're funny", "youre funny",
	"made me laugh", "cracked me up", "tell me another",
}

// ComputeConversationMetrics deriva las senales de deriva a partir de los
// mensajes del nino en la conversacion, en orden cronologico.
func ComputeConversationMetrics(kidMessages []string) domain.ConversationMetrics {
	var m domain.ConversationMetrics
	if len(kidMessages) == 0 {
		return m
	}

	questions := 0
	totalLen := 0
	for _, msg := range kidMessages {
		lower := strings.ToLower(msg)
		totalLen += len(msg)

		if strings.Contains(msg, "?") {
			questions++
		}
		if !m.CasualLanguageDetected && containsAny(lower, casualMarkers) {
			m.CasualLanguageDetected = true
		}
		if !m.PositiveJokeResponse && containsAny(lower, jokeAppreciationMarkers) {
			m.PositiveJokeResponse = true
		}
	}

	m.UserQuestionRatio = float64(questions) / float64(len(kidMessages))
	m.AvgMessageLength = float64(totalLen) / float64(len(kidMessages))
	return m
}
