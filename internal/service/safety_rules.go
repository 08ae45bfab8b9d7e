package service

import (
	"strings"
	"unicode"

	"kidpal/internal/domain"
)

// SafetyClassifier clasifica mensajes entrantes del nino por listas de
// palabras clave. Es puro: sin estado, sin persistencia, nunca falla.
type SafetyClassifier struct{}

/*
========================
 Listas de palabras clave
========================
*/

// Frases de crisis (autolesion/suicidio). Prioridad maxima.
var crisisKeywords = []string{
	"kill myself",
	"want to die",
	"wanna die",
	"suicide",
	"hurt myself",
	"end my life",
	"better off dead",
	"self harm",
	"self-harm",
	"cutting myself",
	"no reason to live",
	"don't want to be alive",
	"dont want to be alive",
}

// Senales de abuso hacia el nino.
var abuseKeywords = []string{
	"hits me",
	"hit me",
	"hurts me",
	"beats me",
	"beat me",
	"touches me",
	"threatened me",
	"threatens me",
	"scared to go home",
	"afraid to go home",
	"locks me in",
	"locked me in",
}

// Senales de bullying.
var bullyingKeywords = []string{
	"bullying me",
	"bullied",
	"bully",
	"picking on me",
	"picks on me",
	"making fun of me",
	"make fun of me",
	"makes fun of me",
	"laughed at me",
	"laughs at me",
	"calls me names",
	"called me names",
	"everyone hates me",
	"nobody likes me",
	"no one likes me",
	"left me out",
	"leave me out",
}

// Pedidos inapropiados (hackeo, trampas, instrucciones de violencia).
var inappropriateKeywords = []string{
	"how to hack",
	"hack into",
	"hack someone",
	"answers to the test",
	"cheat on my test",
	"cheat on the test",
	"cheat on homework",
	"how to cheat",
	"how to fight",
	"how to hurt someone",
	"how to make a bomb",
	"how to make a weapon",
	"how to steal",
	"steal from",
}

// Groserias; se permite lenguaje leve tipo "dumb" para educar, no bloquear.
var profanityWords = []string{
	"shit",
	"fuck",
	"damn",
	"bitch",
	"crap",
	"hell",
	"ass",
	"stupid",
	"dumb",
	"idiot",
	"moron",
	"sucks",
	"shut up",
	"i hate you",
}

// Palabras inocentes que contienen un fragmento grosero. Solo la categoria
// de groserias lleva esta lista de excepciones; las listas de crisis,
// abuso y bullying matchean por substring puro a proposito (preferimos
// falsos positivos a perder un mensaje de crisis).
var profanityAllowlist = map[string]struct{}{
	"class":     {},
	"classes":   {},
	"classic":   {},
	"classroom": {},
	"pass":      {},
	"passed":    {},
	"passes":    {},
	"password":  {},
	"grass":     {},
	"glass":     {},
	"glasses":   {},
	"bass":      {},
	"mass":      {},
	"massive":   {},
	"assembly":  {},
	"assistant": {},
	"hello":     {},
	"shell":     {},
	"shells":    {},
	"scrap":     {},
	"scrapbook": {},
}

/*
========================
 Clasificacion
========================
*/

// Classify evalua el mensaje contra las cinco categorias en orden estricto
// de prioridad; la primera que matchea gana (las categorias NO se
// acumulan). Texto vacio o solo espacios clasifica como none/allow.
func (SafetyClassifier) Classify(message string) domain.SafetyCheckResult {
	msg := strings.ToLower(strings.TrimSpace(message))
	if msg == "" {
		return allowResult()
	}

	switch {
	case containsAny(msg, crisisKeywords):
		return flaggedResult(domain.FlagCrisis, domain.SeverityCritical, domain.ActionCrisisResponse)
	case containsAny(msg, abuseKeywords):
		return flaggedResult(domain.FlagAbuse, domain.SeverityCritical, domain.ActionCrisisResponse)
	case containsAny(msg, bullyingKeywords):
		return flaggedResult(domain.FlagBullying, domain.SeverityMedium, domain.ActionSupportiveResponse)
	case containsAny(msg, inappropriateKeywords):
		return flaggedResult(domain.FlagInappropriate, domain.SeverityMedium, domain.ActionPoliteDecline)
	case containsProfanity(msg):
		return flaggedResult(domain.FlagProfanity, domain.SeverityLow, domain.ActionFilterAndEducate)
	}

	return allowResult()
}

func allowResult() domain.SafetyCheckResult {
	return domain.SafetyCheckResult{
		Flags:    []string{},
		Severity: domain.SeverityNone,
		Action:   domain.ActionAllow,
	}
}

func flaggedResult(flag string, severity domain.Severity, action domain.SafetyAction) domain.SafetyCheckResult {
	return domain.SafetyCheckResult{
		Flags:    []string{flag},
		Severity: severity,
		Action:   action,
	}
}

func containsAny(s string, list []string) bool {
	for _, x := range list {
		if strings.Contains(s, x) {
			return true
		}
	}
	return false
}

// containsProfanity matchea por substring dentro de cada token, saltando
// tokens de la allowlist ("class" no dispara "ass").
func containsProfanity(msg string) bool {
	// Frases multi-palabra primero, sobre el texto completo.
	for _, bad := range profanityWords {
		if strings.Contains(bad, " ") && strings.Contains(msg, bad) {
			return true
		}
	}

	tokens := strings.FieldsFunc(msg, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, tok := range tokens {
		if _, ok := profanityAllowlist[tok]; ok {
			continue
		}
		for _, bad := range profanityWords {
			if strings.Contains(bad, " ") {
				continue
			}
			if strings.Contains(tok, bad) {
				return true
			}
		}
	}
	return false
}
