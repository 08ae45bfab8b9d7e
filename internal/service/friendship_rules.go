package service

import (
	"math/rand"

	"kidpal/internal/domain"
)

/*
========================
 Tabla de niveles
========================
*/

// Umbrales: nivel N se alcanza con minConversations[N-1] conversaciones.
// Rangos inclusivos: [0,5]=1 [6,10]=2 [11,20]=3 [21,30]=4 [31,45]=5
// [46,60]=6 [61,80]=7 [81,100]=8 [101,150]=9 [151,inf)=10.
var levelThresholds = []int{0, 6, 11, 21, 31, 46, 61, 81, 101, 151}

const MaxFriendshipLevel = 10

// LevelForConversations mapea el total acumulado a un nivel 1..10.
// Es no-decreciente en su entrada y tiene techo en 10.
func LevelForConversations(total int) int {
	if total < 0 {
		total = 0
	}
	level := 1
	for i, min := range levelThresholds {
		if total >= min {
			level = i + 1
		}
	}
	return level
}

/*
========================
 Catchphrases
========================
*/

// Sets tematicos de frase caracteristica. El set lo decide el rasgo
// dominante; la frase dentro del set es aleatoria (no reproducible, y
// esta bien: es sabor, no estado del que dependa logica).
var (
	humorCatchphrases = []string{
		"Wanna hear something funny?",
		"That cracks me up!",
		"Ha! Classic!",
		"I've got a joke for that!",
		"You're hilarious, you know that?",
	}
	energyCatchphrases = []string{
		"Let's gooo!",
		"Woohoo, best day ever!",
		"I'm SO ready!",
		"High five!",
		"This is awesome!",
	}
	curiosityCatchphrases = []string{
		"Ooh, tell me more!",
		"I wonder why that is...",
		"Did you know...?",
		"Let's find out together!",
		"That's so interesting!",
	}
	formalCatchphrases = []string{
		"Splendid question!",
		"How delightful!",
		"Most intriguing indeed.",
		"A pleasure, as always.",
		"Very well then!",
	}
	casualCatchphrases = []string{
		"Cool beans!",
		"No worries, buddy!",
		"You and me, always!",
		"Sounds good to me!",
		"Hey, that works!",
	}
)

// ChooseCatchphrase elige el set por rasgo dominante, en este orden fijo:
// humor>0.7, si no energy>0.7, si no curiosity>0.7, si no formality>0.6,
// si no el set casual. Gana el primer umbral que se cumple.
func ChooseCatchphrase(traits domain.TraitVector) string {
	var set []string
	switch {
	case traits.Humor > 0.7:
		set = humorCatchphrases
	case traits.Energy > 0.7:
		set = energyCatchphrases
	case traits.Curiosity > 0.7:
		set = curiosityCatchphrases
	case traits.Formality > 0.6:
		set = formalCatchphrases
	default:
		set = casualCatchphrases
	}
	return set[rand.Intn(len(set))]
}

// catchphraseLevel es el unico nivel que asigna frase caracteristica.
const catchphraseLevel = 3
