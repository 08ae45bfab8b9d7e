package domain

import "time"

// TraitName identifica uno de los cuatro rasgos del bot. Se usa un tipo
// cerrado en vez de strings sueltos para que un nombre invalido sea un
// error detectable y no un acceso dinamico silencioso.
type TraitName string

const (
	TraitHumor     TraitName = "humor"
	TraitEnergy    TraitName = "energy"
	TraitCuriosity TraitName = "curiosity"
	TraitFormality TraitName = "formality"
)

// AllTraits devuelve los rasgos en orden estable.
func AllTraits() []TraitName {
	return []TraitName{TraitHumor, TraitEnergy, TraitCuriosity, TraitFormality}
}

// Valid indica si el nombre corresponde a un rasgo conocido.
func (t TraitName) Valid() bool {
	switch t {
	case TraitHumor, TraitEnergy, TraitCuriosity, TraitFormality:
		return true
	}
	return false
}

// TraitVector guarda los cuatro rasgos, cada uno siempre en [0.0, 1.0].
// Toda escritura pasa por el TraitAdjuster, que aplica el clamp.
type TraitVector struct {
	Humor     float64 `json:"humor"`
	Energy    float64 `json:"energy"`
	Curiosity float64 `json:"curiosity"`
	Formality float64 `json:"formality"`
}

// Valores iniciales de un bot recien creado.
const (
	DefaultHumor     = 0.5
	DefaultEnergy    = 0.6
	DefaultCuriosity = 0.5
	DefaultFormality = 0.3
)

func DefaultTraitVector() TraitVector {
	return TraitVector{
		Humor:     DefaultHumor,
		Energy:    DefaultEnergy,
		Curiosity: DefaultCuriosity,
		Formality: DefaultFormality,
	}
}

// Value lee un rasgo por nombre. Un nombre invalido devuelve 0 y false.
func (v TraitVector) Value(name TraitName) (float64, bool) {
	switch name {
	case TraitHumor:
		return v.Humor, true
	case TraitEnergy:
		return v.Energy, true
	case TraitCuriosity:
		return v.Curiosity, true
	case TraitFormality:
		return v.Formality, true
	}
	return 0, false
}

// Set escribe un rasgo por nombre sin validar rango; el clamp es
// responsabilidad del TraitAdjuster.
func (v *TraitVector) Set(name TraitName, value float64) bool {
	switch name {
	case TraitHumor:
		v.Humor = value
	case TraitEnergy:
		v.Energy = value
	case TraitCuriosity:
		v.Curiosity = value
	case TraitFormality:
		v.Formality = value
	default:
		return false
	}
	return true
}

// FriendshipState es el estado de amistad acumulado de un nino con el bot.
// Level es funcion deterministica de TotalConversations y solo sube.
type FriendshipState struct {
	Level              int    `json:"level"`
	TotalConversations int    `json:"total_conversations"`
	Catchphrase        string `json:"catchphrase,omitempty"`
}

// Personality es el registro de personalidad del bot para un nino.
// Hay exactamente uno por Kid y se borra junto con el.
type Personality struct {
	ID         string          `json:"id"`
	KidID      string          `json:"kid_id"`
	Traits     TraitVector     `json:"traits"`
	Friendship FriendshipState `json:"friendship"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}
