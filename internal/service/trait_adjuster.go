package service

import (
	"errors"
	"fmt"
	"math"

	"kidpal/internal/domain"
)

// AdjustMode indica si el monto es un delta o un valor absoluto.
type AdjustMode string

const (
	AdjustDelta    AdjustMode = "delta"
	AdjustAbsolute AdjustMode = "absolute"
)

var ErrInvalidTraitName = errors.New("invalid trait name")

// Adjustment es el resultado de un ajuste: ActualChange puede diferir del
// delta pedido si hubo clamp.
type Adjustment struct {
	Trait        domain.TraitName `json:"trait"`
	OldValue     float64          `json:"old_value"`
	NewValue     float64          `json:"new_value"`
	Requested    float64          `json:"requested"`
	ActualChange float64          `json:"actual_change"`
}

// TraitAdjuster aplica escrituras acotadas sobre un TraitVector. Solo
// garantiza el limite duro [0,1]; el tope suave de 0.02 por conversacion
// lo aplica la politica de deriva, no este componente.
type TraitAdjuster struct{}

// Adjust computa el valor objetivo (old+delta o el absoluto), lo clampea a
// [0,1] y escribe. Un nombre invalido rechaza solo ese ajuste sin tocar
// los demas rasgos.
func (TraitAdjuster) Adjust(v *domain.TraitVector, name domain.TraitName, amount float64, mode AdjustMode) (Adjustment, error) {
	old, ok := v.Value(name)
	if !ok {
		return Adjustment{}, fmt.Errorf("%w: %q", ErrInvalidTraitName, name)
	}

	target := amount
	if mode != AdjustAbsolute {
		target = old + amount
	}
	if math.IsNaN(target) || math.IsInf(target, 0) {
		target = old
	}

	newValue := clamp01(target)
	v.Set(name, newValue)

	return Adjustment{
		Trait:        name,
		OldValue:     old,
		NewValue:     newValue,
		Requested:    amount,
		ActualChange: newValue - old,
	}, nil
}

// ResetDefaults restaura cada rasgo a su valor documentado.
func (TraitAdjuster) ResetDefaults(v *domain.TraitVector) {
	*v = domain.DefaultTraitVector()
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
