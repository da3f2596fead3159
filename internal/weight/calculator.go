package weight

import (
	"errors"
	"math"
)

var (
	ErrInvalidWeight     = errors.New("invalid_weight")
	ErrInvalidDimensions = errors.New("invalid_dimensions")
	ErrInvalidDivisor    = errors.New("invalid_volumetric_divisor")
)

// Dimensions are the package's physical measurements in centimetres.
type Dimensions struct {
	LengthCm float64
	WidthCm  float64
	HeightCm float64
}

// Calculator derives billable weight from actual weight, dimensions, and a
// per-tariff minimum floor.
type Calculator struct {
	divisor float64
}

// NewCalculator builds a Calculator with the configured volumetric divisor
// (5000 is the industry convention for cm³ to kg).
func NewCalculator(volumetricDivisor float64) (Calculator, error) {
	if volumetricDivisor <= 0 {
		return Calculator{}, ErrInvalidDivisor
	}
	return Calculator{divisor: volumetricDivisor}, nil
}

// Volumetric returns the weight implied by package dimensions. A nil
// dimensions value means the package was not measured and contributes zero.
func (c Calculator) Volumetric(dims *Dimensions) (float64, error) {
	if dims == nil {
		return 0, nil
	}
	if dims.LengthCm <= 0 || dims.WidthCm <= 0 || dims.HeightCm <= 0 {
		return 0, ErrInvalidDimensions
	}
	return dims.LengthCm * dims.WidthCm * dims.HeightCm / c.divisor, nil
}

// Chargeable returns the billable weight: the greatest of actual weight,
// volumetric weight, and the tariff's minimum billable floor.
func (c Calculator) Chargeable(actualKg float64, dims *Dimensions, minimumKg float64) (float64, error) {
	if actualKg <= 0 {
		return 0, ErrInvalidWeight
	}
	volumetric, err := c.Volumetric(dims)
	if err != nil {
		return 0, err
	}
	return math.Max(actualKg, math.Max(volumetric, minimumKg)), nil
}

// AdditionalUnits returns how many extra-weight increments to bill above the
// base weight slab. Partial increments always bill as a full increment.
func AdditionalUnits(chargeableKg, baseKg, incrementKg float64) int64 {
	if incrementKg <= 0 {
		return 0
	}
	excess := chargeableKg - baseKg
	if excess <= 0 {
		return 0
	}
	return int64(math.Ceil(excess / incrementKg))
}
