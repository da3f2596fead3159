package weight

import (
	"errors"
	"math"
	"testing"
)

func TestNewCalculatorRejectsBadDivisor(t *testing.T) {
	if _, err := NewCalculator(0); !errors.Is(err, ErrInvalidDivisor) {
		t.Fatalf("expected invalid divisor, got %v", err)
	}
	if _, err := NewCalculator(-5000); !errors.Is(err, ErrInvalidDivisor) {
		t.Fatalf("expected invalid divisor, got %v", err)
	}
}

func TestVolumetric(t *testing.T) {
	calc, err := NewCalculator(5000)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}

	got, err := calc.Volumetric(&Dimensions{LengthCm: 30, WidthCm: 20, HeightCm: 10})
	if err != nil {
		t.Fatalf("volumetric: %v", err)
	}
	if math.Abs(got-1.2) > 1e-9 {
		t.Fatalf("expected 1.2, got %v", got)
	}
}

func TestVolumetricNilDimensionsIsZero(t *testing.T) {
	calc, _ := NewCalculator(5000)
	got, err := calc.Volumetric(nil)
	if err != nil {
		t.Fatalf("volumetric: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected 0 for unmeasured package, got %v", got)
	}
}

func TestVolumetricRejectsNonPositiveDimension(t *testing.T) {
	calc, _ := NewCalculator(5000)
	if _, err := calc.Volumetric(&Dimensions{LengthCm: 30, WidthCm: 0, HeightCm: 10}); !errors.Is(err, ErrInvalidDimensions) {
		t.Fatalf("expected invalid dimensions, got %v", err)
	}
}

func TestChargeableTakesMaximum(t *testing.T) {
	calc, _ := NewCalculator(5000)

	cases := []struct {
		name    string
		actual  float64
		dims    *Dimensions
		minimum float64
		want    float64
	}{
		{name: "actual wins", actual: 2.0, dims: &Dimensions{30, 20, 10}, minimum: 0.5, want: 2.0},
		{name: "volumetric wins", actual: 0.8, dims: &Dimensions{30, 20, 10}, minimum: 0.5, want: 1.2},
		{name: "minimum wins", actual: 0.2, dims: nil, minimum: 0.5, want: 0.5},
		{name: "no dims no minimum", actual: 0.7, dims: nil, minimum: 0, want: 0.7},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := calc.Chargeable(tc.actual, tc.dims, tc.minimum)
			if err != nil {
				t.Fatalf("chargeable: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestChargeableRejectsNonPositiveWeight(t *testing.T) {
	calc, _ := NewCalculator(5000)
	if _, err := calc.Chargeable(0, nil, 0.5); !errors.Is(err, ErrInvalidWeight) {
		t.Fatalf("expected invalid weight, got %v", err)
	}
}

func TestAdditionalUnitsRoundsPartialIncrementUp(t *testing.T) {
	// 1.7kg on a 0.5kg base with 0.5kg increments bills three full increments.
	if got := AdditionalUnits(1.7, 0.5, 0.5); got != 3 {
		t.Fatalf("expected 3 units, got %d", got)
	}
}

func TestAdditionalUnitsAtOrBelowBase(t *testing.T) {
	if got := AdditionalUnits(0.5, 0.5, 0.5); got != 0 {
		t.Fatalf("expected 0 units at base weight, got %d", got)
	}
	if got := AdditionalUnits(0.3, 0.5, 0.5); got != 0 {
		t.Fatalf("expected 0 units below base weight, got %d", got)
	}
}

func TestAdditionalUnitsExactMultiple(t *testing.T) {
	if got := AdditionalUnits(1.5, 0.5, 0.5); got != 2 {
		t.Fatalf("expected 2 units, got %d", got)
	}
}
