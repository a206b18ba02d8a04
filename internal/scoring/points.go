package scoring

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidPoint = errors.New("invalid point")

// halfStepMax is the largest item maximum for which half points are allowed.
const halfStepMax = 5

func stepFor(maxPoint float64) float64 {
	if maxPoint <= halfStepMax {
		return 0.5
	}
	return 1
}

// ValidatePoint checks that point lies in [0, maxPoint] on the allowed step.
func ValidatePoint(point, maxPoint float64) error {
	if math.IsNaN(point) || point < 0 || point > maxPoint {
		return fmt.Errorf("%w: %v not in [0, %v]", ErrInvalidPoint, point, maxPoint)
	}
	step := stepFor(maxPoint)
	if q := point / step; q != math.Trunc(q) {
		return fmt.Errorf("%w: %v is not a multiple of %v", ErrInvalidPoint, point, step)
	}
	return nil
}

// AllowedPoints lists the selectable values for an item, ascending.
func AllowedPoints(maxPoint float64) []float64 {
	if maxPoint <= 0 {
		return []float64{0}
	}
	step := stepFor(maxPoint)
	n := int(math.Floor(maxPoint/step)) + 1
	out := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, float64(i)*step)
	}
	return out
}
