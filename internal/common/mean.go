package common

import (
	"math"

	"golang.org/x/exp/constraints"
)

// GeometricMean returns the geometric mean of values, or fallback when values is empty.
// A +Inf element makes the result +Inf. The mean is taken in log space so long
// inputs neither overflow nor underflow.
func GeometricMean[T constraints.Float](values []T, fallback T) T {
	if len(values) == 0 {
		return fallback
	}

	sum := 0.0
	for _, v := range values {
		if math.IsInf(float64(v), 1) {
			return T(math.Inf(1))
		}

		sum += math.Log(float64(v))
	}

	return T(math.Exp(sum / float64(len(values))))
}
