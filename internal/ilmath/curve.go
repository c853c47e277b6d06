package ilmath

import (
	"fmt"
	"iter"
	"math"
)

// CurvePoint is one sample of impermanent loss against price change, both in percent.
type CurvePoint struct {
	PriceChangePercent     float64
	ImpermanentLossPercent float64
}

// ImpermanentLossForRatio returns the impermanent loss in percent for a price
// ratio r = currentPrice / initialPrice: (2*sqrt(r)/(1+r) - 1) * 100.
// Non-positive or non-finite ratios yield 0.
func ImpermanentLossForRatio(r float64) float64 {
	if !isPositiveFinite(r) {
		return 0
	}
	return (2*math.Sqrt(r)/(1+r) - 1) * 100
}

// GenerateCurve returns pointCount samples evenly spaced in ratio space from
// minRatio to maxRatio inclusive. The sequence is lazy and may be ranged over
// any number of times.
func GenerateCurve(minRatio, maxRatio float64, pointCount int) (iter.Seq[CurvePoint], error) {
	if !isPositiveFinite(minRatio) || !isPositiveFinite(maxRatio) {
		return nil, fmt.Errorf("%w: curve ratios must be positive finite numbers", ErrInvalidInput)
	}
	if maxRatio <= minRatio {
		return nil, fmt.Errorf("%w: max ratio %v must exceed min ratio %v", ErrInvalidInput, maxRatio, minRatio)
	}
	if pointCount < 1 {
		return nil, fmt.Errorf("%w: point count must be at least 1, got %d", ErrInvalidInput, pointCount)
	}

	var step float64
	if pointCount > 1 {
		step = (maxRatio - minRatio) / float64(pointCount-1)
	}

	return func(yield func(CurvePoint) bool) {
		for i := 0; i < pointCount; i++ {
			ratio := minRatio + float64(i)*step
			if pointCount > 1 && i == pointCount-1 {
				ratio = maxRatio
			}
			point := CurvePoint{
				PriceChangePercent:     (ratio - 1) * 100,
				ImpermanentLossPercent: ImpermanentLossForRatio(ratio),
			}
			if !yield(point) {
				return
			}
		}
	}, nil
}
