// Package ilmath values a 50/50 constant-product liquidity position under a price move.
//
// All functions are pure: no I/O, no package state, safe for concurrent use.
package ilmath

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput is matched by every validation failure returned from Valuate.
var ErrInvalidInput = errors.New("invalid input")

// ErrOutOfRange is returned when a valid position is worth more than a float64
// can hold at the current price. It matches ErrInvalidInput.
var ErrOutOfRange = fmt.Errorf("%w: position value exceeds the float64 range", ErrInvalidInput)

// InputError names the offending field of a rejected valuation request.
type InputError struct {
	Field string
	Value float64
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s must be a positive finite number, got %v", ErrInvalidInput, e.Field, e.Value)
}

func (e *InputError) Unwrap() error {
	return ErrInvalidInput
}

// PoolPosition is a deposit into a two-asset pool. InitialPrice is the price of
// asset 0 denominated in asset 1 at entry.
type PoolPosition struct {
	Token0Amount float64
	Token1Amount float64
	InitialPrice float64
}

// PriceScenario is the price of asset 0 in asset 1 at evaluation time.
type PriceScenario struct {
	CurrentPrice float64
}

// ValuationResult is the rebalanced position. Values are denominated in asset 1.
type ValuationResult struct {
	Token0InPool           float64
	Token1InPool           float64
	PoolValue              float64
	HoldValue              float64
	ImpermanentLossPercent float64
	BreakEvenFeesPercent   float64
}

// Valuate rebalances the position along x*y = k to the current price and
// compares it with holding the deposited amounts.
//
// InitialPrice is validated but does not enter the formula: the closed form
// derives the pool composition from k and the current price alone.
func Valuate(position PoolPosition, scenario PriceScenario) (ValuationResult, error) {
	if err := validate(position, scenario); err != nil {
		return ValuationResult{}, err
	}

	a, b := position.Token0Amount, position.Token1Amount
	price := scenario.CurrentPrice
	k := a * b

	token0 := math.Sqrt(k / price)
	// k over- or underflows for extreme amounts.
	if !isNormal(k / price) {
		token0 = math.Sqrt(a) * math.Sqrt(b) / math.Sqrt(price)
	}
	token1 := math.Sqrt(k * price)
	if !isNormal(k * price) {
		token1 = math.Sqrt(a) * math.Sqrt(b) * math.Sqrt(price)
	}
	poolValue := token0*price + token1
	holdValue := a*price + b
	// Clamp the rounding residue; x*y=k never beats holding.
	il := math.Min(0, (poolValue-holdValue)/holdValue*100)

	result := ValuationResult{
		Token0InPool:           token0,
		Token1InPool:           token1,
		PoolValue:              poolValue,
		HoldValue:              holdValue,
		ImpermanentLossPercent: il,
		BreakEvenFeesPercent:   math.Abs(il),
	}
	for _, v := range []float64{token0, token1, poolValue, holdValue, il} {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return ValuationResult{}, ErrOutOfRange
		}
	}
	return result, nil
}

func validate(position PoolPosition, scenario PriceScenario) error {
	fields := []struct {
		name  string
		value float64
	}{
		{"token0Amount", position.Token0Amount},
		{"token1Amount", position.Token1Amount},
		{"initialPrice", position.InitialPrice},
		{"currentPrice", scenario.CurrentPrice},
	}
	for _, f := range fields {
		if !isPositiveFinite(f.value) {
			return &InputError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

// isNormal reports whether v is finite and not subnormal.
func isNormal(v float64) bool {
	return v >= 0x1p-1022 && !math.IsInf(v, 0)
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
