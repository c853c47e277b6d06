package model

import "yieldScope/internal/ilmath"

// ILCalculatorRequest is the body of an impermanent-loss calculation.
type ILCalculatorRequest struct {
	Token0Amount *float64 `json:"token0Amount"`
	Token1Amount *float64 `json:"token1Amount"`
	InitialPrice *float64 `json:"initialPrice"`
	CurrentPrice *float64 `json:"currentPrice"`
}

// ILCalculatorResult is the response of an impermanent-loss calculation.
type ILCalculatorResult struct {
	ImpermanentLoss float64 `json:"impermanentLoss"`
	LPValue         float64 `json:"lpValue"`
	HoldValue       float64 `json:"holdValue"`
	Token0InLP      float64 `json:"token0InLP"`
	Token1InLP      float64 `json:"token1InLP"`
	BreakEvenFees   float64 `json:"breakEvenFees"`
}

// CurvePointResult is one sample of the IL curve.
type CurvePointResult struct {
	PriceChange float64 `json:"priceChange"`
	IL          float64 `json:"il"`
}

// BreakevenResult is the response of a breakeven estimate.
type BreakevenResult struct {
	DaysToBreakeven ilmath.Days `json:"daysToBreakeven"`
	RequiredAPY     *float64    `json:"requiredApy,omitempty"`
}
