package defillama

import "time"

// Pool is one entry of the yields /pools listing.
type Pool struct {
	Chain            string   `json:"chain"`
	Project          string   `json:"project"`
	Symbol           string   `json:"symbol"`
	PoolID           string   `json:"pool"`
	TVLUSD           float64  `json:"tvlUsd"`
	APY              *float64 `json:"apy"`
	APYBase          *float64 `json:"apyBase"`
	APYReward        *float64 `json:"apyReward"`
	APYPct1D         *float64 `json:"apyPct1D"`
	RewardTokens     []string `json:"rewardTokens"`
	UnderlyingTokens []string `json:"underlyingTokens"`
	Stablecoin       bool     `json:"stablecoin"`
	PoolMeta         *string  `json:"poolMeta"`
}

// ChartPoint is one entry of the /chart/{pool} history.
type ChartPoint struct {
	Timestamp time.Time `json:"timestamp"`
	TVLUSD    float64   `json:"tvlUsd"`
	APY       *float64  `json:"apy"`
	APYBase   *float64  `json:"apyBase"`
	APYReward *float64  `json:"apyReward"`
}

type envelope[T any] struct {
	Status string `json:"status"`
	Data   []T    `json:"data"`
}

// Value returns the pointed-to value or 0.
func Value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
