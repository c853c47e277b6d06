package model

import "time"

// FarmSnapshot is a point-in-time reading of a farm written by the indexer.
type FarmSnapshot struct {
	FarmID    string    `json:"farm_id"`
	Timestamp time.Time `json:"timestamp"`
	TVL       float64   `json:"tvl"`
	BaseAPY   float64   `json:"base_apy"`
	RewardAPY float64   `json:"reward_apy"`
	TotalAPY  float64   `json:"total_apy"`
}

// APYHistoryPoint is one entry of a farm's yield history.
type APYHistoryPoint struct {
	Timestamp time.Time `json:"timestamp"`
	TVL       float64   `json:"tvl"`
	BaseAPY   float64   `json:"baseAPY"`
	RewardAPY float64   `json:"rewardAPY"`
	TotalAPY  float64   `json:"totalAPY"`
}
