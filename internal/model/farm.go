package model

import "time"

// PoolType classifies how a farm generates yield.
type PoolType string

const (
	PoolTypeAMM     PoolType = "AMM"
	PoolTypeLending PoolType = "Lending"
	PoolTypeStaking PoolType = "Staking"
	PoolTypeVault   PoolType = "Vault"
)

// Valid reports whether t is a known pool type.
func (t PoolType) Valid() bool {
	switch t {
	case PoolTypeAMM, PoolTypeLending, PoolTypeStaking, PoolTypeVault:
		return true
	}
	return false
}

// ILRisk is the coarse impermanent-loss exposure of a farm.
type ILRisk string

const (
	ILRiskNone   ILRisk = "None"
	ILRiskLow    ILRisk = "Low"
	ILRiskMedium ILRisk = "Medium"
	ILRiskHigh   ILRisk = "High"
)

// Farm is a liquidity-farming opportunity as listed by the catalog.
type Farm struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Protocol     string    `json:"protocol"`
	ProtocolLogo string    `json:"protocolLogo"`
	Chain        Chain     `json:"chain"`
	ChainName    string    `json:"chainName"`
	PoolAddress  string    `json:"poolAddress"`
	PoolType     PoolType  `json:"poolType"`
	Tokens       []string  `json:"tokens"`
	TVL          float64   `json:"tvl"`
	TVLChange24h float64   `json:"tvlChange24h"`
	BaseAPY      float64   `json:"baseAPY"`
	RewardAPY    float64   `json:"rewardAPY"`
	TotalAPY     float64   `json:"totalAPY"`
	RiskScore    int       `json:"riskScore"`
	ILRisk       ILRisk    `json:"ilRisk"`
	FarmURL      string    `json:"farmUrl"`
	RewardToken  string    `json:"-"`
	Audited      bool      `json:"-"`
	FirstSeen    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// RiskFactors are the per-category risk sub-scores (0-100, higher is riskier).
type RiskFactors struct {
	SmartContract   int `json:"smartContract"`
	ImpermanentLoss int `json:"impermanentLoss"`
	Protocol        int `json:"protocol"`
	Liquidity       int `json:"liquidity"`
	RewardToken     int `json:"rewardToken"`
}

// FarmDetail is a Farm with its risk breakdown and registry metadata.
type FarmDetail struct {
	Farm
	ProtocolInfo *Protocol   `json:"protocolInfo,omitempty"`
	ChainInfo    *ChainInfo  `json:"chainInfo,omitempty"`
	RiskFactors  RiskFactors `json:"riskFactors"`
	Warnings     []string    `json:"warnings"`
	CreatedAt    time.Time   `json:"createdAt"`
}
