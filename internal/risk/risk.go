// Package risk scores the risk of a farm from its protocol, liquidity, tokens and rewards.
package risk

import (
	"fmt"
	"strings"

	"yieldScope/internal/model"
)

// Weights of each factor in the overall score.
const (
	weightSmartContract   = 0.25
	weightImpermanentLoss = 0.25
	weightProtocol        = 0.20
	weightLiquidity       = 0.15
	weightRewardToken     = 0.15
)

const (
	defaultTrust = 50
	// DefaultPoolAgeDays is assumed when the listing source has no creation date.
	DefaultPoolAgeDays = 365
)

var protocolTrust = map[string]int{
	"uniswap":     95,
	"aave":        95,
	"curve":       90,
	"compound":    90,
	"balancer":    85,
	"sushiswap":   80,
	"pancakeswap": 80,
	"raydium":     75,
	"orca":        75,
	"aerodrome":   70,
}

var stablecoins = []string{
	"usdc", "usdt", "dai", "frax", "lusd", "gusd",
	"busd", "tusd", "usdp", "usdd", "crvusd", "gho",
	"usde", "usdb", "usdbc",
}

var correlatedPairs = [][2]string{
	{"eth", "steth"}, {"eth", "wsteth"}, {"eth", "reth"}, {"eth", "cbeth"},
	{"btc", "wbtc"}, {"btc", "tbtc"},
	{"sol", "msol"}, {"sol", "jitosol"}, {"sol", "bsol"},
}

var majorRewardTokens = []string{"crv", "uni", "aave", "comp", "bal", "sushi", "ray", "cake"}

// Input is what the calculator needs to know about a pool.
type Input struct {
	Protocol    string
	TVL         float64
	Tokens      []string
	Audited     bool
	PoolAgeDays int
	RewardToken string
}

// Assessment is the scored result.
type Assessment struct {
	Score    int
	Factors  model.RiskFactors
	ILRisk   model.ILRisk
	Warnings []string
}

// Calculate scores a pool. The result is deterministic for a given input.
func Calculate(in Input) Assessment {
	sc := smartContractRisk(in.Audited, in.PoolAgeDays, in.TVL)
	ilScore, ilLevel := impermanentLossRisk(in.Tokens)
	protocol := protocolRisk(in.Protocol)
	liquidity := liquidityRisk(in.TVL)
	reward := rewardRisk(in.RewardToken)

	total := int(float64(sc)*weightSmartContract +
		float64(ilScore)*weightImpermanentLoss +
		float64(protocol)*weightProtocol +
		float64(liquidity)*weightLiquidity +
		float64(reward)*weightRewardToken)

	warnings := make([]string, 0, 4)
	if !in.Audited {
		warnings = append(warnings, "Unaudited smart contract")
	}
	if in.PoolAgeDays < 30 {
		warnings = append(warnings, "Pool is less than 30 days old")
	}
	if in.TVL < 100_000 {
		warnings = append(warnings, "Low TVL - high liquidity risk")
	}
	if ilLevel == model.ILRiskMedium || ilLevel == model.ILRiskHigh {
		warnings = append(warnings, fmt.Sprintf("Impermanent loss risk: %s", ilLevel))
	}

	return Assessment{
		Score: clamp(total),
		Factors: model.RiskFactors{
			SmartContract:   sc,
			ImpermanentLoss: ilScore,
			Protocol:        protocol,
			Liquidity:       liquidity,
			RewardToken:     reward,
		},
		ILRisk:   ilLevel,
		Warnings: warnings,
	}
}

// ProtocolKey reduces a display or slug protocol name ("Uniswap V3",
// "uniswap-v3") to its family key ("uniswap").
func ProtocolKey(protocol string) string {
	key := strings.ToLower(strings.TrimSpace(protocol))
	if i := strings.IndexAny(key, " -_"); i > 0 {
		key = key[:i]
	}
	return key
}

func smartContractRisk(audited bool, ageDays int, tvl float64) int {
	score := 50
	if audited {
		score -= 20
	} else {
		score += 20
	}

	switch {
	case ageDays > 365:
		score -= 15
	case ageDays > 180:
		score -= 10
	case ageDays > 90:
		score -= 5
	case ageDays < 30:
		score += 15
	}

	switch {
	case tvl > 100_000_000:
		score -= 10
	case tvl > 10_000_000:
		score -= 5
	}

	return clamp(score)
}

func impermanentLossRisk(tokens []string) (int, model.ILRisk) {
	symbols := make([]string, 0, len(tokens))
	for _, t := range tokens {
		symbols = append(symbols, strings.ToLower(t))
	}

	stable := 0
	for _, s := range symbols {
		if containsAny(s, stablecoins) {
			stable++
		}
	}

	switch {
	case len(symbols) >= 2 && stable >= 2:
		return 5, model.ILRiskNone
	case len(symbols) <= 1:
		return 5, model.ILRiskNone
	case stable == 1:
		return 50, model.ILRiskMedium
	case correlated(symbols):
		return 25, model.ILRiskLow
	default:
		return 70, model.ILRiskHigh
	}
}

func correlated(symbols []string) bool {
	for _, pair := range correlatedPairs {
		if anyContains(symbols, pair[0]) && anyContains(symbols, pair[1]) {
			return true
		}
	}
	return false
}

func protocolRisk(protocol string) int {
	trust, ok := protocolTrust[ProtocolKey(protocol)]
	if !ok {
		trust = defaultTrust
	}
	return 100 - trust
}

func liquidityRisk(tvl float64) int {
	switch {
	case tvl > 100_000_000:
		return 10
	case tvl > 50_000_000:
		return 20
	case tvl > 10_000_000:
		return 30
	case tvl > 1_000_000:
		return 50
	case tvl > 100_000:
		return 70
	default:
		return 90
	}
}

func rewardRisk(rewardToken string) int {
	if rewardToken == "" {
		return 20
	}
	if containsAny(strings.ToLower(rewardToken), majorRewardTokens) {
		return 30
	}
	return 60
}

// containsAny reports whether s contains any of subs.
func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// anyContains reports whether any of items contains sub.
func anyContains(items []string, sub string) bool {
	for _, item := range items {
		if strings.Contains(item, sub) {
			return true
		}
	}
	return false
}

func clamp(score int) int {
	if score < 1 {
		return 1
	}
	if score > 100 {
		return 100
	}
	return score
}
