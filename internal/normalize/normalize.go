// Package normalize converts DeFiLlama yield pools into catalog farms.
package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"yieldScope/internal/defillama"
	"yieldScope/internal/model"
)

var (
	ErrUnsupportedChain = errors.New("unsupported chain")
	ErrMissingPoolID    = errors.New("missing pool id")
)

var chainAliases = map[string]model.Chain{
	"ethereum":     model.ChainEthereum,
	"arbitrum":     model.ChainArbitrum,
	"arbitrum_one": model.ChainArbitrum,
	"base":         model.ChainBase,
	"bsc":          model.ChainBNB,
	"binance":      model.ChainBNB,
	"bnb":          model.ChainBNB,
	"solana":       model.ChainSolana,
}

var auditedProtocols = map[string]bool{
	"uniswap": true, "aave": true, "curve": true, "compound": true, "balancer": true,
	"sushiswap": true, "pancakeswap": true, "raydium": true, "orca": true, "yearn": true,
	"convex": true, "lido": true, "rocket-pool": true, "marinade": true, "jito": true,
}

var (
	lendingProtocols = map[string]bool{"aave": true, "compound": true, "venus": true, "morpho": true, "kamino": true, "spark": true}
	stakingProtocols = map[string]bool{"lido": true, "rocket-pool": true, "jito": true, "marinade": true, "frax": true}
	vaultProtocols   = map[string]bool{"yearn": true, "convex": true, "beefy": true, "sommelier": true, "harvest": true}
)

var stablecoins = map[string]bool{
	"USDC": true, "USDT": true, "DAI": true, "FRAX": true, "BUSD": true, "TUSD": true, "USDB": true,
}

var protocolNames = map[string]string{
	"uniswap-v3":         "Uniswap V3",
	"uniswap-v2":         "Uniswap V2",
	"aave-v3":            "Aave V3",
	"aave-v2":            "Aave V2",
	"curve-dex":          "Curve",
	"pancakeswap-amm-v3": "PancakeSwap V3",
}

// farmURLs is matched by substring in order.
var farmURLs = []struct {
	key string
	url string
}{
	{"uniswap", "https://app.uniswap.org/pools"},
	{"aave", "https://app.aave.com/"},
	{"curve", "https://curve.fi/"},
	{"pancakeswap", "https://pancakeswap.finance/liquidity"},
	{"raydium", "https://raydium.io/liquidity/"},
	{"aerodrome", "https://aerodrome.finance/liquidity"},
}

var titleCaser = cases.Title(language.Und)

// Chain maps a DeFiLlama chain label to a supported chain.
func Chain(raw string) (model.Chain, bool) {
	c, ok := chainAliases[strings.ToLower(strings.TrimSpace(raw))]
	return c, ok
}

// Pool converts a raw pool. updatedAt stamps the farm.
func Pool(p defillama.Pool, updatedAt time.Time) (model.Farm, error) {
	chain, ok := Chain(p.Chain)
	if !ok {
		return model.Farm{}, fmt.Errorf("%w: %q", ErrUnsupportedChain, p.Chain)
	}
	poolID := strings.TrimSpace(p.PoolID)
	if poolID == "" {
		return model.Farm{}, ErrMissingPoolID
	}

	project := strings.ToLower(strings.TrimSpace(p.Project))
	tokens := ParseTokens(p.Symbol)

	farm := model.Farm{
		ID:          FarmID(chain, project, poolID),
		Name:        p.Symbol,
		Protocol:    ProtocolName(project),
		Chain:       chain,
		ChainName:   chain.DisplayName(),
		PoolAddress: PoolAddress(chain, poolID),
		PoolType:    DetectPoolType(project),
		Tokens:      tokens,
		TVL:         p.TVLUSD,
		BaseAPY:     defillama.Value(p.APYBase),
		RewardAPY:   defillama.Value(p.APYReward),
		TotalAPY:    defillama.Value(p.APY),
		ILRisk:      ILClass(tokens, p.Stablecoin),
		FarmURL:     FarmURL(project),
		Audited:     auditedProtocols[project] || auditedProtocols[familyKey(project)],
		UpdatedAt:   updatedAt,
	}
	if len(p.RewardTokens) > 0 {
		farm.RewardToken = p.RewardTokens[0]
	}
	return farm, nil
}

// FarmID builds the catalog id "chain:project:pool".
func FarmID(chain model.Chain, project, poolID string) string {
	return string(chain) + ":" + project + ":" + poolID
}

// SourcePoolID returns the DeFiLlama pool id embedded in a farm id, and whether
// it is a yields API UUID that has chart history.
func SourcePoolID(farmID string) (string, bool) {
	i := strings.LastIndex(farmID, ":")
	if i < 0 {
		return "", false
	}
	id := farmID[i+1:]
	_, err := uuid.Parse(id)
	return id, err == nil
}

// PoolAddress returns the EIP-55 checksummed address for EVM pools whose id is
// a hex address (optionally suffixed "-chain"), otherwise the id unchanged.
func PoolAddress(chain model.Chain, poolID string) string {
	if !chain.IsEVM() {
		return poolID
	}
	candidate, _, _ := strings.Cut(poolID, "-")
	if common.IsHexAddress(candidate) {
		return common.HexToAddress(candidate).Hex()
	}
	return poolID
}

// ParseTokens splits a pool symbol into upper-case token symbols.
func ParseTokens(symbol string) []string {
	clean := strings.ReplaceAll(symbol, "-LP", "")
	clean = strings.ReplaceAll(clean, " LP", "")

	for _, sep := range []string{"-", "/", "_"} {
		if !strings.Contains(clean, sep) {
			continue
		}
		parts := strings.Split(clean, sep)
		tokens := make([]string, 0, len(parts))
		for _, part := range parts {
			tokens = append(tokens, strings.ToUpper(strings.TrimSpace(part)))
		}
		return tokens
	}
	return []string{strings.ToUpper(clean)}
}

// DetectPoolType classifies a project slug.
func DetectPoolType(project string) model.PoolType {
	project = strings.ToLower(project)
	family := familyKey(project)
	switch {
	case lendingProtocols[project] || lendingProtocols[family]:
		return model.PoolTypeLending
	case stakingProtocols[project] || stakingProtocols[family]:
		return model.PoolTypeStaking
	case vaultProtocols[project] || vaultProtocols[family]:
		return model.PoolTypeVault
	default:
		return model.PoolTypeAMM
	}
}

// ILClass is the listing-time impermanent loss class.
func ILClass(tokens []string, stablecoin bool) model.ILRisk {
	if stablecoin || len(tokens) <= 1 {
		return model.ILRiskNone
	}
	stable := 0
	for _, t := range tokens {
		if stablecoins[t] {
			stable++
		}
	}
	switch {
	case stable >= 2:
		return model.ILRiskNone
	case stable == 1:
		return model.ILRiskMedium
	default:
		return model.ILRiskHigh
	}
}

// ProtocolName returns the display name of a project slug.
func ProtocolName(project string) string {
	project = strings.ToLower(project)
	if name, ok := protocolNames[project]; ok {
		return name
	}
	return titleCaser.String(project)
}

// FarmURL returns the app page for a project.
func FarmURL(project string) string {
	project = strings.ToLower(project)
	for _, entry := range farmURLs {
		if strings.Contains(project, entry.key) {
			return entry.url
		}
	}
	return "https://defillama.com/protocol/" + project
}

// familyKey drops version suffixes: "aave-v3" -> "aave", "rocket-pool" stays.
func familyKey(project string) string {
	parts := strings.Split(project, "-")
	for len(parts) > 1 && isVersionPart(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "-")
}

func isVersionPart(s string) bool {
	switch s {
	case "dex", "amm", "clmm", "cpmm", "lending", "pools", "finance":
		return true
	}
	if len(s) >= 2 && s[0] == 'v' {
		for _, r := range s[1:] {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	}
	return false
}
