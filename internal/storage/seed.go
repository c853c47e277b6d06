package storage

import (
	"time"

	"yieldScope/internal/model"
)

// SeedFarms returns the development dataset served when no database is
// configured, stamped with updatedAt.
func SeedFarms(updatedAt time.Time) []model.Farm {
	farms := []model.Farm{
		{
			ID:           "ethereum:curve:0xbebc44782c7db0a1a60cb6fe97d0b483032ff1c7",
			Name:         "3pool",
			Protocol:     "Curve",
			ProtocolLogo: "https://cryptologos.cc/logos/curve-dao-token-crv-logo.png",
			Chain:        model.ChainEthereum,
			PoolAddress:  "0xbebc44782c7db0a1a60cb6fe97d0b483032ff1c7",
			PoolType:     model.PoolTypeAMM,
			Tokens:       []string{"USDC", "USDT", "DAI"},
			TVL:          245_000_000,
			TVLChange24h: 2.4,
			BaseAPY:      3.2,
			RewardAPY:    1.0,
			TotalAPY:     4.2,
			RiskScore:    15,
			ILRisk:       model.ILRiskNone,
			FarmURL:      "https://curve.fi/3pool",
			RewardToken:  "CRV",
			Audited:      true,
		},
		{
			ID:           "arbitrum:uniswap:0x1234567890abcdef",
			Name:         "ETH-USDC",
			Protocol:     "Uniswap V3",
			ProtocolLogo: "https://cryptologos.cc/logos/uniswap-uni-logo.png",
			Chain:        model.ChainArbitrum,
			PoolAddress:  "0x1234567890abcdef1234567890abcdef12345678",
			PoolType:     model.PoolTypeAMM,
			Tokens:       []string{"ETH", "USDC"},
			TVL:          89_200_000,
			TVLChange24h: -0.8,
			BaseAPY:      12.3,
			RewardAPY:    6.2,
			TotalAPY:     18.5,
			RiskScore:    42,
			ILRisk:       model.ILRiskMedium,
			FarmURL:      "https://app.uniswap.org/pools",
			RewardToken:  "ARB",
			Audited:      true,
		},
		{
			ID:           "solana:raydium:0xabc123",
			Name:         "SOL-USDC",
			Protocol:     "Raydium",
			ProtocolLogo: "https://cryptologos.cc/logos/raydium-ray-logo.png",
			Chain:        model.ChainSolana,
			PoolAddress:  "Abc123xyz789DefGhiJklMnoPqrStuvWxyz12345",
			PoolType:     model.PoolTypeAMM,
			Tokens:       []string{"SOL", "USDC"},
			TVL:          34_000_000,
			TVLChange24h: 5.2,
			BaseAPY:      18.5,
			RewardAPY:    5.7,
			TotalAPY:     24.2,
			RiskScore:    55,
			ILRisk:       model.ILRiskMedium,
			FarmURL:      "https://raydium.io/pools/",
			RewardToken:  "RAY",
			Audited:      true,
		},
		{
			ID:           "ethereum:aave:0xabc789",
			Name:         "USDC Supply",
			Protocol:     "Aave V3",
			ProtocolLogo: "https://cryptologos.cc/logos/aave-aave-logo.png",
			Chain:        model.ChainEthereum,
			PoolAddress:  "0xabc789def012345678901234567890abcdef0123",
			PoolType:     model.PoolTypeLending,
			Tokens:       []string{"USDC"},
			TVL:          1_250_000_000,
			TVLChange24h: 1.1,
			BaseAPY:      4.8,
			RewardAPY:    0,
			TotalAPY:     4.8,
			RiskScore:    12,
			ILRisk:       model.ILRiskNone,
			FarmURL:      "https://app.aave.com/",
			Audited:      true,
		},
		{
			ID:           "base:aerodrome:0xdef456",
			Name:         "ETH-USDbC",
			Protocol:     "Aerodrome",
			ProtocolLogo: "https://aerodrome.finance/logo.png",
			Chain:        model.ChainBase,
			PoolAddress:  "0xdef456789012345678901234567890abcdef5678",
			PoolType:     model.PoolTypeAMM,
			Tokens:       []string{"ETH", "USDbC"},
			TVL:          45_000_000,
			TVLChange24h: 8.5,
			BaseAPY:      22.1,
			RewardAPY:    15.3,
			TotalAPY:     37.4,
			RiskScore:    48,
			ILRisk:       model.ILRiskMedium,
			FarmURL:      "https://aerodrome.finance/liquidity",
			RewardToken:  "AERO",
			Audited:      true,
		},
		{
			ID:           "bnb:pancakeswap:0x123abc",
			Name:         "CAKE-BNB",
			Protocol:     "PancakeSwap",
			ProtocolLogo: "https://cryptologos.cc/logos/pancakeswap-cake-logo.png",
			Chain:        model.ChainBNB,
			PoolAddress:  "0x123abc456def789012345678901234567890cdef",
			PoolType:     model.PoolTypeAMM,
			Tokens:       []string{"CAKE", "BNB"},
			TVL:          78_000_000,
			TVLChange24h: -2.3,
			BaseAPY:      28.5,
			RewardAPY:    12.0,
			TotalAPY:     40.5,
			RiskScore:    58,
			ILRisk:       model.ILRiskHigh,
			FarmURL:      "https://pancakeswap.finance/liquidity",
			RewardToken:  "CAKE",
			Audited:      true,
		},
	}

	for i := range farms {
		farms[i].ChainName = farms[i].Chain.DisplayName()
		farms[i].UpdatedAt = updatedAt
	}
	return farms
}
