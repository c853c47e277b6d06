package risk

import (
	"reflect"
	"testing"

	"yieldScope/internal/model"
)

func TestCalculateAuditedBlueChipPair(t *testing.T) {
	got := Calculate(Input{
		Protocol:    "Uniswap V3",
		TVL:         89_200_000,
		Tokens:      []string{"ETH", "USDC"},
		Audited:     true,
		PoolAgeDays: DefaultPoolAgeDays,
	})

	wantFactors := model.RiskFactors{
		SmartContract:   15,
		ImpermanentLoss: 50,
		Protocol:        5,
		Liquidity:       20,
		RewardToken:     20,
	}
	if got.Factors != wantFactors {
		t.Fatalf("factors mismatch: %+v != %+v", got.Factors, wantFactors)
	}
	if got.Score != 23 {
		t.Fatalf("score mismatch: %d", got.Score)
	}
	if got.ILRisk != model.ILRiskMedium {
		t.Fatalf("il risk mismatch: %s", got.ILRisk)
	}
	want := []string{"Impermanent loss risk: Medium"}
	if !reflect.DeepEqual(got.Warnings, want) {
		t.Fatalf("warnings mismatch: %v", got.Warnings)
	}
}

func TestCalculateUnknownYoungPool(t *testing.T) {
	got := Calculate(Input{
		Protocol:    "foo-finance",
		TVL:         50_000,
		Tokens:      []string{"PEPE", "WOJAK"},
		PoolAgeDays: 10,
		RewardToken: "XYZ",
	})

	if got.Score != 71 {
		t.Fatalf("score mismatch: %d (%+v)", got.Score, got.Factors)
	}
	if got.ILRisk != model.ILRiskHigh {
		t.Fatalf("il risk mismatch: %s", got.ILRisk)
	}
	if len(got.Warnings) != 4 {
		t.Fatalf("expected 4 warnings, got %v", got.Warnings)
	}
}

func TestImpermanentLossClasses(t *testing.T) {
	cases := []struct {
		tokens []string
		score  int
		level  model.ILRisk
	}{
		{[]string{"USDC", "USDT", "DAI"}, 5, model.ILRiskNone},
		{[]string{"USDC"}, 5, model.ILRiskNone},
		{[]string{"ETH", "STETH"}, 25, model.ILRiskLow},
		{[]string{"SOL", "USDC"}, 50, model.ILRiskMedium},
		{[]string{"CAKE", "BNB"}, 70, model.ILRiskHigh},
	}
	for _, tc := range cases {
		score, level := impermanentLossRisk(tc.tokens)
		if score != tc.score || level != tc.level {
			t.Fatalf("%v: got %d/%s want %d/%s", tc.tokens, score, level, tc.score, tc.level)
		}
	}
}

func TestProtocolKey(t *testing.T) {
	cases := map[string]string{
		"Uniswap V3":         "uniswap",
		"uniswap-v3":         "uniswap",
		"Curve":              "curve",
		"pancakeswap_amm_v3": "pancakeswap",
		"  Aave V3 ":         "aave",
	}
	for in, want := range cases {
		if got := ProtocolKey(in); got != want {
			t.Fatalf("ProtocolKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRewardRisk(t *testing.T) {
	if got := rewardRisk(""); got != 20 {
		t.Fatalf("no reward: %d", got)
	}
	if got := rewardRisk("CRV"); got != 30 {
		t.Fatalf("major reward: %d", got)
	}
	if got := rewardRisk("MOON"); got != 60 {
		t.Fatalf("unknown reward: %d", got)
	}
}
