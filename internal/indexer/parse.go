package indexer

import (
	"fmt"
	"strings"

	"yieldScope/internal/model"
	"yieldScope/internal/normalize"
)

// ParseChains converts chain names or DeFiLlama aliases ("bsc", "Arbitrum")
// into supported chains, dropping duplicates. An empty input selects every chain.
func ParseChains(inputs []string) ([]model.Chain, error) {
	chains := make([]model.Chain, 0, len(inputs))
	seen := make(map[model.Chain]bool, len(inputs))
	for _, input := range inputs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c, ok := normalize.Chain(input)
		if !ok {
			return nil, fmt.Errorf("unsupported chain: %s", input)
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		chains = append(chains, c)
	}
	if len(chains) == 0 {
		return append([]model.Chain(nil), model.Chains...), nil
	}
	return chains, nil
}
