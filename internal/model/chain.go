package model

// Chain identifies a supported network.
type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainArbitrum Chain = "arbitrum"
	ChainBase     Chain = "base"
	ChainBNB      Chain = "bnb"
	ChainSolana   Chain = "solana"
)

// Chains lists every supported chain in display order.
var Chains = []Chain{ChainEthereum, ChainArbitrum, ChainBase, ChainBNB, ChainSolana}

// Valid reports whether c is a supported chain.
func (c Chain) Valid() bool {
	for _, known := range Chains {
		if c == known {
			return true
		}
	}
	return false
}

// IsEVM reports whether pool addresses on c are 20-byte hex addresses.
func (c Chain) IsEVM() bool {
	return c.Valid() && c != ChainSolana
}

var chainNames = map[Chain]string{
	ChainEthereum: "Ethereum",
	ChainArbitrum: "Arbitrum",
	ChainBase:     "Base",
	ChainBNB:      "BNB Chain",
	ChainSolana:   "Solana",
}

// DisplayName returns the human readable chain name, or the id itself when unknown.
func (c Chain) DisplayName() string {
	if name, ok := chainNames[c]; ok {
		return name
	}
	return string(c)
}

// ChainInfo describes a supported chain.
type ChainInfo struct {
	ID          Chain  `json:"id"`
	Name        string `json:"name"`
	ChainID     uint64 `json:"chainId"`
	ExplorerURL string `json:"explorerUrl"`
	LogoURL     string `json:"logoUrl"`
	IsActive    bool   `json:"isActive"`
}
