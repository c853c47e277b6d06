package catalog

import (
	"yieldScope/internal/model"
	"yieldScope/internal/risk"
)

var chainRegistry = []model.ChainInfo{
	{ID: model.ChainEthereum, Name: "Ethereum", ChainID: 1, ExplorerURL: "https://etherscan.io", LogoURL: "/chains/ethereum.svg", IsActive: true},
	{ID: model.ChainArbitrum, Name: "Arbitrum", ChainID: 42161, ExplorerURL: "https://arbiscan.io", LogoURL: "/chains/arbitrum.svg", IsActive: true},
	{ID: model.ChainBase, Name: "Base", ChainID: 8453, ExplorerURL: "https://basescan.org", LogoURL: "/chains/base.svg", IsActive: true},
	{ID: model.ChainBNB, Name: "BNB Chain", ChainID: 56, ExplorerURL: "https://bscscan.com", LogoURL: "/chains/bnb.svg", IsActive: true},
	{ID: model.ChainSolana, Name: "Solana", ChainID: 0, ExplorerURL: "https://solscan.io", LogoURL: "/chains/solana.svg", IsActive: true},
}

var protocolRegistry = []model.Protocol{
	{ID: "curve", Name: "Curve Finance", Website: "https://curve.fi", LogoURL: "https://cryptologos.cc/logos/curve-dao-token-crv-logo.png", AuditStatus: model.AuditAudited},
	{ID: "uniswap", Name: "Uniswap", Website: "https://uniswap.org", LogoURL: "https://cryptologos.cc/logos/uniswap-uni-logo.png", AuditStatus: model.AuditAudited},
	{ID: "aave", Name: "Aave", Website: "https://aave.com", LogoURL: "https://cryptologos.cc/logos/aave-aave-logo.png", AuditStatus: model.AuditAudited},
	{ID: "raydium", Name: "Raydium", Website: "https://raydium.io", LogoURL: "https://cryptologos.cc/logos/raydium-ray-logo.png", AuditStatus: model.AuditAudited},
	{ID: "aerodrome", Name: "Aerodrome", Website: "https://aerodrome.finance", LogoURL: "https://aerodrome.finance/logo.png", AuditStatus: model.AuditAudited},
	{ID: "pancakeswap", Name: "PancakeSwap", Website: "https://pancakeswap.finance", LogoURL: "https://cryptologos.cc/logos/pancakeswap-cake-logo.png", AuditStatus: model.AuditAudited},
	{ID: "compound", Name: "Compound", Website: "https://compound.finance", LogoURL: "https://cryptologos.cc/logos/compound-comp-logo.png", AuditStatus: model.AuditAudited},
	{ID: "balancer", Name: "Balancer", Website: "https://balancer.fi", LogoURL: "https://cryptologos.cc/logos/balancer-bal-logo.png", AuditStatus: model.AuditAudited},
}

// Chains returns the supported chains.
func Chains() []model.ChainInfo {
	return append([]model.ChainInfo(nil), chainRegistry...)
}

// Protocols returns the known protocols.
func Protocols() []model.Protocol {
	return append([]model.Protocol(nil), protocolRegistry...)
}

// LookupChain finds a chain by id.
func LookupChain(id model.Chain) (model.ChainInfo, bool) {
	for _, c := range chainRegistry {
		if c.ID == id {
			return c, true
		}
	}
	return model.ChainInfo{}, false
}

// LookupProtocol finds a protocol by id or by a display/slug name of the same
// family ("Uniswap V3", "curve-dex").
func LookupProtocol(name string) (model.Protocol, bool) {
	key := risk.ProtocolKey(name)
	for _, p := range protocolRegistry {
		if p.ID == name || p.ID == key {
			return p, true
		}
	}
	return model.Protocol{}, false
}
