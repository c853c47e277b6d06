package catalog

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yieldScope/internal/model"
)

func TestValidateListQueryDefaults(t *testing.T) {
	p, err := ValidateListQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, ListParams{Sort: DefaultSort, Limit: DefaultLimit}, p)
}

func TestValidateListQueryParses(t *testing.T) {
	q, err := url.ParseQuery("chains=ethereum,base&chains=solana&protocols=curve&protocols[]=aave" +
		"&poolType=AMM&minTvl=1000.5&maxRisk=40&stablecoinOnly=true&sort=tvl&limit=10&offset=20")
	require.NoError(t, err)

	p, err := ValidateListQuery(q)
	require.NoError(t, err)
	assert.Equal(t, []model.Chain{model.ChainEthereum, model.ChainBase, model.ChainSolana}, p.Chains)
	assert.Equal(t, []string{"curve", "aave"}, p.Protocols)
	assert.Equal(t, model.PoolTypeAMM, p.PoolType)
	assert.Equal(t, 1000.5, p.MinTVL)
	assert.Equal(t, 40.0, p.MaxRisk)
	assert.True(t, p.StablecoinOnly)
	assert.Equal(t, "tvl", p.Sort)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, 20, p.Offset)
}

func TestValidateListQueryRejects(t *testing.T) {
	cases := map[string]string{
		"chains=polygon":       "chains",
		"poolType=Farm":        "poolType",
		"minTvl=-1":            "minTvl",
		"minTvl=abc":           "minTvl",
		"maxRisk=0":            "maxRisk",
		"maxRisk=101":          "maxRisk",
		"maxRisk=NaN":          "maxRisk",
		"stablecoinOnly=maybe": "stablecoinOnly",
		"sort=-apy":            "sort",
		"limit=0":              "limit",
		"limit=500":            "limit",
		"limit=2.5":            "limit",
		"offset=-3":            "offset",
	}
	for raw, param := range cases {
		q, err := url.ParseQuery(raw)
		require.NoError(t, err)

		_, err = ValidateListQuery(q)
		if !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("%s: expected ErrInvalidQuery, got %v", raw, err)
		}
		var qe *QueryError
		require.ErrorAs(t, err, &qe, raw)
		assert.Equal(t, param, qe.Param, raw)
	}
}

func TestParseSortDirection(t *testing.T) {
	asc, err := parseSort("totalAPY")
	require.NoError(t, err)
	assert.False(t, asc.desc)

	desc, err := parseSort("-totalAPY")
	require.NoError(t, err)
	assert.True(t, desc.desc)

	def, err := parseSort("")
	require.NoError(t, err)
	assert.True(t, def.desc)

	lo := model.Farm{TotalAPY: 1}
	hi := model.Farm{TotalAPY: 2}
	assert.Negative(t, asc.compare(lo, hi))
	assert.Positive(t, desc.compare(lo, hi))
}
