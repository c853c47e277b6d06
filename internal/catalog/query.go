package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"yieldScope/internal/model"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidQuery = errors.New("invalid query")
)

const (
	DefaultSort  = "-totalAPY"
	DefaultLimit = 50
	MaxLimit     = 100
)

// QueryError reports an invalid listing parameter.
type QueryError struct {
	Param  string
	Reason string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %s", e.Param, e.Reason)
}

func (e *QueryError) Unwrap() error { return ErrInvalidQuery }

// ListParams filters, sorts and pages the farm listing. Zero values disable a filter.
type ListParams struct {
	Chains         []model.Chain  `json:"chains,omitempty"`
	Protocols      []string       `json:"protocols,omitempty"`
	PoolType       model.PoolType `json:"poolType,omitempty"`
	MinTVL         float64        `json:"minTvl,omitempty"`
	MaxRisk        float64        `json:"maxRisk,omitempty"`
	StablecoinOnly bool           `json:"stablecoinOnly,omitempty"`
	Sort           string         `json:"sort,omitempty"`
	Limit          int            `json:"limit,omitempty"`
	Offset         int            `json:"offset,omitempty"`
}

// sortFields maps the public sort keys to the farm value they order by.
var sortFields = map[string]func(model.Farm) float64{
	"totalAPY":     func(f model.Farm) float64 { return f.TotalAPY },
	"baseAPY":      func(f model.Farm) float64 { return f.BaseAPY },
	"rewardAPY":    func(f model.Farm) float64 { return f.RewardAPY },
	"tvl":          func(f model.Farm) float64 { return f.TVL },
	"tvlChange24h": func(f model.Farm) float64 { return f.TVLChange24h },
	"riskScore":    func(f model.Farm) float64 { return float64(f.RiskScore) },
}

type sortOrder struct {
	value func(model.Farm) float64
	desc  bool
}

func (o sortOrder) compare(a, b model.Farm) int {
	if o.desc {
		return cmp.Compare(o.value(b), o.value(a))
	}
	return cmp.Compare(o.value(a), o.value(b))
}

// parseSort reads "-field" as descending and "field" as ascending.
func parseSort(s string) (sortOrder, error) {
	if s == "" {
		s = DefaultSort
	}
	field, desc := strings.CutPrefix(s, "-")
	value, ok := sortFields[field]
	if !ok {
		return sortOrder{}, &QueryError{Param: "sort", Reason: fmt.Sprintf("unknown field %q", field)}
	}
	return sortOrder{value: value, desc: desc}, nil
}

// normalized fills defaults and checks ranges.
func (p ListParams) normalized() (ListParams, error) {
	if p.Sort == "" {
		p.Sort = DefaultSort
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit < 1 || p.Limit > MaxLimit {
		return p, &QueryError{Param: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxLimit)}
	}
	if p.Offset < 0 {
		return p, &QueryError{Param: "offset", Reason: "must be at least 0"}
	}
	if p.MinTVL < 0 {
		return p, &QueryError{Param: "minTvl", Reason: "must be at least 0"}
	}
	if p.MaxRisk != 0 && (p.MaxRisk < 1 || p.MaxRisk > 100) {
		return p, &QueryError{Param: "maxRisk", Reason: "must be between 1 and 100"}
	}
	if p.PoolType != "" && !p.PoolType.Valid() {
		return p, &QueryError{Param: "poolType", Reason: fmt.Sprintf("unknown pool type %q", p.PoolType)}
	}
	for _, c := range p.Chains {
		if !c.Valid() {
			return p, &QueryError{Param: "chains", Reason: fmt.Sprintf("unknown chain %q", c)}
		}
	}
	if _, err := parseSort(p.Sort); err != nil {
		return p, err
	}
	return p, nil
}

// ValidateListQuery parses the farm listing query string. List parameters may
// be repeated or comma separated.
func ValidateListQuery(q url.Values) (ListParams, error) {
	var p ListParams

	for _, c := range listValues(q, "chains") {
		p.Chains = append(p.Chains, model.Chain(c))
	}
	p.Protocols = listValues(q, "protocols")
	p.PoolType = model.PoolType(q.Get("poolType"))
	p.Sort = q.Get("sort")

	var err error
	if p.MinTVL, err = floatParam(q, "minTvl"); err != nil {
		return ListParams{}, err
	}
	if p.MaxRisk, err = floatParam(q, "maxRisk"); err != nil {
		return ListParams{}, err
	}
	if v := q.Get("stablecoinOnly"); v != "" {
		if p.StablecoinOnly, err = strconv.ParseBool(v); err != nil {
			return ListParams{}, &QueryError{Param: "stablecoinOnly", Reason: "must be a boolean"}
		}
	}
	if p.Limit, err = intParam(q, "limit"); err != nil {
		return ListParams{}, err
	}
	if q.Has("limit") && p.Limit == 0 {
		return ListParams{}, &QueryError{Param: "limit", Reason: fmt.Sprintf("must be between 1 and %d", MaxLimit)}
	}
	if p.Offset, err = intParam(q, "offset"); err != nil {
		return ListParams{}, err
	}
	if q.Has("maxRisk") && p.MaxRisk == 0 {
		return ListParams{}, &QueryError{Param: "maxRisk", Reason: "must be between 1 and 100"}
	}

	return p.normalized()
}

func listValues(q url.Values, key string) []string {
	var out []string
	for _, raw := range append(q[key], q[key+"[]"]...) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func floatParam(q url.Values, key string) (float64, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &QueryError{Param: key, Reason: "must be a number"}
	}
	return f, nil
}

func intParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &QueryError{Param: key, Reason: "must be an integer"}
	}
	return n, nil
}
