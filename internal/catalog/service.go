// Package catalog serves the farm listing, farm details, yield history and the
// chain and protocol registries.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand/v2"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"yieldScope/internal/aggregate"
	"yieldScope/internal/cache"
	"yieldScope/internal/model"
	"yieldScope/internal/risk"
	"yieldScope/internal/storage"
)

const (
	DefaultHistoryDays = 30
	MaxHistoryDays     = 365

	historyWindow    = 24 * time.Hour
	historyVariation = 0.2
)

// Service answers catalog queries from a FarmStore, caching results when a
// cache is configured.
type Service struct {
	store  storage.FarmStore
	cache  *cache.Cache
	logger *zap.Logger
	now    func() time.Time
}

func NewService(store storage.FarmStore, c *cache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  store,
		cache:  c,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// List filters, sorts and pages the farms.
func (s *Service) List(ctx context.Context, params ListParams) (model.Page[model.Farm], error) {
	params, err := params.normalized()
	if err != nil {
		return model.Page[model.Farm]{}, err
	}
	order, err := parseSort(params.Sort)
	if err != nil {
		return model.Page[model.Farm]{}, err
	}

	key := listCacheKey(params)
	var page model.Page[model.Farm]
	if s.cache.Get(cache.BucketFarms, key, &page) {
		return page, nil
	}

	farms, err := s.store.ListFarms(ctx)
	if err != nil {
		return model.Page[model.Farm]{}, fmt.Errorf("list farms: %w", err)
	}

	filtered := slices.DeleteFunc(farms, func(f model.Farm) bool { return !params.matches(f) })
	slices.SortStableFunc(filtered, order.compare)

	total := len(filtered)
	start := min(params.Offset, total)
	end := min(start+params.Limit, total)

	page = model.Page[model.Farm]{
		Data: filtered[start:end],
		Meta: model.PageMeta{
			Total:      total,
			Page:       params.Offset/params.Limit + 1,
			PageSize:   params.Limit,
			TotalPages: (total + params.Limit - 1) / params.Limit,
		},
	}
	if page.Data == nil {
		page.Data = []model.Farm{}
	}
	s.cache.Set(cache.BucketFarms, key, page)
	return page, nil
}

func (p ListParams) matches(f model.Farm) bool {
	if len(p.Chains) > 0 && !slices.Contains(p.Chains, f.Chain) {
		return false
	}
	if len(p.Protocols) > 0 {
		name := strings.ToLower(f.Protocol)
		if !slices.ContainsFunc(p.Protocols, func(want string) bool {
			return strings.Contains(name, strings.ToLower(want))
		}) {
			return false
		}
	}
	if p.PoolType != "" && f.PoolType != p.PoolType {
		return false
	}
	if p.MinTVL > 0 && f.TVL < p.MinTVL {
		return false
	}
	if p.MaxRisk > 0 && p.MaxRisk < 100 && float64(f.RiskScore) > p.MaxRisk {
		return false
	}
	if p.StablecoinOnly && f.ILRisk != model.ILRiskNone {
		return false
	}
	return true
}

// Get returns a farm with its risk breakdown, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (model.FarmDetail, error) {
	key := "farms:detail:" + id
	var detail model.FarmDetail
	if s.cache.Get(cache.BucketFarms, key, &detail) {
		return detail, nil
	}

	farm, err := s.farm(ctx, id)
	if err != nil {
		return model.FarmDetail{}, err
	}

	assessment := risk.Calculate(risk.Input{
		Protocol:    farm.Protocol,
		TVL:         farm.TVL,
		Tokens:      farm.Tokens,
		Audited:     farm.Audited,
		PoolAgeDays: risk.DefaultPoolAgeDays,
		RewardToken: farm.RewardToken,
	})

	detail = model.FarmDetail{
		Farm:        farm,
		RiskFactors: assessment.Factors,
		Warnings:    assessment.Warnings,
		CreatedAt:   farm.FirstSeen,
	}
	if detail.CreatedAt.IsZero() {
		detail.CreatedAt = farm.UpdatedAt
	}
	if p, ok := LookupProtocol(farm.Protocol); ok {
		detail.ProtocolInfo = &p
	}
	if c, ok := LookupChain(farm.Chain); ok {
		detail.ChainInfo = &c
	}

	s.cache.Set(cache.BucketFarms, key, detail)
	return detail, nil
}

// History returns one point per day for the last days days (clamped to
// 1..365, 0 means 30). Stored snapshots are averaged per day; a farm without
// snapshots gets a synthetic series derived from its current yield.
func (s *Service) History(ctx context.Context, id string, days int) ([]model.APYHistoryPoint, error) {
	days = ClampHistoryDays(days)

	key := "history:" + id + ":" + strconv.Itoa(days)
	var points []model.APYHistoryPoint
	if s.cache.Get(cache.BucketHistory, key, &points) {
		return points, nil
	}

	farm, err := s.farm(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	since := now.Add(-time.Duration(days) * historyWindow).Truncate(historyWindow)
	snapshots, err := s.store.ListSnapshots(ctx, id, since)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	if len(snapshots) > 0 {
		points = aggregate.HistoryPoints(snapshots, historyWindow)
	} else {
		points = syntheticHistory(farm, now, days)
	}

	s.cache.Set(cache.BucketHistory, key, points)
	return points, nil
}

// ClampHistoryDays applies the history defaults and bounds.
func ClampHistoryDays(days int) int {
	switch {
	case days <= 0:
		return DefaultHistoryDays
	case days > MaxHistoryDays:
		return MaxHistoryDays
	default:
		return days
	}
}

// Invalidate drops cached farm listings, details and histories.
func (s *Service) Invalidate() {
	removed := s.cache.Invalidate(cache.BucketFarms, "*") + s.cache.Invalidate(cache.BucketHistory, "*")
	s.logger.Debug("catalog cache invalidated", zap.Int("entries", removed))
}

// Chain returns a registry chain or ErrNotFound.
func (s *Service) Chain(id string) (model.ChainInfo, error) {
	c, ok := LookupChain(model.Chain(id))
	if !ok {
		return model.ChainInfo{}, fmt.Errorf("chain %q: %w", id, ErrNotFound)
	}
	return c, nil
}

// Protocol returns a registry protocol by exact id or ErrNotFound.
func (s *Service) Protocol(id string) (model.Protocol, error) {
	for _, p := range protocolRegistry {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Protocol{}, fmt.Errorf("protocol %q: %w", id, ErrNotFound)
}

func (s *Service) Chains() []model.ChainInfo { return Chains() }
func (s *Service) Protocols() []model.Protocol { return Protocols() }

func (s *Service) farm(ctx context.Context, id string) (model.Farm, error) {
	farm, ok, err := s.store.GetFarm(ctx, id)
	if err != nil {
		return model.Farm{}, fmt.Errorf("get farm: %w", err)
	}
	if !ok {
		return model.Farm{}, fmt.Errorf("farm %q: %w", id, ErrNotFound)
	}
	return farm, nil
}

func listCacheKey(p ListParams) string {
	raw, _ := json.Marshal(p)
	return "farms:list:" + string(raw)
}

// syntheticHistory produces days+1 daily points ending today, each within
// ±10% of the farm's current values. The series depends only on the farm id.
func syntheticHistory(farm model.Farm, now time.Time, days int) []model.APYHistoryPoint {
	h := fnv.New64a()
	_, _ = h.Write([]byte(farm.ID))
	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(days)))

	today := now.Truncate(historyWindow)
	points := make([]model.APYHistoryPoint, 0, days+1)
	for i := days; i >= 0; i-- {
		variation := 1 + (rng.Float64()-0.5)*historyVariation
		points = append(points, model.APYHistoryPoint{
			Timestamp: today.Add(-time.Duration(i) * historyWindow),
			TVL:       round(farm.TVL*variation, 2),
			BaseAPY:   round(farm.BaseAPY*variation, 4),
			RewardAPY: round(farm.RewardAPY*variation, 4),
			TotalAPY:  round(farm.TotalAPY*variation, 4),
		})
	}
	return points
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
