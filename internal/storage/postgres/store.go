package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"yieldScope/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Store provides Postgres persistence for the farm catalog.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// UpsertChains inserts or updates chain metadata.
func (s *Store) UpsertChains(ctx context.Context, chains []model.ChainInfo) error {
	batch := &pgx.Batch{}
	for _, c := range chains {
		batch.Queue(`
			INSERT INTO chains (id, name, chain_id, explorer_url, logo_url, is_active, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				chain_id = EXCLUDED.chain_id,
				explorer_url = EXCLUDED.explorer_url,
				logo_url = EXCLUDED.logo_url,
				is_active = EXCLUDED.is_active,
				updated_at = now()
		`, string(c.ID), c.Name, int64(c.ChainID), c.ExplorerURL, c.LogoURL, c.IsActive)
	}
	return s.sendBatch(ctx, batch)
}

// UpsertProtocols inserts or updates protocol metadata.
func (s *Store) UpsertProtocols(ctx context.Context, protocols []model.Protocol) error {
	batch := &pgx.Batch{}
	for _, p := range protocols {
		batch.Queue(`
			INSERT INTO protocols (id, name, website, logo_url, audit_status, updated_at)
			VALUES ($1, $2, $3, $4, $5, now())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				website = EXCLUDED.website,
				logo_url = EXCLUDED.logo_url,
				audit_status = EXCLUDED.audit_status,
				updated_at = now()
		`, p.ID, p.Name, p.Website, p.LogoURL, string(p.AuditStatus))
	}
	return s.sendBatch(ctx, batch)
}

// UpsertFarms inserts or updates farms. created_at keeps its first value.
func (s *Store) UpsertFarms(ctx context.Context, farms []model.Farm) error {
	batch := &pgx.Batch{}
	for _, f := range farms {
		updatedAt := f.UpdatedAt
		if updatedAt.IsZero() {
			updatedAt = time.Now().UTC()
		}
		tokens := f.Tokens
		if tokens == nil {
			tokens = []string{}
		}
		batch.Queue(`
			INSERT INTO farms (
				id, name, protocol, protocol_logo, chain, chain_name, pool_address, pool_type,
				tokens, tvl, tvl_change_24h, base_apy, reward_apy, total_apy, risk_score,
				il_risk, farm_url, reward_token, audited, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$20)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				protocol = EXCLUDED.protocol,
				protocol_logo = EXCLUDED.protocol_logo,
				chain = EXCLUDED.chain,
				chain_name = EXCLUDED.chain_name,
				pool_address = EXCLUDED.pool_address,
				pool_type = EXCLUDED.pool_type,
				tokens = EXCLUDED.tokens,
				tvl = EXCLUDED.tvl,
				tvl_change_24h = EXCLUDED.tvl_change_24h,
				base_apy = EXCLUDED.base_apy,
				reward_apy = EXCLUDED.reward_apy,
				total_apy = EXCLUDED.total_apy,
				risk_score = EXCLUDED.risk_score,
				il_risk = EXCLUDED.il_risk,
				farm_url = EXCLUDED.farm_url,
				reward_token = EXCLUDED.reward_token,
				audited = EXCLUDED.audited,
				updated_at = EXCLUDED.updated_at
		`,
			f.ID,
			f.Name,
			f.Protocol,
			f.ProtocolLogo,
			string(f.Chain),
			f.ChainName,
			f.PoolAddress,
			string(f.PoolType),
			tokens,
			f.TVL,
			f.TVLChange24h,
			f.BaseAPY,
			f.RewardAPY,
			f.TotalAPY,
			f.RiskScore,
			string(f.ILRisk),
			f.FarmURL,
			f.RewardToken,
			f.Audited,
			updatedAt,
		)
	}
	return s.sendBatch(ctx, batch)
}

// PutSnapshots inserts snapshots, replacing any with the same farm and time.
func (s *Store) PutSnapshots(ctx context.Context, snapshots []model.FarmSnapshot) error {
	batch := &pgx.Batch{}
	for _, snap := range snapshots {
		batch.Queue(`
			INSERT INTO farm_snapshots (farm_id, ts, tvl, base_apy, reward_apy, total_apy)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (farm_id, ts) DO UPDATE SET
				tvl = EXCLUDED.tvl,
				base_apy = EXCLUDED.base_apy,
				reward_apy = EXCLUDED.reward_apy,
				total_apy = EXCLUDED.total_apy
		`, snap.FarmID, snap.Timestamp.UTC(), snap.TVL, snap.BaseAPY, snap.RewardAPY, snap.TotalAPY)
	}
	return s.sendBatch(ctx, batch)
}

const farmColumns = `
	id, name, protocol, protocol_logo, chain, chain_name, pool_address, pool_type,
	tokens, tvl, tvl_change_24h, base_apy, reward_apy, total_apy, risk_score,
	il_risk, farm_url, reward_token, audited, created_at, updated_at`

func (s *Store) ListFarms(ctx context.Context) ([]model.Farm, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+farmColumns+` FROM farms ORDER BY total_apy DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("query farms: %w", err)
	}
	defer rows.Close()

	var farms []model.Farm
	for rows.Next() {
		farm, err := scanFarm(rows)
		if err != nil {
			return nil, err
		}
		farms = append(farms, farm)
	}
	return farms, rows.Err()
}

func (s *Store) GetFarm(ctx context.Context, id string) (model.Farm, bool, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+farmColumns+` FROM farms WHERE id = $1`, id)
	farm, err := scanFarm(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Farm{}, false, nil
		}
		return model.Farm{}, false, err
	}
	return farm, true, nil
}

func (s *Store) ListSnapshots(ctx context.Context, farmID string, since time.Time) ([]model.FarmSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT farm_id, ts, tvl, base_apy, reward_apy, total_apy
		FROM farm_snapshots
		WHERE farm_id = $1 AND ts >= $2
		ORDER BY ts
	`, farmID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.FarmSnapshot
	for rows.Next() {
		var snap model.FarmSnapshot
		if err := rows.Scan(&snap.FarmID, &snap.Timestamp, &snap.TVL, &snap.BaseAPY, &snap.RewardAPY, &snap.TotalAPY); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// LoadState returns last_run_at for a name.
func (s *Store) LoadState(ctx context.Context, name string) (time.Time, bool, error) {
	if name == "" {
		return time.Time{}, false, fmt.Errorf("state name required")
	}
	var ts time.Time
	row := s.pool.QueryRow(ctx, `SELECT last_run_at FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return ts, true, nil
}

// SaveState upserts last_run_at for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts time.Time) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_run_at, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_run_at = EXCLUDED.last_run_at, updated_at = now()
	`, name, ts.UTC())
	return err
}

func (s *Store) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	if batch.Len() == 0 {
		return nil
	}
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func scanFarm(row pgx.Row) (model.Farm, error) {
	var (
		f                       model.Farm
		chain, poolType, ilRisk string
	)
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Protocol,
		&f.ProtocolLogo,
		&chain,
		&f.ChainName,
		&f.PoolAddress,
		&poolType,
		&f.Tokens,
		&f.TVL,
		&f.TVLChange24h,
		&f.BaseAPY,
		&f.RewardAPY,
		&f.TotalAPY,
		&f.RiskScore,
		&ilRisk,
		&f.FarmURL,
		&f.RewardToken,
		&f.Audited,
		&f.FirstSeen,
		&f.UpdatedAt,
	)
	if err != nil {
		return model.Farm{}, err
	}
	f.Chain = model.Chain(chain)
	f.PoolType = model.PoolType(poolType)
	f.ILRisk = model.ILRisk(ilRisk)
	return f, nil
}
