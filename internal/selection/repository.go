package selection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/stockreco/internal/contracts"
)

// Repository handles recommendation persistence
// ⭐ SSOT: 추천 결과 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new selection repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ contracts.RecommendationStore = (*Repository)(nil)

// Replace atomically replaces every recommendation of asOf
// 트랜잭션: 삭제 → 일괄 삽입 → 커밋. 실패 시 기존 결과 유지.
func (r *Repository) Replace(ctx context.Context, asOf time.Time, recs []contracts.Recommendation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return unavailable("begin", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM reco.recommendations WHERE as_of = $1", asOf); err != nil {
		return unavailable("delete", err)
	}

	if len(recs) > 0 {
		query := `
			INSERT INTO reco.recommendations (
				id, as_of, symbol, rank, score, rationale, factors
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
		`

		batch := &pgx.Batch{}
		for _, rec := range recs {
			factorsJSON, err := json.Marshal(rec.Factors)
			if err != nil {
				return fmt.Errorf("marshal factors for %s: %w", rec.Symbol, err)
			}
			batch.Queue(query, rec.ID, asOf, rec.Symbol, rec.Rank, rec.Score, rec.Rationale, factorsJSON)
		}

		br := tx.SendBatch(ctx, batch)
		for range recs {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return unavailable("insert", err)
			}
		}
		if err := br.Close(); err != nil {
			return unavailable("insert", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return unavailable("commit", err)
	}

	return nil
}

// List retrieves recommendations for a date in rank order
func (r *Repository) List(ctx context.Context, asOf time.Time) ([]contracts.Recommendation, error) {
	query := `
		SELECT id, as_of, symbol, rank, score, rationale, factors
		FROM reco.recommendations
		WHERE as_of = $1
		ORDER BY rank ASC
	`

	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, unavailable("list", err)
	}
	defer rows.Close()

	results := make([]contracts.Recommendation, 0)
	for rows.Next() {
		var rec contracts.Recommendation
		var factorsJSON []byte
		if err := rows.Scan(&rec.ID, &rec.AsOf, &rec.Symbol, &rec.Rank, &rec.Score, &rec.Rationale, &factorsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		if len(factorsJSON) > 0 {
			if err := json.Unmarshal(factorsJSON, &rec.Factors); err != nil {
				return nil, fmt.Errorf("failed to unmarshal factors: %w", err)
			}
		}
		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// LatestAsOf returns the most recent as-of date with stored recommendations
func (r *Repository) LatestAsOf(ctx context.Context) (time.Time, error) {
	var asOf *time.Time
	err := r.pool.QueryRow(ctx, "SELECT MAX(as_of) FROM reco.recommendations").Scan(&asOf)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, unavailable("latest", err)
	}
	if asOf == nil {
		return time.Time{}, nil // 저장된 결과 없음
	}
	return *asOf, nil
}

func unavailable(op string, err error) error {
	return &contracts.StoreUnavailableError{Store: "recommendation", Op: op, Err: err}
}
