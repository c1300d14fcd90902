package s0_data

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/stockreco/internal/contracts"
)

// HistoryRepository implements contracts.HistoryStore on PostgreSQL
// ⭐ SSOT: 가격 이력 저장소는 여기서만
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

var _ contracts.HistoryStore = (*HistoryRepository)(nil)

// Symbols returns every symbol with a price on or before asOf
func (r *HistoryRepository) Symbols(ctx context.Context, asOf time.Time) ([]string, error) {
	query := `
		SELECT DISTINCT symbol
		FROM reco.daily_prices
		WHERE trade_date <= $1
		ORDER BY symbol
	`

	rows, err := r.pool.Query(ctx, query, asOf)
	if err != nil {
		return nil, unavailable("symbols", err)
	}
	defer rows.Close()

	symbols := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, unavailable("symbols", err)
		}
		symbols = append(symbols, s)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("symbols", err)
	}
	return symbols, nil
}

// History retrieves prices with from < trade_date <= to ordered by date
func (r *HistoryRepository) History(ctx context.Context, symbol string, from, to time.Time) ([]contracts.PricePoint, error) {
	query := `
		SELECT symbol, trade_date, close_price, volume, market_cap
		FROM reco.daily_prices
		WHERE symbol = $1 AND trade_date > $2 AND trade_date <= $3
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, unavailable("history", err)
	}
	defer rows.Close()

	points := make([]contracts.PricePoint, 0)
	for rows.Next() {
		var p contracts.PricePoint
		if err := rows.Scan(&p.Symbol, &p.Timestamp, &p.Close, &p.Volume, &p.MarketCap); err != nil {
			return nil, unavailable("history", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("history", err)
	}
	return points, nil
}

// SaveBatch upserts price points
func (r *HistoryRepository) SaveBatch(ctx context.Context, points []contracts.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	query := `
		INSERT INTO reco.daily_prices (symbol, trade_date, close_price, volume, market_cap)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			close_price = EXCLUDED.close_price,
			volume = EXCLUDED.volume,
			market_cap = EXCLUDED.market_cap`

	batch := &pgx.Batch{}
	for _, p := range points {
		batch.Queue(query, p.Symbol, p.Timestamp, p.Close, p.Volume, p.MarketCap)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range points {
		if _, err := br.Exec(); err != nil {
			return unavailable("save", err)
		}
	}
	return nil
}

func unavailable(op string, err error) error {
	return &contracts.StoreUnavailableError{Store: "history", Op: op, Err: err}
}
