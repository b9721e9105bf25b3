package history

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quantterm/backend/internal/series"
)

// Repo archives fetched daily closes in PostgreSQL. The archive stores
// raw price history only — never backtest results — and serves reads when
// the upstream is unreachable.
// ⭐ SSOT: 価格アーカイブの読み書きはここでのみ
type Repo struct {
	pool *pgxpool.Pool
}

// NewRepo creates a price archive repository.
func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// SaveSeries upserts every observation of a fetched series.
func (r *Repo) SaveSeries(ctx context.Context, mkt, symbol string, s series.Series) error {
	query := `
		INSERT INTO prices.daily (market, symbol, trade_date, close_price)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (market, symbol, trade_date)
		DO UPDATE SET close_price = EXCLUDED.close_price
	`

	batch := &pgx.Batch{}
	for _, o := range s.Observations() {
		batch.Queue(query, mkt, symbol, o.Date, o.Close)
	}

	return r.pool.SendBatch(ctx, batch).Close()
}

// GetRange retrieves archived observations for a symbol within [from, to].
func (r *Repo) GetRange(ctx context.Context, mkt, symbol string, from, to time.Time) (series.Series, error) {
	query := `
		SELECT trade_date, close_price
		FROM prices.daily
		WHERE market = $1 AND symbol = $2 AND trade_date BETWEEN $3 AND $4
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, mkt, symbol, from, to)
	if err != nil {
		return series.Series{}, err
	}
	defer rows.Close()

	var obs []series.Observation
	for rows.Next() {
		var o series.Observation
		if err := rows.Scan(&o.Date, &o.Close); err != nil {
			return series.Series{}, err
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return series.Series{}, err
	}

	return series.New(obs), nil
}
