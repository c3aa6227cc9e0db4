package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/acoopRD/poc-finance/internal/models"
)

// PgxPool is the subset of pgxpool.Pool the store needs. pgxmock satisfies
// it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists holdings and orders in PostgreSQL.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore creates a store over an existing connection pool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// InitSchema creates the holdings and orders tables when missing.
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS holdings (
			symbol TEXT PRIMARY KEY,
			amount NUMERIC NOT NULL,
			cost_basis NUMERIC NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			symbol TEXT NOT NULL,
			side TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			price NUMERIC NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize ledger schema: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) GetHolding(ctx context.Context, symbol string) (models.Holding, bool, error) {
	holding := models.Holding{Symbol: symbol}
	row := s.pool.QueryRow(ctx,
		`SELECT amount, cost_basis, updated_at FROM holdings WHERE symbol = $1`, symbol)
	err := row.Scan(&holding.Amount, &holding.CostBasis, &holding.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Holding{}, false, nil
	}
	if err != nil {
		return models.Holding{}, false, fmt.Errorf("failed to fetch holding for %s: %w", symbol, err)
	}
	return holding, true, nil
}

func (s *PostgresStore) UpsertHolding(ctx context.Context, holding models.Holding) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO holdings (symbol, amount, cost_basis, updated_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (symbol) DO UPDATE SET
			amount = EXCLUDED.amount,
			cost_basis = EXCLUDED.cost_basis,
			updated_at = EXCLUDED.updated_at`,
		holding.Symbol, holding.Amount, holding.CostBasis, holding.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert holding for %s: %w", holding.Symbol, err)
	}
	return nil
}

func (s *PostgresStore) DeleteHolding(ctx context.Context, symbol string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM holdings WHERE symbol = $1`, symbol); err != nil {
		return fmt.Errorf("failed to delete holding for %s: %w", symbol, err)
	}
	return nil
}

func (s *PostgresStore) ListHoldings(ctx context.Context) ([]models.Holding, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT symbol, amount, cost_basis, updated_at FROM holdings ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []models.Holding
	for rows.Next() {
		var h models.Holding
		if err := rows.Scan(&h.Symbol, &h.Amount, &h.CostBasis, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holdings: %w", err)
	}
	return holdings, nil
}

func (s *PostgresStore) AppendOrder(ctx context.Context, order models.Order) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO orders (id, symbol, side, amount, price, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		order.ID, order.Symbol, string(order.Side), order.Amount, order.Price, order.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to append order for %s: %w", order.Symbol, err)
	}
	return nil
}

func (s *PostgresStore) ListOrders(ctx context.Context, symbol string) ([]models.Order, error) {
	query := `SELECT id, symbol, side, amount, price, created_at FROM orders`
	var args []any
	if symbol != "" {
		query += ` WHERE symbol = $1`
		args = append(args, symbol)
	}
	query += ` ORDER BY created_at`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		var side string
		if err := rows.Scan(&o.ID, &o.Symbol, &side, &o.Amount, &o.Price, &o.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		o.Side = models.OrderSide(side)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}
