package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

// PortfolioStore persists portfolios, their positions and the
// purchase/sale history.
type PortfolioStore struct {
	db *DB
}

// NewPortfolioStore creates a PortfolioStore backed by db.
func NewPortfolioStore(db *DB) *PortfolioStore {
	return &PortfolioStore{db: db}
}

// CreatePortfolio inserts a new portfolio with its positions.
func (s *PortfolioStore) CreatePortfolio(ctx context.Context, p *domain.Portfolio) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO portfolios (id, client_id, cash_balance, invested_value, realized_profit_loss, total_value, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.ClientID, p.CashBalance, p.InvestedValue, p.RealizedProfitLoss, p.TotalValue,
			toUnix(p.CreatedAt), toUnix(p.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert portfolio: %w", err)
		}
		return writePositions(ctx, tx, p)
	})
}

// GetPortfolio loads the portfolio and its open positions with their
// last known valuation. It returns domain.ErrPortfolioNotFound if the
// portfolio does not exist.
func (s *PortfolioStore) GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error) {
	var (
		clientID         string
		created, updated int64
	)
	p := domain.NewPortfolio(id, "", fromUnix(0))
	err := s.db.conn.QueryRowContext(ctx, `
		SELECT client_id, cash_balance, invested_value, realized_profit_loss, total_value, created_at, updated_at
		FROM portfolios WHERE id = ?`, id).
		Scan(&clientID, &p.CashBalance, &p.InvestedValue, &p.RealizedProfitLoss, &p.TotalValue, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load portfolio: %w", err)
	}
	p.ClientID = clientID
	p.CreatedAt = fromUnix(created)
	p.UpdatedAt = fromUnix(updated)

	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT ticker, asset_class, quantity, average_cost, total_invested,
			current_price, daily_price_change, daily_percent_change, current_value,
			total_gain_loss, gain_loss_percent, daily_gain_loss, opened_at, updated_at
		FROM positions WHERE portfolio_id = ? ORDER BY ticker`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pos domain.Position
		var opened, posUpdated int64
		if err := rows.Scan(&pos.Ticker, &pos.AssetClass, &pos.Quantity, &pos.AverageCost, &pos.TotalInvested,
			&pos.CurrentPrice, &pos.DailyPriceChange, &pos.DailyPercentChange, &pos.CurrentValue,
			&pos.TotalGainLoss, &pos.GainLossPercent, &pos.DailyGainLoss, &opened, &posUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan position: %w", err)
		}
		pos.OpenedAt = fromUnix(opened)
		pos.UpdatedAt = fromUnix(posUpdated)
		p.PutPosition(&pos)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}
	return p, nil
}

// SavePortfolio replaces the stored balances and positions of p.
func (s *PortfolioStore) SavePortfolio(ctx context.Context, p *domain.Portfolio) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		return savePortfolio(ctx, tx, p)
	})
}

// CommitPurchase saves p and appends the purchase record in one
// transaction.
func (s *PortfolioStore) CommitPurchase(ctx context.Context, p *domain.Portfolio, r domain.PurchaseRecord) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := savePortfolio(ctx, tx, p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO purchases (id, portfolio_id, ticker, asset_class, quantity, unit_price, total_amount, executed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.PortfolioID, string(r.Ticker), string(r.AssetClass), r.Quantity, r.UnitPrice, r.TotalAmount,
			toUnix(r.ExecutedAt))
		if err != nil {
			return fmt.Errorf("failed to insert purchase: %w", err)
		}
		return nil
	})
}

// CommitSale saves p and appends the sale record in one transaction.
func (s *PortfolioStore) CommitSale(ctx context.Context, p *domain.Portfolio, r domain.SaleRecord) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		if err := savePortfolio(ctx, tx, p); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO sales (id, portfolio_id, ticker, asset_class, quantity, unit_price, total_amount,
				cost_basis_at_sale, total_cost_basis, realized_profit_loss, executed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.PortfolioID, string(r.Ticker), string(r.AssetClass), r.Quantity, r.UnitPrice, r.TotalAmount,
			r.CostBasisAtSale, r.TotalCostBasis, r.RealizedProfitLoss, toUnix(r.ExecutedAt))
		if err != nil {
			return fmt.Errorf("failed to insert sale: %w", err)
		}
		return nil
	})
}

// ListPurchases returns the portfolio's purchases in execution order.
func (s *PortfolioStore) ListPurchases(ctx context.Context, id string) ([]domain.PurchaseRecord, error) {
	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT id, portfolio_id, ticker, asset_class, quantity, unit_price, total_amount, executed_at
		FROM purchases WHERE portfolio_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	out := make([]domain.PurchaseRecord, 0)
	for rows.Next() {
		var r domain.PurchaseRecord
		var executed int64
		if err := rows.Scan(&r.ID, &r.PortfolioID, &r.Ticker, &r.AssetClass, &r.Quantity, &r.UnitPrice, &r.TotalAmount, &executed); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		r.ExecutedAt = fromUnix(executed)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListSales returns the portfolio's sales in execution order.
func (s *PortfolioStore) ListSales(ctx context.Context, id string) ([]domain.SaleRecord, error) {
	if err := s.ensureExists(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.db.conn.QueryContext(ctx, `
		SELECT id, portfolio_id, ticker, asset_class, quantity, unit_price, total_amount,
			cost_basis_at_sale, total_cost_basis, realized_profit_loss, executed_at
		FROM sales WHERE portfolio_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	defer rows.Close()

	out := make([]domain.SaleRecord, 0)
	for rows.Next() {
		var r domain.SaleRecord
		var executed int64
		if err := rows.Scan(&r.ID, &r.PortfolioID, &r.Ticker, &r.AssetClass, &r.Quantity, &r.UnitPrice, &r.TotalAmount,
			&r.CostBasisAtSale, &r.TotalCostBasis, &r.RealizedProfitLoss, &executed); err != nil {
			return nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		r.ExecutedAt = fromUnix(executed)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PortfolioStore) ensureExists(ctx context.Context, id string) error {
	var one int
	err := s.db.conn.QueryRowContext(ctx, `SELECT 1 FROM portfolios WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrPortfolioNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to look up portfolio: %w", err)
	}
	return nil
}

// CountByClient returns how many portfolios clientID owns.
func (s *PortfolioStore) CountByClient(ctx context.Context, clientID string) (int, error) {
	var n int
	err := s.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM portfolios WHERE client_id = ?`, clientID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count portfolios: %w", err)
	}
	return n, nil
}

func savePortfolio(ctx context.Context, tx *sql.Tx, p *domain.Portfolio) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE portfolios
		SET cash_balance = ?, invested_value = ?, realized_profit_loss = ?, total_value = ?, updated_at = ?
		WHERE id = ?`,
		p.CashBalance, p.InvestedValue, p.RealizedProfitLoss, p.TotalValue, toUnix(p.UpdatedAt), p.ID)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	if n == 0 {
		return domain.ErrPortfolioNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM positions WHERE portfolio_id = ?`, p.ID); err != nil {
		return fmt.Errorf("failed to clear positions: %w", err)
	}
	return writePositions(ctx, tx, p)
}

func writePositions(ctx context.Context, tx *sql.Tx, p *domain.Portfolio) error {
	for _, pos := range p.Positions() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO positions (portfolio_id, ticker, asset_class, quantity, average_cost, total_invested,
				current_price, daily_price_change, daily_percent_change, current_value,
				total_gain_loss, gain_loss_percent, daily_gain_loss, opened_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, string(pos.Ticker), string(pos.AssetClass), pos.Quantity, pos.AverageCost, pos.TotalInvested,
			pos.CurrentPrice, pos.DailyPriceChange, pos.DailyPercentChange, pos.CurrentValue,
			pos.TotalGainLoss, pos.GainLossPercent, pos.DailyGainLoss,
			toUnix(pos.OpenedAt), toUnix(pos.UpdatedAt))
		if err != nil {
			return fmt.Errorf("failed to insert position %s: %w", pos.Ticker, err)
		}
	}
	return nil
}
