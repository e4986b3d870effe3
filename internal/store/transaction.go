package store

import (
	"sync"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

// TransactionLog is a thread-safe, append-only in-memory log of executed
// buys and sells, keyed by portfolio ID. Records are chronological.
type TransactionLog struct {
	mu        sync.RWMutex
	purchases map[string][]domain.PurchaseRecord
	sales     map[string][]domain.SaleRecord
}

// NewTransactionLog creates an empty TransactionLog.
func NewTransactionLog() *TransactionLog {
	return &TransactionLog{
		purchases: make(map[string][]domain.PurchaseRecord),
		sales:     make(map[string][]domain.SaleRecord),
	}
}

// RecordBuy appends a purchase record to its portfolio's history.
func (l *TransactionLog) RecordBuy(r domain.PurchaseRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.purchases[r.PortfolioID] = append(l.purchases[r.PortfolioID], r)
}

// RecordSell appends a sale record to its portfolio's history.
func (l *TransactionLog) RecordSell(r domain.SaleRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sales[r.PortfolioID] = append(l.sales[r.PortfolioID], r)
}

// ListBuys returns the portfolio's purchases, oldest first. Returns an
// empty slice if there are none.
func (l *TransactionLog) ListBuys(portfolioID string) []domain.PurchaseRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	// Return a copy to avoid callers mutating the internal slice.
	result := make([]domain.PurchaseRecord, len(l.purchases[portfolioID]))
	copy(result, l.purchases[portfolioID])
	return result
}

// ListSells returns the portfolio's sales, oldest first. Returns an
// empty slice if there are none.
func (l *TransactionLog) ListSells(portfolioID string) []domain.SaleRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.SaleRecord, len(l.sales[portfolioID]))
	copy(result, l.sales[portfolioID])
	return result
}
