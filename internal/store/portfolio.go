package store

import (
	"context"
	"sync"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

// PortfolioStore is a thread-safe in-memory store for portfolios and
// their transaction log. Portfolios are copied on the way in and out,
// so callers never share state with the store.
type PortfolioStore struct {
	mu         sync.RWMutex
	portfolios map[string]*domain.Portfolio
	log        *TransactionLog
}

// NewPortfolioStore creates an empty PortfolioStore.
func NewPortfolioStore() *PortfolioStore {
	return &PortfolioStore{
		portfolios: make(map[string]*domain.Portfolio),
		log:        NewTransactionLog(),
	}
}

// CreatePortfolio stores a new portfolio.
func (s *PortfolioStore) CreatePortfolio(_ context.Context, p *domain.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.portfolios[p.ID] = p.Clone()
	return nil
}

// GetPortfolio returns a copy of the portfolio. It returns
// domain.ErrPortfolioNotFound if the portfolio does not exist.
func (s *PortfolioStore) GetPortfolio(_ context.Context, id string) (*domain.Portfolio, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.portfolios[id]
	if !ok {
		return nil, domain.ErrPortfolioNotFound
	}
	return p.Clone(), nil
}

// SavePortfolio replaces a stored portfolio.
func (s *PortfolioStore) SavePortfolio(_ context.Context, p *domain.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.portfolios[p.ID]; !ok {
		return domain.ErrPortfolioNotFound
	}
	s.portfolios[p.ID] = p.Clone()
	return nil
}

// CommitPurchase saves the portfolio and appends the purchase record as
// one step.
func (s *PortfolioStore) CommitPurchase(_ context.Context, p *domain.Portfolio, r domain.PurchaseRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.portfolios[p.ID]; !ok {
		return domain.ErrPortfolioNotFound
	}
	s.portfolios[p.ID] = p.Clone()
	s.log.RecordBuy(r)
	return nil
}

// CommitSale saves the portfolio and appends the sale record as one step.
func (s *PortfolioStore) CommitSale(_ context.Context, p *domain.Portfolio, r domain.SaleRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.portfolios[p.ID]; !ok {
		return domain.ErrPortfolioNotFound
	}
	s.portfolios[p.ID] = p.Clone()
	s.log.RecordSell(r)
	return nil
}

// ListPurchases returns the portfolio's purchase history, oldest first.
func (s *PortfolioStore) ListPurchases(_ context.Context, id string) ([]domain.PurchaseRecord, error) {
	if !s.exists(id) {
		return nil, domain.ErrPortfolioNotFound
	}
	return s.log.ListBuys(id), nil
}

// ListSales returns the portfolio's sale history, oldest first.
func (s *PortfolioStore) ListSales(_ context.Context, id string) ([]domain.SaleRecord, error) {
	if !s.exists(id) {
		return nil, domain.ErrPortfolioNotFound
	}
	return s.log.ListSells(id), nil
}

// CountByClient returns how many portfolios clientID owns.
func (s *PortfolioStore) CountByClient(_ context.Context, clientID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.portfolios {
		if p.ClientID == clientID {
			n++
		}
	}
	return n, nil
}

func (s *PortfolioStore) exists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.portfolios[id]
	return ok
}
