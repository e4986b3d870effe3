// Package ledger consolidates deposits, withdrawals, buys and sells
// against a portfolio's cash balance and positions.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

// Repository persists portfolios and their transaction history.
// GetPortfolio must return a copy the caller may mutate freely, and the
// Commit methods must persist the portfolio and the record atomically.
type Repository interface {
	CreatePortfolio(ctx context.Context, p *domain.Portfolio) error
	GetPortfolio(ctx context.Context, id string) (*domain.Portfolio, error)
	SavePortfolio(ctx context.Context, p *domain.Portfolio) error
	CommitPurchase(ctx context.Context, p *domain.Portfolio, r domain.PurchaseRecord) error
	CommitSale(ctx context.Context, p *domain.Portfolio, r domain.SaleRecord) error
	ListPurchases(ctx context.Context, id string) ([]domain.PurchaseRecord, error)
	ListSales(ctx context.Context, id string) ([]domain.SaleRecord, error)
	CountByClient(ctx context.Context, clientID string) (int, error)
}

// ClientDirectory looks up and removes portfolio owners.
type ClientDirectory interface {
	Get(ctx context.Context, id string) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}

// QuoteProvider supplies live quotes. Implementations should fail with
// domain.ErrQuoteUnavailable or domain.ErrMalformedQuote.
type QuoteProvider interface {
	GetQuote(ctx context.Context, ticker domain.Ticker) (domain.Quote, error)
}

// SnapshotCache holds enriched portfolio snapshots between reads.
type SnapshotCache interface {
	Get(id string) (*domain.Snapshot, bool)
	Put(s *domain.Snapshot)
	Evict(id string)
}

// BuyOrder describes a purchase request.
type BuyOrder struct {
	Ticker     domain.Ticker
	Quantity   int64
	UnitPrice  decimal.Decimal
	AssetClass domain.AssetClass
}

// SellOrder describes a sale request. An empty AssetClass matches the
// held position's class.
type SellOrder struct {
	Ticker     domain.Ticker
	Quantity   int64
	SalePrice  decimal.Decimal
	AssetClass domain.AssetClass
}

// Ledger applies operations to portfolios. Operations on the same
// portfolio are serialized; different portfolios proceed concurrently.
// Every mutating operation validates and checks invariants on a private
// copy before anything is persisted.
type Ledger struct {
	repo         Repository
	clients      ClientDirectory
	quotes       QuoteProvider
	cache        SnapshotCache
	locks        *lockArena
	owners       sync.RWMutex // Create vs DeleteClient
	quoteTimeout time.Duration
	now          func() time.Time
	log          zerolog.Logger
}

// New creates a Ledger. Each quote lookup is bounded by quoteTimeout.
func New(
	repo Repository,
	clients ClientDirectory,
	quotes QuoteProvider,
	cache SnapshotCache,
	quoteTimeout time.Duration,
	log zerolog.Logger,
) *Ledger {
	return &Ledger{
		repo:         repo,
		clients:      clients,
		quotes:       quotes,
		cache:        cache,
		locks:        newLockArena(),
		quoteTimeout: quoteTimeout,
		now:          time.Now,
		log:          log.With().Str("component", "ledger").Logger(),
	}
}

// Create opens an empty portfolio for clientID.
func (l *Ledger) Create(ctx context.Context, clientID string) (*domain.Snapshot, error) {
	l.owners.RLock()
	defer l.owners.RUnlock()

	client, err := l.clients.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	p := domain.NewPortfolio(uuid.New().String(), client.ID, l.now())
	if err := l.verify(p, "create"); err != nil {
		return nil, err
	}
	if err := l.repo.CreatePortfolio(ctx, p); err != nil {
		return nil, err
	}

	l.log.Info().
		Str("portfolio_id", p.ID).
		Str("client_id", client.ID).
		Str("op", "create").
		Msg("portfolio created")

	return domain.NewSnapshot(p, client.Summary()), nil
}

// DeleteClient removes a client that owns no portfolio. It fails with
// domain.ErrClientHasPortfolios while any portfolio references the client.
func (l *Ledger) DeleteClient(ctx context.Context, clientID string) error {
	l.owners.Lock()
	defer l.owners.Unlock()

	if _, err := l.clients.Get(ctx, clientID); err != nil {
		return err
	}
	n, err := l.repo.CountByClient(ctx, clientID)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: client %s owns %d portfolio(s)", domain.ErrClientHasPortfolios, clientID, n)
	}
	if err := l.clients.Delete(ctx, clientID); err != nil {
		return err
	}

	l.log.Info().
		Str("client_id", clientID).
		Str("op", "delete_client").
		Msg("client deleted")
	return nil
}

// Deposit credits amount to the portfolio's cash balance.
func (l *Ledger) Deposit(ctx context.Context, id string, amount decimal.Decimal) (*domain.Snapshot, error) {
	amount, err := domain.ParseAmount("amount", amount)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	p, err := l.repo.GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := l.owner(ctx, p)
	if err != nil {
		return nil, err
	}
	p.Deposit(amount, l.now())

	if err := l.save(ctx, p, "deposit"); err != nil {
		return nil, err
	}
	l.log.Info().
		Str("portfolio_id", id).
		Str("op", "deposit").
		Str("amount", amount.StringFixed(domain.MoneyScale)).
		Msg("cash deposited")

	return domain.NewSnapshot(p, owner), nil
}

// Withdraw debits amount from the portfolio's cash balance. It fails
// with domain.ErrInsufficientBalance when amount exceeds the balance.
func (l *Ledger) Withdraw(ctx context.Context, id string, amount decimal.Decimal) (*domain.Snapshot, error) {
	amount, err := domain.ParseAmount("amount", amount)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	p, err := l.repo.GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := l.owner(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := p.Withdraw(amount, l.now()); err != nil {
		return nil, err
	}

	if err := l.save(ctx, p, "withdraw"); err != nil {
		return nil, err
	}
	l.log.Info().
		Str("portfolio_id", id).
		Str("op", "withdraw").
		Str("amount", amount.StringFixed(domain.MoneyScale)).
		Msg("cash withdrawn")

	return domain.NewSnapshot(p, owner), nil
}

// Buy purchases o.Quantity units of o.Ticker at o.UnitPrice, opening the
// position or folding the units into its weighted-average cost. The
// balance is checked before any record is written.
func (l *Ledger) Buy(ctx context.Context, id string, o BuyOrder) (*domain.Snapshot, error) {
	ticker, class, err := validateOrder(o.Ticker, o.AssetClass, o.Quantity)
	if err != nil {
		return nil, err
	}
	unitPrice, err := domain.ParseAmount("unit_price", o.UnitPrice)
	if err != nil {
		return nil, err
	}
	if class == "" {
		return nil, &domain.ValidationError{Message: "asset_class is required"}
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	p, err := l.repo.GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := l.owner(ctx, p)
	if err != nil {
		return nil, err
	}

	q, err := l.fetchQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	cost := domain.Amount(unitPrice, o.Quantity)
	if err := p.CanAfford(cost); err != nil {
		return nil, err
	}

	now := l.now()
	pos, held := p.Position(ticker)
	if held {
		if pos.AssetClass != class {
			return nil, classMismatch(ticker, pos.AssetClass, class)
		}
		if err := pos.ApplyBuy(o.Quantity, unitPrice, q, now); err != nil {
			return nil, err
		}
	} else {
		pos, err = domain.NewPosition(ticker, class, o.Quantity, unitPrice, q, now)
		if err != nil {
			return nil, err
		}
	}
	p.PutPosition(pos)
	if err := p.SettlePurchase(cost, now); err != nil {
		return nil, err
	}
	if err := l.verify(p, "buy"); err != nil {
		return nil, err
	}

	record := domain.PurchaseRecord{
		ID:          uuid.New().String(),
		PortfolioID: p.ID,
		Ticker:      ticker,
		AssetClass:  class,
		Quantity:    o.Quantity,
		UnitPrice:   unitPrice,
		TotalAmount: cost,
		ExecutedAt:  now,
	}
	if err := l.repo.CommitPurchase(ctx, p, record); err != nil {
		return nil, err
	}
	l.cache.Evict(id)

	l.log.Info().
		Str("portfolio_id", id).
		Str("op", "buy").
		Str("ticker", string(ticker)).
		Int64("quantity", o.Quantity).
		Str("total", cost.StringFixed(domain.MoneyScale)).
		Msg("purchase committed")

	return domain.NewSnapshot(p, owner), nil
}

// Sell sells o.Quantity units of a held position at o.SalePrice,
// realizing profit or loss against the average cost. A position sold
// down to zero is closed.
func (l *Ledger) Sell(ctx context.Context, id string, o SellOrder) (*domain.Snapshot, error) {
	ticker, class, err := validateOrder(o.Ticker, o.AssetClass, o.Quantity)
	if err != nil {
		return nil, err
	}
	salePrice, err := domain.ParseAmount("sale_price", o.SalePrice)
	if err != nil {
		return nil, err
	}

	unlock := l.locks.Lock(id)
	defer unlock()

	p, err := l.repo.GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := l.owner(ctx, p)
	if err != nil {
		return nil, err
	}

	pos, held := p.Position(ticker)
	if !held {
		return nil, fmt.Errorf("%w: %s is not held in portfolio %s", domain.ErrAssetNotFound, ticker, id)
	}
	if class != "" && class != pos.AssetClass {
		return nil, classMismatch(ticker, pos.AssetClass, class)
	}
	if o.Quantity > pos.Quantity {
		return nil, fmt.Errorf("%w: selling %d %s, holding %d",
			domain.ErrInsufficientQuantity, o.Quantity, ticker, pos.Quantity)
	}

	q, err := l.fetchQuote(ctx, ticker)
	if err != nil {
		return nil, err
	}

	now := l.now()
	sale, err := pos.ApplySell(o.Quantity, salePrice, q, now)
	if err != nil {
		return nil, err
	}
	p.PutPosition(pos)
	p.SettleSale(sale, now)
	if err := l.verify(p, "sell"); err != nil {
		return nil, err
	}

	record := domain.NewSaleRecord(uuid.New().String(), p.ID, pos, sale, now)
	if err := l.repo.CommitSale(ctx, p, record); err != nil {
		return nil, err
	}
	l.cache.Evict(id)

	l.log.Info().
		Str("portfolio_id", id).
		Str("op", "sell").
		Str("ticker", string(ticker)).
		Int64("quantity", o.Quantity).
		Str("realized", sale.RealizedProfitLoss.StringFixed(domain.MoneyScale)).
		Bool("closed", pos.Closed()).
		Msg("sale committed")

	return domain.NewSnapshot(p, owner), nil
}

// GetPortfolio returns the portfolio with every position refreshed from
// a live quote. The read fails as a whole if any quote fails. Fresh
// snapshots are served from the cache.
func (l *Ledger) GetPortfolio(ctx context.Context, id string) (*domain.Snapshot, error) {
	unlock := l.locks.Lock(id)
	defer unlock()

	if s, ok := l.cache.Get(id); ok {
		return s, nil
	}

	p, err := l.repo.GetPortfolio(ctx, id)
	if err != nil {
		return nil, err
	}
	owner, err := l.owner(ctx, p)
	if err != nil {
		return nil, err
	}
	for _, pos := range p.Positions() {
		q, err := l.fetchQuote(ctx, pos.Ticker)
		if err != nil {
			return nil, err
		}
		// A read refreshes valuations without moving the update time.
		pos.Refresh(q, pos.UpdatedAt)
	}

	s := domain.NewSnapshot(p, owner)
	l.cache.Put(s)
	return s, nil
}

// ListPurchases returns the portfolio's purchases, oldest first.
func (l *Ledger) ListPurchases(ctx context.Context, id string) ([]domain.PurchaseRecord, error) {
	return l.repo.ListPurchases(ctx, id)
}

// ListSales returns the portfolio's sales, oldest first.
func (l *Ledger) ListSales(ctx context.Context, id string) ([]domain.SaleRecord, error) {
	return l.repo.ListSales(ctx, id)
}

// Quote returns the live quote for ticker under the same checks applied
// when pricing operations.
func (l *Ledger) Quote(ctx context.Context, ticker domain.Ticker) (domain.Quote, error) {
	t, err := domain.ParseTicker(string(ticker))
	if err != nil {
		return domain.Quote{}, err
	}
	return l.fetchQuote(ctx, t)
}

// fetchQuote looks up ticker within the quote timeout. Any failure that
// is not already a quote error, including the deadline, is reported as
// domain.ErrQuoteUnavailable. A quote for another symbol or without a
// positive price is rejected as malformed.
func (l *Ledger) fetchQuote(ctx context.Context, ticker domain.Ticker) (domain.Quote, error) {
	ctx, cancel := context.WithTimeout(ctx, l.quoteTimeout)
	defer cancel()

	q, err := l.quotes.GetQuote(ctx, ticker)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, domain.ErrQuoteUnavailable) || errors.Is(err, domain.ErrMalformedQuote) {
			return domain.Quote{}, err
		}
		return domain.Quote{}, fmt.Errorf("%w: %s: %v", domain.ErrQuoteUnavailable, ticker, err)
	}

	if q.Symbol != ticker {
		return domain.Quote{}, fmt.Errorf("%w: asked for %s, got %q", domain.ErrMalformedQuote, ticker, q.Symbol)
	}
	if !q.CurrentPrice.IsPositive() {
		return domain.Quote{}, fmt.Errorf("%w: %s price %s is not positive", domain.ErrMalformedQuote, ticker, q.CurrentPrice)
	}
	return q, nil
}

func (l *Ledger) save(ctx context.Context, p *domain.Portfolio, op string) error {
	if err := l.verify(p, op); err != nil {
		return err
	}
	if err := l.repo.SavePortfolio(ctx, p); err != nil {
		return err
	}
	l.cache.Evict(p.ID)
	return nil
}

func (l *Ledger) verify(p *domain.Portfolio, op string) error {
	if err := p.CheckInvariants(); err != nil {
		l.log.Error().
			Err(err).
			Str("portfolio_id", p.ID).
			Str("op", op).
			Msg("invariant violation, operation aborted")
		return err
	}
	return nil
}

// owner loads the summary of p's client before anything is mutated.
func (l *Ledger) owner(ctx context.Context, p *domain.Portfolio) (domain.ClientSummary, error) {
	client, err := l.clients.Get(ctx, p.ClientID)
	if err != nil {
		return domain.ClientSummary{}, fmt.Errorf("loading owner of portfolio %s: %w", p.ID, err)
	}
	return client.Summary(), nil
}

func validateOrder(ticker domain.Ticker, class domain.AssetClass, quantity int64) (domain.Ticker, domain.AssetClass, error) {
	t, err := domain.ParseTicker(string(ticker))
	if err != nil {
		return "", "", err
	}
	if quantity <= 0 {
		return "", "", &domain.ValidationError{Message: "quantity must be a positive integer"}
	}
	if class == "" {
		return t, "", nil
	}
	c, err := domain.ParseAssetClass(string(class))
	if err != nil {
		return "", "", err
	}
	return t, c, nil
}

func classMismatch(ticker domain.Ticker, held, got domain.AssetClass) error {
	return &domain.ValidationError{
		Message: fmt.Sprintf("asset_class %s does not match held %s position (%s)", got, ticker, held),
	}
}
