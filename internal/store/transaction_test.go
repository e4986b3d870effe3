package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
	"github.com/shopspring/decimal"
)

func newTestPurchase(id, portfolioID string, executedAt time.Time) domain.PurchaseRecord {
	return domain.PurchaseRecord{
		ID:          id,
		PortfolioID: portfolioID,
		Ticker:      "PETR4",
		AssetClass:  domain.AssetClassEquity,
		Quantity:    10,
		UnitPrice:   decimal.RequireFromString("36.20"),
		TotalAmount: decimal.RequireFromString("362.00"),
		ExecutedAt:  executedAt,
	}
}

func TestTransactionLog_RecordBuy_and_ListBuys(t *testing.T) {
	l := NewTransactionLog()
	now := time.Now()

	l.RecordBuy(newTestPurchase("buy-1", "p-1", now))
	l.RecordBuy(newTestPurchase("buy-2", "p-1", now.Add(time.Second)))

	buys := l.ListBuys("p-1")
	if len(buys) != 2 {
		t.Fatalf("expected 2 purchases, got %d", len(buys))
	}
	if buys[0].ID != "buy-1" {
		t.Fatalf("expected buy-1 first, got %s", buys[0].ID)
	}
	if buys[1].ID != "buy-2" {
		t.Fatalf("expected buy-2 second, got %s", buys[1].ID)
	}
}

func TestTransactionLog_List_Empty(t *testing.T) {
	l := NewTransactionLog()

	if buys := l.ListBuys("p-1"); buys == nil || len(buys) != 0 {
		t.Fatalf("expected non-nil empty slice, got %v", buys)
	}
	if sells := l.ListSells("p-1"); sells == nil || len(sells) != 0 {
		t.Fatalf("expected non-nil empty slice, got %v", sells)
	}
}

func TestTransactionLog_ListBuys_ReturnsCopy(t *testing.T) {
	l := NewTransactionLog()
	l.RecordBuy(newTestPurchase("buy-1", "p-1", time.Now()))

	buys := l.ListBuys("p-1")
	buys[0].Quantity = 999

	if original := l.ListBuys("p-1"); original[0].Quantity != 10 {
		t.Fatal("ListBuys should return a copy; internal state was mutated")
	}
}

func TestTransactionLog_SalesKeptApartFromPurchases(t *testing.T) {
	l := NewTransactionLog()
	now := time.Now()

	l.RecordBuy(newTestPurchase("buy-1", "p-1", now))
	l.RecordSell(domain.SaleRecord{ID: "sell-1", PortfolioID: "p-1", Ticker: "PETR4", Quantity: 5, ExecutedAt: now})
	l.RecordSell(domain.SaleRecord{ID: "sell-2", PortfolioID: "p-2", Ticker: "VALE3", Quantity: 1, ExecutedAt: now})

	if got := len(l.ListBuys("p-1")); got != 1 {
		t.Fatalf("expected 1 purchase for p-1, got %d", got)
	}
	sells := l.ListSells("p-1")
	if len(sells) != 1 || sells[0].ID != "sell-1" {
		t.Fatalf("expected [sell-1] for p-1, got %v", sells)
	}
	if got := len(l.ListSells("p-2")); got != 1 {
		t.Fatalf("expected 1 sale for p-2, got %d", got)
	}
}

func TestTransactionLog_ConcurrentAccess(t *testing.T) {
	l := NewTransactionLog()
	var wg sync.WaitGroup
	now := time.Now()

	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			l.RecordBuy(newTestPurchase(fmt.Sprintf("buy-%d", i), "p-1", now.Add(time.Duration(i)*time.Millisecond)))
		}(i)
		go func() {
			defer wg.Done()
			l.ListBuys("p-1")
		}()
	}
	wg.Wait()

	if got := len(l.ListBuys("p-1")); got != 100 {
		t.Fatalf("expected 100 purchases, got %d", got)
	}
}
