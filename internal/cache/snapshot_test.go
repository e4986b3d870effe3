package cache

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(ttl time.Duration) (*SnapshotCache, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)}
	c := NewSnapshotCache(ttl, zerolog.Nop())
	c.now = clock.Now
	return c, clock
}

func testSnapshot(id string) *domain.Snapshot {
	now := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	return &domain.Snapshot{
		ID:     id,
		Client: domain.ClientSummary{ID: "c-1", Name: "Ana", Email: "ana@example.com", CPF: "52998224725"},
		Positions: []domain.Position{{
			Ticker:        "PETR4",
			AssetClass:    domain.AssetClassEquity,
			Quantity:      10,
			AverageCost:   decimal.RequireFromString("36.20"),
			TotalInvested: decimal.RequireFromString("362.00"),
			CurrentPrice:  decimal.RequireFromString("37.15"),
			CurrentValue:  decimal.RequireFromString("371.50"),
			OpenedAt:      now,
			UpdatedAt:     now,
		}},
		CashBalance:        decimal.RequireFromString("638.00"),
		InvestedValue:      decimal.RequireFromString("362.00"),
		RealizedProfitLoss: decimal.Zero,
		TotalValue:         decimal.RequireFromString("1000.00"),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func TestSnapshotCache_PutGet(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	want := testSnapshot("p-1")
	c.Put(want)

	got, ok := c.Get("p-1")
	require.True(t, ok)
	assert.Equal(t, want.ID, got.ID)
	assert.Equal(t, want.Client, got.Client)
	assert.True(t, want.CashBalance.Equal(got.CashBalance))
	assert.True(t, want.TotalValue.Equal(got.TotalValue))
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Positions, 1)
	assert.Equal(t, domain.Ticker("PETR4"), got.Positions[0].Ticker)
	assert.True(t, got.Positions[0].AverageCost.Equal(decimal.RequireFromString("36.20")))
	assert.Equal(t, "36.20", got.Positions[0].AverageCost.StringFixed(2))

	_, ok = c.Get("p-2")
	assert.False(t, ok)
}

func TestSnapshotCache_GetReturnsCopy(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Put(testSnapshot("p-1"))

	got, _ := c.Get("p-1")
	got.Positions[0].Quantity = 999
	got.CashBalance = decimal.Zero

	again, _ := c.Get("p-1")
	assert.Equal(t, int64(10), again.Positions[0].Quantity)
	assert.True(t, again.CashBalance.Equal(decimal.RequireFromString("638")))
}

func TestSnapshotCache_Expiry(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Put(testSnapshot("p-1"))

	clock.Advance(59 * time.Second)
	_, ok := c.Get("p-1")
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok = c.Get("p-1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len(), "expired entry should be dropped on read")
}

func TestSnapshotCache_Evict(t *testing.T) {
	c, _ := newTestCache(time.Minute)
	c.Put(testSnapshot("p-1"))
	c.Put(testSnapshot("p-2"))

	c.Evict("p-1")
	c.Evict("unknown")

	_, ok := c.Get("p-1")
	assert.False(t, ok)
	_, ok = c.Get("p-2")
	assert.True(t, ok)
}

func TestSnapshotCache_Purge(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Put(testSnapshot("p-1"))
	clock.Advance(30 * time.Second)
	c.Put(testSnapshot("p-2"))
	clock.Advance(45 * time.Second)

	assert.Equal(t, 1, c.Purge())
	assert.Equal(t, 1, c.Len())
	_, ok := c.Get("p-2")
	assert.True(t, ok)
}

func TestSweepJob(t *testing.T) {
	c, clock := newTestCache(time.Minute)
	c.Put(testSnapshot("p-1"))
	clock.Advance(2 * time.Minute)

	job := NewSweepJob(c, zerolog.Nop())
	assert.Equal(t, "snapshot-cache-sweep", job.Name())
	require.NoError(t, job.Run())
	assert.Equal(t, 0, c.Len())
}
