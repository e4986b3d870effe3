package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot is the consolidated, read-only view of a portfolio returned
// by every ledger operation.
type Snapshot struct {
	ID                 string
	Client             ClientSummary
	Positions          []Position
	CashBalance        decimal.Decimal
	InvestedValue      decimal.Decimal
	RealizedProfitLoss decimal.Decimal
	TotalValue         decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewSnapshot copies p and its positions into a Snapshot.
func NewSnapshot(p *Portfolio, client ClientSummary) *Snapshot {
	positions := p.Positions()
	s := &Snapshot{
		ID:                 p.ID,
		Client:             client,
		Positions:          make([]Position, len(positions)),
		CashBalance:        p.CashBalance,
		InvestedValue:      p.InvestedValue,
		RealizedProfitLoss: p.RealizedProfitLoss,
		TotalValue:         p.TotalValue,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
	for i, pos := range positions {
		s.Positions[i] = *pos
	}
	return s
}
