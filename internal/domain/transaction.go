package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseRecord is the immutable audit entry of an executed buy.
type PurchaseRecord struct {
	ID          string
	PortfolioID string
	Ticker      Ticker
	AssetClass  AssetClass
	Quantity    int64
	UnitPrice   decimal.Decimal // price paid per unit
	TotalAmount decimal.Decimal // UnitPrice * Quantity
	ExecutedAt  time.Time
}

// SaleRecord is the immutable audit entry of an executed sell.
type SaleRecord struct {
	ID                 string
	PortfolioID        string
	Ticker             Ticker
	AssetClass         AssetClass
	Quantity           int64
	UnitPrice          decimal.Decimal // sale price per unit
	TotalAmount        decimal.Decimal // UnitPrice * Quantity
	CostBasisAtSale    decimal.Decimal
	TotalCostBasis     decimal.Decimal
	RealizedProfitLoss decimal.Decimal
	ExecutedAt         time.Time
}

// NewSaleRecord builds the audit entry for sale s of a position.
func NewSaleRecord(id, portfolioID string, p *Position, s Sale, at time.Time) SaleRecord {
	return SaleRecord{
		ID:                 id,
		PortfolioID:        portfolioID,
		Ticker:             p.Ticker,
		AssetClass:         p.AssetClass,
		Quantity:           s.Quantity,
		UnitPrice:          s.SalePrice,
		TotalAmount:        s.SaleAmount,
		CostBasisAtSale:    s.CostBasisAtSale,
		TotalCostBasis:     s.TotalCostBasis,
		RealizedProfitLoss: s.RealizedProfitLoss,
		ExecutedAt:         at,
	}
}
