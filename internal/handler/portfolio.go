package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/ledger"
)

// PortfolioHandler handles HTTP requests for portfolio endpoints.
type PortfolioHandler struct {
	ledger *ledger.Ledger
}

// NewPortfolioHandler creates a new PortfolioHandler.
func NewPortfolioHandler(l *ledger.Ledger) *PortfolioHandler {
	return &PortfolioHandler{ledger: l}
}

// createPortfolioRequest is the JSON request body for POST /portfolios.
type createPortfolioRequest struct {
	ClientID string `json:"client_id"`
}

// amountRequest is the JSON request body for deposit and withdraw.
// Amounts are accepted as JSON numbers or strings.
type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// buyRequest is the JSON request body for POST /portfolios/{portfolio_id}/buy.
type buyRequest struct {
	Ticker     string          `json:"ticker"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	AssetClass string          `json:"asset_class"`
}

// sellRequest is the JSON request body for POST /portfolios/{portfolio_id}/sell.
type sellRequest struct {
	Ticker     string          `json:"ticker"`
	Quantity   int64           `json:"quantity"`
	SalePrice  decimal.Decimal `json:"sale_price"`
	AssetClass string          `json:"asset_class"`
}

// clientSummaryResponse is the owner view embedded in a snapshot.
type clientSummaryResponse struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	CPF      string `json:"cpf"`
}

// positionResponse is a single open position in the snapshot.
type positionResponse struct {
	Ticker             string `json:"ticker"`
	AssetClass         string `json:"asset_class"`
	Quantity           int64  `json:"quantity"`
	AverageCost        string `json:"average_cost"`
	TotalInvested      string `json:"total_invested"`
	CurrentPrice       string `json:"current_price"`
	DailyPriceChange   string `json:"daily_price_change"`
	DailyPercentChange string `json:"daily_percent_change"`
	CurrentValue       string `json:"current_value"`
	TotalGainLoss      string `json:"total_gain_loss"`
	GainLossPercent    string `json:"gain_loss_percent"`
	DailyGainLoss      string `json:"daily_gain_loss"`
	OpenedAt           string `json:"opened_at"`
	UpdatedAt          string `json:"updated_at"`
}

// snapshotResponse is the JSON response of every portfolio operation.
type snapshotResponse struct {
	PortfolioID        string                `json:"portfolio_id"`
	Client             clientSummaryResponse `json:"client"`
	Positions          []positionResponse    `json:"positions"`
	CashBalance        string                `json:"cash_balance"`
	InvestedValue      string                `json:"invested_value"`
	RealizedProfitLoss string                `json:"realized_profit_loss"`
	TotalValue         string                `json:"total_value"`
	CreatedAt          string                `json:"created_at"`
	UpdatedAt          string                `json:"updated_at"`
}

// purchaseResponse is a single entry of GET /portfolios/{portfolio_id}/purchases.
type purchaseResponse struct {
	PurchaseID  string `json:"purchase_id"`
	PortfolioID string `json:"portfolio_id"`
	Ticker      string `json:"ticker"`
	AssetClass  string `json:"asset_class"`
	Quantity    int64  `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	TotalAmount string `json:"total_amount"`
	ExecutedAt  string `json:"executed_at"`
}

// saleResponse is a single entry of GET /portfolios/{portfolio_id}/sales.
type saleResponse struct {
	SaleID             string `json:"sale_id"`
	PortfolioID        string `json:"portfolio_id"`
	Ticker             string `json:"ticker"`
	AssetClass         string `json:"asset_class"`
	Quantity           int64  `json:"quantity"`
	SalePrice          string `json:"sale_price"`
	TotalAmount        string `json:"total_amount"`
	CostBasisAtSale    string `json:"cost_basis_at_sale"`
	TotalCostBasis     string `json:"total_cost_basis"`
	RealizedProfitLoss string `json:"realized_profit_loss"`
	ExecutedAt         string `json:"executed_at"`
}

func toSnapshotResponse(s *domain.Snapshot) snapshotResponse {
	positions := make([]positionResponse, len(s.Positions))
	for i, p := range s.Positions {
		positions[i] = positionResponse{
			Ticker:             string(p.Ticker),
			AssetClass:         string(p.AssetClass),
			Quantity:           p.Quantity,
			AverageCost:        formatMoney(p.AverageCost),
			TotalInvested:      formatMoney(p.TotalInvested),
			CurrentPrice:       formatMoney(p.CurrentPrice),
			DailyPriceChange:   formatMoney(p.DailyPriceChange),
			DailyPercentChange: formatMoney(p.DailyPercentChange),
			CurrentValue:       formatMoney(p.CurrentValue),
			TotalGainLoss:      formatMoney(p.TotalGainLoss),
			GainLossPercent:    formatMoney(p.GainLossPercent),
			DailyGainLoss:      formatMoney(p.DailyGainLoss),
			OpenedAt:           formatTime(p.OpenedAt),
			UpdatedAt:          formatTime(p.UpdatedAt),
		}
	}

	return snapshotResponse{
		PortfolioID: s.ID,
		Client: clientSummaryResponse{
			ClientID: s.Client.ID,
			Name:     s.Client.Name,
			Email:    s.Client.Email,
			CPF:      s.Client.CPF,
		},
		Positions:          positions,
		CashBalance:        formatMoney(s.CashBalance),
		InvestedValue:      formatMoney(s.InvestedValue),
		RealizedProfitLoss: formatMoney(s.RealizedProfitLoss),
		TotalValue:         formatMoney(s.TotalValue),
		CreatedAt:          formatTime(s.CreatedAt),
		UpdatedAt:          formatTime(s.UpdatedAt),
	}
}

// Create handles POST /portfolios.
func (h *PortfolioHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPortfolioRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s, err := h.ledger.Create(r.Context(), req.ClientID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, toSnapshotResponse(s))
}

// Get handles GET /portfolios/{portfolio_id}.
func (h *PortfolioHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.ledger.GetPortfolio(r.Context(), chi.URLParam(r, "portfolio_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSnapshotResponse(s))
}

// Deposit handles PUT /portfolios/{portfolio_id}/deposit.
func (h *PortfolioHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s, err := h.ledger.Deposit(r.Context(), chi.URLParam(r, "portfolio_id"), req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSnapshotResponse(s))
}

// Withdraw handles PUT /portfolios/{portfolio_id}/withdraw.
func (h *PortfolioHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s, err := h.ledger.Withdraw(r.Context(), chi.URLParam(r, "portfolio_id"), req.Amount)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSnapshotResponse(s))
}

// Buy handles POST /portfolios/{portfolio_id}/buy.
func (h *PortfolioHandler) Buy(w http.ResponseWriter, r *http.Request) {
	var req buyRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s, err := h.ledger.Buy(r.Context(), chi.URLParam(r, "portfolio_id"), ledger.BuyOrder{
		Ticker:     domain.Ticker(req.Ticker),
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		AssetClass: domain.AssetClass(req.AssetClass),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSnapshotResponse(s))
}

// Sell handles POST /portfolios/{portfolio_id}/sell.
func (h *PortfolioHandler) Sell(w http.ResponseWriter, r *http.Request) {
	var req sellRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	s, err := h.ledger.Sell(r.Context(), chi.URLParam(r, "portfolio_id"), ledger.SellOrder{
		Ticker:     domain.Ticker(req.Ticker),
		Quantity:   req.Quantity,
		SalePrice:  req.SalePrice,
		AssetClass: domain.AssetClass(req.AssetClass),
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, toSnapshotResponse(s))
}

// ListPurchases handles GET /portfolios/{portfolio_id}/purchases.
func (h *PortfolioHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.ListPurchases(r.Context(), chi.URLParam(r, "portfolio_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]purchaseResponse, len(records))
	for i, rec := range records {
		resp[i] = purchaseResponse{
			PurchaseID:  rec.ID,
			PortfolioID: rec.PortfolioID,
			Ticker:      string(rec.Ticker),
			AssetClass:  string(rec.AssetClass),
			Quantity:    rec.Quantity,
			UnitPrice:   formatMoney(rec.UnitPrice),
			TotalAmount: formatMoney(rec.TotalAmount),
			ExecutedAt:  formatTime(rec.ExecutedAt),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}

// ListSales handles GET /portfolios/{portfolio_id}/sales.
func (h *PortfolioHandler) ListSales(w http.ResponseWriter, r *http.Request) {
	records, err := h.ledger.ListSales(r.Context(), chi.URLParam(r, "portfolio_id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]saleResponse, len(records))
	for i, rec := range records {
		resp[i] = saleResponse{
			SaleID:             rec.ID,
			PortfolioID:        rec.PortfolioID,
			Ticker:             string(rec.Ticker),
			AssetClass:         string(rec.AssetClass),
			Quantity:           rec.Quantity,
			SalePrice:          formatMoney(rec.UnitPrice),
			TotalAmount:        formatMoney(rec.TotalAmount),
			CostBasisAtSale:    formatMoney(rec.CostBasisAtSale),
			TotalCostBasis:     formatMoney(rec.TotalCostBasis),
			RealizedProfitLoss: formatMoney(rec.RealizedProfitLoss),
			ExecutedAt:         formatTime(rec.ExecutedAt),
		}
	}
	WriteJSON(w, http.StatusOK, resp)
}
