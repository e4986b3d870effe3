package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/ledger"
)

// QuoteHandler handles HTTP requests for quote endpoints.
type QuoteHandler struct {
	ledger *ledger.Ledger
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(l *ledger.Ledger) *QuoteHandler {
	return &QuoteHandler{ledger: l}
}

// quoteResponse is the JSON response for GET /quotes/{ticker}.
type quoteResponse struct {
	Symbol             string `json:"symbol"`
	CurrentPrice       string `json:"current_price"`
	DailyPriceChange   string `json:"daily_price_change"`
	DailyPercentChange string `json:"daily_percent_change"`
}

// Get handles GET /quotes/{ticker}.
func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, err := h.ledger.Quote(r.Context(), domain.Ticker(chi.URLParam(r, "ticker")))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, quoteResponse{
		Symbol:             string(q.Symbol),
		CurrentPrice:       formatMoney(q.CurrentPrice),
		DailyPriceChange:   formatMoney(q.DailyPriceChange),
		DailyPercentChange: formatMoney(q.DailyPercentChange),
	})
}
