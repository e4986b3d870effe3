package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/ledger"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/service"
)

// NewRouter creates a chi router with all routes registered, request logging,
// and Content-Type validation middleware.
func NewRouter(
	clientSvc *service.ClientService,
	l *ledger.Ledger,
	logger zerolog.Logger,
) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogging(logger.With().Str("component", "http").Logger()))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))
	r.Use(contentTypeJSON)

	// Create handlers.
	clientH := NewClientHandler(clientSvc, l)
	portfolioH := NewPortfolioHandler(l)
	quoteH := NewQuoteHandler(l)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Client routes.
	r.Post("/clients", clientH.Register)
	r.Get("/clients", clientH.List)
	r.Get("/clients/{client_id}", clientH.Get)
	r.Put("/clients/{client_id}", clientH.Update)
	r.Delete("/clients/{client_id}", clientH.Delete)

	// Portfolio routes.
	r.Post("/portfolios", portfolioH.Create)
	r.Route("/portfolios/{portfolio_id}", func(r chi.Router) {
		r.Get("/", portfolioH.Get)
		r.Put("/deposit", portfolioH.Deposit)
		r.Put("/withdraw", portfolioH.Withdraw)
		r.Post("/buy", portfolioH.Buy)
		r.Post("/sell", portfolioH.Sell)
		r.Get("/purchases", portfolioH.ListPurchases)
		r.Get("/sales", portfolioH.ListSales)
	})

	// Quote routes.
	r.Get("/quotes/{ticker}", quoteH.Get)

	return r
}

// requestLogging returns middleware that logs each request's method, path,
// status code, duration and request id. The logger is attached to the
// request context for handlers to use.
func requestLogging(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := logger.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r.WithContext(reqLog.WithContext(r.Context())))
			reqLog.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeJSON is middleware that validates Content-Type for POST, PUT, and
// PATCH requests. If the Content-Type header doesn't start with
// "application/json", it returns 400 Bad Request before the handler runs.
func contentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "application/json") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be application/json")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
