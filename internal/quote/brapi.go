// Package quote fetches live market quotes from the Brapi API.
package quote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// BrapiClient is a QuoteProvider backed by the Brapi REST API.
type BrapiClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     zerolog.Logger
}

// NewBrapiClient creates a client for baseURL (e.g. https://brapi.dev/api)
// authenticating with apiKey. Requests time out after timeout.
func NewBrapiClient(baseURL, apiKey string, timeout time.Duration, log zerolog.Logger) *BrapiClient {
	return &BrapiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log.With().Str("component", "quote").Logger(),
	}
}

// brapiResponse is the subset of GET /quote/{ticker} we read. Pointers
// distinguish missing or null fields from zero values.
type brapiResponse struct {
	Results []brapiResult `json:"results"`
}

type brapiResult struct {
	Symbol                     *string      `json:"symbol"`
	RegularMarketPrice         *json.Number `json:"regularMarketPrice"`
	RegularMarketChange        *json.Number `json:"regularMarketChange"`
	RegularMarketChangePercent *json.Number `json:"regularMarketChangePercent"`
}

// GetQuote fetches the current quote for ticker. Transport failures,
// timeouts and non-2xx responses fail with domain.ErrQuoteUnavailable; a
// payload that cannot be read as a complete quote fails with
// domain.ErrMalformedQuote.
func (c *BrapiClient) GetQuote(ctx context.Context, ticker domain.Ticker) (domain.Quote, error) {
	endpoint := c.baseURL + "/quote/" + url.PathEscape(string(ticker))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: %v", domain.ErrQuoteUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", string(ticker)).Msg("quote request failed")
		return domain.Quote{}, fmt.Errorf("%w: %s: %v", domain.ErrQuoteUnavailable, ticker, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("ticker", string(ticker)).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("quote fetched")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.Quote{}, fmt.Errorf("%w: %s: provider returned status %d",
			domain.ErrQuoteUnavailable, ticker, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Quote{}, fmt.Errorf("%w: %s: reading body: %v", domain.ErrQuoteUnavailable, ticker, err)
	}

	q, err := parseQuote(body)
	if err != nil {
		c.log.Warn().Err(err).Str("ticker", string(ticker)).Msg("rejecting malformed quote")
		return domain.Quote{}, err
	}
	return q, nil
}

// parseQuote reads the first result of a Brapi quote payload. Every
// field must be present and numeric.
func parseQuote(body []byte) (domain.Quote, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var payload brapiResponse
	if err := dec.Decode(&payload); err != nil {
		return domain.Quote{}, fmt.Errorf("%w: invalid JSON: %v", domain.ErrMalformedQuote, err)
	}
	if len(payload.Results) == 0 {
		return domain.Quote{}, fmt.Errorf("%w: empty results", domain.ErrMalformedQuote)
	}

	r := payload.Results[0]
	if r.Symbol == nil || *r.Symbol == "" {
		return domain.Quote{}, fmt.Errorf("%w: missing symbol", domain.ErrMalformedQuote)
	}

	price, err := requireDecimal("regularMarketPrice", r.RegularMarketPrice)
	if err != nil {
		return domain.Quote{}, err
	}
	change, err := requireDecimal("regularMarketChange", r.RegularMarketChange)
	if err != nil {
		return domain.Quote{}, err
	}
	pct, err := requireDecimal("regularMarketChangePercent", r.RegularMarketChangePercent)
	if err != nil {
		return domain.Quote{}, err
	}

	return domain.NewQuote(domain.Ticker(strings.ToUpper(*r.Symbol)), price, change, pct)
}

func requireDecimal(field string, n *json.Number) (decimal.Decimal, error) {
	if n == nil {
		return decimal.Decimal{}, fmt.Errorf("%w: missing %s", domain.ErrMalformedQuote, field)
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %s %q is not a number", domain.ErrMalformedQuote, field, n.String())
	}
	return d, nil
}
