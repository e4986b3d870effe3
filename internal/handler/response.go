package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/domain"
)

// timeFormat is the UTC timestamp layout used in every response.
const timeFormat = "2006-01-02T15:04:05Z"

// WriteJSON writes a JSON response with the given status code and data.
// Sets Content-Type to application/json before writing the status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data) // Write error intentionally ignored in response helper
}

// errorResponse is the standard error response format.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WriteError writes a standard error response with the given status code,
// error code, and human-readable message.
func WriteError(w http.ResponseWriter, status int, errorCode, message string) {
	WriteJSON(w, status, errorResponse{
		Error:   errorCode,
		Message: message,
	})
}

// ParseJSON decodes the request body as JSON into v, rejecting unknown
// fields. The Content-Type header is checked by contentTypeJSON.
func ParseJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.New("Request body must be a valid JSON object with known fields")
	}
	return nil
}

// statusByKind maps domain error kinds to HTTP status codes.
var statusByKind = map[string]int{
	"validation_error":                     http.StatusBadRequest,
	domain.ErrPortfolioNotFound.Error():    http.StatusNotFound,
	domain.ErrClientNotFound.Error():       http.StatusNotFound,
	domain.ErrAssetNotFound.Error():        http.StatusNotFound,
	domain.ErrClientAlreadyExists.Error():  http.StatusConflict,
	domain.ErrClientHasPortfolios.Error():  http.StatusConflict,
	domain.ErrInsufficientBalance.Error():  http.StatusUnprocessableEntity,
	domain.ErrInsufficientQuantity.Error(): http.StatusUnprocessableEntity,
	domain.ErrQuoteUnavailable.Error():     http.StatusBadGateway,
	domain.ErrMalformedQuote.Error():       http.StatusBadGateway,
}

// writeDomainError maps err to an HTTP error response. Unexpected errors
// are logged and reported without detail.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.Kind(err)
	status, ok := statusByKind[kind]
	if !ok {
		zerolog.Ctx(r.Context()).Error().Err(err).Str("kind", kind).Msg("request failed")
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, status, kind, validationErr.Message)
		return
	}
	WriteError(w, status, kind, err.Error())
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(domain.MoneyScale)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}
