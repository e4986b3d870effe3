package domain

import "errors"

// Sentinel errors for domain-level error handling.
// The error text doubles as the stable kind tag; the handler layer maps
// these to HTTP status codes.
var (
	ErrPortfolioNotFound            = errors.New("portfolio_not_found")
	ErrClientNotFound               = errors.New("client_not_found")
	ErrClientAlreadyExists          = errors.New("client_already_exists")
	ErrClientHasPortfolios          = errors.New("client_has_portfolios")
	ErrAssetNotFound                = errors.New("asset_not_found")
	ErrInsufficientBalance          = errors.New("insufficient_balance")
	ErrInsufficientQuantity         = errors.New("insufficient_quantity")
	ErrQuoteUnavailable             = errors.New("quote_unavailable")
	ErrMalformedQuote               = errors.New("malformed_quote")
	ErrArithmeticInvariantViolation = errors.New("arithmetic_invariant_violation")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Kind returns the stable kind tag for err: the text of the first
// sentinel it wraps, "validation_error" for a *ValidationError, or
// "internal_error" for anything else.
func Kind(err error) string {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return "validation_error"
	}
	for _, sentinel := range []error{
		ErrPortfolioNotFound,
		ErrClientNotFound,
		ErrClientAlreadyExists,
		ErrClientHasPortfolios,
		ErrAssetNotFound,
		ErrInsufficientBalance,
		ErrInsufficientQuantity,
		ErrQuoteUnavailable,
		ErrMalformedQuote,
		ErrArithmeticInvariantViolation,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal_error"
}
