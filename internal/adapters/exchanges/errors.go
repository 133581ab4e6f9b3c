package exchanges

import "errors"

var (
	// ErrSymbolNotFound is returned when the exchange does not list the instrument.
	ErrSymbolNotFound = errors.New("symbol not listed on exchange")

	// ErrInvalidRequest indicates validation failures before hitting the exchange API.
	ErrInvalidRequest = errors.New("invalid exchange request")

	// ErrRateLimited indicates HTTP 429 or throttling.
	ErrRateLimited = errors.New("exchange rate limited the request")
)
