package api

import "errors"

// Sentinel kinds for API errors. Their text is written to clients as-is.
var (
	ErrMissingToken = errors.New("Token is missing")  //nolint:staticcheck // client-facing message
	ErrRateLimited  = errors.New("Too many requests") //nolint:staticcheck // client-facing message
)
