package amap

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAPIKey is returned when no AMap API key is configured at call time.
	ErrNoAPIKey = errors.New("amap api key is not configured")
	// ErrNoResult is returned when AMap answers successfully but without any
	// matching geocode or place.
	ErrNoResult = errors.New("amap returned no matching result")
)

// APIError represents a rejected request (status "0" in the AMap envelope).
type APIError struct {
	Info     string
	Infocode string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("amap request rejected: %s (infocode %s)", e.Info, e.Infocode)
}
