package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the media and transport failure taxonomy. Callers match
// with errors.Is and keep the UI interactive; none of these crash the
// coordinator.
var (
	ErrDeviceEnumeration = errors.New("device enumeration failed")
	ErrPermissionDenied  = errors.New("device permission denied")
	ErrDeviceUnavailable = errors.New("device unavailable")
	ErrNoStream          = errors.New("no media stream available")
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
)

// APIError is a non-2xx REST response.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.Status)
	}
	return fmt.Sprintf("api request failed with status %d: %s", e.Status, e.Message)
}

// Is maps 404 responses onto ErrNotFound so detail views can branch on it.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == 404
}
