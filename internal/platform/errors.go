package platform

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ConfigError is returned when required provider credentials are missing.
// It fails fast, before any network call.
type ConfigError struct {
	Provider string
	Missing  []string
}

func (e ConfigError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("%s credentials not configured", e.Provider)
	}
	return fmt.Sprintf("%s credentials not configured (missing %s)", e.Provider, strings.Join(e.Missing, ", "))
}

// ProviderError is a structured error payload returned by the vendor,
// distinct from a transport failure.
type ProviderError struct {
	Provider string
	Message  string
	Code     int
	Subcode  int
	Raw      json.RawMessage
}

func (e *ProviderError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("%s api error %d: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s api error: %s", e.Provider, e.Message)
}

// ValidationError captures caller-supplied content that violates a
// provider's publishing precondition.
type ValidationError struct {
	Provider string
	Reason   string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Provider, e.Reason)
}

// NoAccountError indicates the authenticated user has no page, business
// entity, or profile the adapter can operate as.
type NoAccountError struct {
	Provider string
	Reason   string
}

func (e NoAccountError) Error() string {
	return fmt.Sprintf("%s: no eligible account: %s", e.Provider, e.Reason)
}

// UnsupportedError is returned by providers whose credential model cannot
// perform a given lifecycle operation.
type UnsupportedError struct {
	Provider string
	Op       string
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("%s does not support %s", e.Provider, e.Op)
}
