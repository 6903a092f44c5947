package domain

import (
	"fmt"
	"regexp"
)

// iataPattern matches a 3-letter uppercase IATA airport code.
var iataPattern = regexp.MustCompile(`^[A-Z]{3}$`)

// ValidationError indicates a malformed value at construction time.
type ValidationError struct {
	Field string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// Route is an immutable origin/destination pair.
// Both codes are validated at construction and never mutated.
type Route struct {
	Origin      string
	Destination string
	DisplayName string
}

// NewRoute constructs a Route, validating both IATA codes.
func NewRoute(origin, destination, displayName string) (Route, error) {
	if !iataPattern.MatchString(origin) {
		return Route{}, &ValidationError{Field: "origin", Value: origin}
	}
	if !iataPattern.MatchString(destination) {
		return Route{}, &ValidationError{Field: "destination", Value: destination}
	}
	if displayName == "" {
		displayName = origin + " → " + destination
	}
	return Route{Origin: origin, Destination: destination, DisplayName: displayName}, nil
}

// Key returns the canonical "ORG-DST" route key used for lookups.
func (r Route) Key() string {
	return r.Origin + "-" + r.Destination
}

// String returns the display name.
func (r Route) String() string {
	return r.DisplayName
}
