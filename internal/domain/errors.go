package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist. Every operation addressed by id reports an absent
// id this way, including mutations.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrEmptyDay is returned when a day template is requested from a day that
// has no activities. It wraps ErrValidation.
var ErrEmptyDay = fmt.Errorf("%w: day has no activities", ErrValidation)

// ErrInvalidDateRange is returned when a trip's end date precedes its start
// date or the range spans more than MaxTripDays. It wraps ErrValidation.
var ErrInvalidDateRange = fmt.Errorf("%w: invalid date range", ErrValidation)
