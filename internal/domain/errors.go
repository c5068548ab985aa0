package domain

import "errors"

// ErrNotFound is returned by repo and service functions when no trip has the
// requested ID. It is a result, not a fault: callers report it and carry on.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when a trip is imported with an ID that already
// belongs to a live trip.
var ErrConflict = errors.New("id already in use")

// ErrValidation is returned when a caller supplies an argument the service
// cannot act on (e.g. an unknown sort criterion). Trip fields themselves are
// never validated.
var ErrValidation = errors.New("validation error")

// ErrStorage wraps every failure that originates in a persistence backend
// (connection loss, SQL errors). The service does not retry; the caller may.
var ErrStorage = errors.New("storage error")
