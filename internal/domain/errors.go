package domain

import "errors"

// ErrInvalidID is returned for identifiers the backend cannot parse
var ErrInvalidID = errors.New("invalid id")
