package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: record does not exist, has expired, or failed validation
// - ErrConflict: a create-if-absent write found the key already taken
// - ErrAlreadyUsed: an existence-only marker (vote lock) is already present
// - ErrLimitExceeded: a fixed-window counter went over its maximum
// - ErrUnavailable: the backing store did not acknowledge the operation
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyUsed   = errors.New("already used")
	ErrLimitExceeded = errors.New("limit exceeded")
	ErrUnavailable   = errors.New("unavailable")
)
