package store

import "errors"

// Error kinds surfaced by the store. Callers match with errors.Is;
// store functions wrap these with context via fmt.Errorf and %w.
var (
	// ErrNotFound means a referenced bottle or cellar has no record.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller is not the required owner, or a
	// swap signature does not verify against the counterparty's key.
	ErrUnauthorized = errors.New("not authorized")

	// ErrValidation means an input failed a business rule: value outside
	// the swap tolerance band, insufficient balance or allowance, or a
	// malformed record at creation.
	ErrValidation = errors.New("validation failed")

	// ErrInvariant means an internal consistency check failed. This is a
	// defect in the registry, not a user error.
	ErrInvariant = errors.New("invariant violation")
)
