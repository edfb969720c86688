package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and adapters return these
// (optionally wrapped) so services can translate them into domain errors.
//
//   - ErrNotFound: entity does not exist within the requested tenant
//   - ErrConflict: optimistic version check lost against a concurrent writer
//   - ErrAlreadyUsed: a tenant-scoped unique value (identity, membership code) is taken
//   - ErrMissingTenant: a store call arrived without a tenant scope
//   - ErrInvalidState: entity in wrong state for requested operation
//   - ErrUnavailable: external dependency temporarily unavailable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyUsed   = errors.New("already used")
	ErrMissingTenant = errors.New("missing tenant scope")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnavailable   = errors.New("unavailable")
)
