package domain

import "errors"

// Error categories raised by the core. Callers match them with errors.Is;
// messages wrapped around them carry the specifics.
var (
	// ErrConfiguration covers invalid precision values, missing required
	// inputs, conflicting field selections and output field collisions
	ErrConfiguration = errors.New("configuration error")

	// ErrSchemaMismatch covers type mismatches on shared fields,
	// incompatible geometry type sets, incompatible coordinate reference
	// systems and spatial/non-spatial mismatches
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrDuplicateKey is raised when a primary key (natural or derived)
	// is not unique within one dataset
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrNullGeometry is raised when geometry hashing is requested but
	// null geometries are present and dropping them is disabled
	ErrNullGeometry = errors.New("null geometry")
)
