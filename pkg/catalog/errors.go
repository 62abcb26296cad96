package catalog

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery indicates a search query that is empty or that the
	// full-text engine rejected. Distinct from a valid query with no hits.
	ErrInvalidQuery = errors.New("invalid search query")

	// ErrStorageUnavailable indicates the underlying database could not be
	// reached or failed mid-query. Reads fail closed with this error rather
	// than returning empty results.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrAlreadyExists indicates a uniqueness conflict on insert.
	ErrAlreadyExists = errors.New("already exists")
)
