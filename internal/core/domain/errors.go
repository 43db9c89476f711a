package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Document package errors.
	// These are the only errors fatal to a whole document run:
	// everything below field level degrades gracefully instead.

	// ErrCorruptArchive indicates the input bytes are not a valid
	// presentation package.
	ErrCorruptArchive = errors.New("corrupt archive")

	// ErrEntryNotFound indicates a required named entry (such as a
	// specific slide part) is absent from the package.
	ErrEntryNotFound = errors.New("entry not found in archive")

	// Extraction errors.

	// ErrNoPlacementData indicates the placement slip yielded no
	// mappable sections at all.
	ErrNoPlacementData = errors.New("no placement data extracted")

	// Campaign errors.

	// ErrCampaignComplete indicates a campaign has no pending recipients left.
	ErrCampaignComplete = errors.New("campaign already complete")

	// Authentication and transport errors.

	// ErrAuthRequired indicates the transport requires authentication
	// but none is configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
