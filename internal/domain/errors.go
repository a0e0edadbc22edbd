package domain

import (
	"errors"
	"strings"
)

var (
	// ErrProductNotFound is returned when a product does not exist or is not owned by the caller
	ErrProductNotFound = errors.New("product not found")

	// ErrListingNotFound is returned when a competitor listing does not exist or is not owned by the caller
	ErrListingNotFound = errors.New("competitor listing not found")

	// ErrCandidateNotFound is returned when a candidate is missing from the current discovery batch
	ErrCandidateNotFound = errors.New("candidate not found in discovery batch")

	// ErrInvalidConfig is returned when a discovery configuration is rejected before any external call
	ErrInvalidConfig = errors.New("invalid discovery configuration")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrDuplicateURL is returned when a competitor URL already exists for the owner
	ErrDuplicateURL = errors.New("competitor URL already tracked")

	// ErrCrawlTimeout is returned when a page fetch times out
	ErrCrawlTimeout = errors.New("crawl timed out")

	// ErrCrawlBlocked is returned when a retailer refuses the request (403/429)
	ErrCrawlBlocked = errors.New("crawl blocked by retailer")

	// ErrCrawlFailed is returned for other HTTP-level fetch failures
	ErrCrawlFailed = errors.New("crawl failed")

	// ErrUnknownRetailer is returned when a retailer id has no search template
	ErrUnknownRetailer = errors.New("unknown retailer")

	// ErrExtractionFailed is returned when the AI extractor produces no usable data
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrEmbeddingFailed is returned when the embedder cannot produce a vector
	ErrEmbeddingFailed = errors.New("embedding failed")
)

// ValidationErrors carries every schema or data shape violation found by the
// validator; it is never truncated to the first problem.
type ValidationErrors struct {
	Problems []string
}

func (e *ValidationErrors) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}
