package domain

import (
	"context"

	"github.com/google/uuid"
)

// CrawlResult is the readable content of one fetched page.
type CrawlResult struct {
	RawText  string
	ImageURL string
}

// SearchHit is one result row from a retailer search page.
type SearchHit struct {
	URL   string
	Title string
}

// Crawler fetches pages and runs retailer product searches. Retailer-specific
// URL construction lives behind this interface, not in the query planner.
type Crawler interface {
	Fetch(ctx context.Context, url string) (*CrawlResult, error)
	SearchRetailer(ctx context.Context, retailerID, query string, maxResults int) ([]SearchHit, error)
}

// Extraction is schema-guided structured data pulled from page text.
type Extraction struct {
	Data     map[string]any
	ImageURL string
}

// Extractor turns raw page text into structured data shaped by a schema.
type Extractor interface {
	Extract(ctx context.Context, rawText string, schema ProductSchema) (*Extraction, error)
}

// Embedder produces a semantic embedding vector for a text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CandidateCache holds the transient discovery batch per product id. A new
// batch replaces the previous one wholesale (last-write-wins).
type CandidateCache interface {
	Install(productID uuid.UUID, batch []CandidateListing)
	Batch(productID uuid.UUID) ([]CandidateListing, bool)
	Remove(productID uuid.UUID, url string) bool
	Invalidate(productID uuid.UUID)
}

// ProductRepository persists products. Every read/write is owner-scoped.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*Product, error)
	List(ctx context.Context, ownerID uuid.UUID) ([]Product, error)
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// ListingRepository persists competitor listings; it must preserve the
// (ownerId, url) uniqueness constraint.
type ListingRepository interface {
	Create(ctx context.Context, listing *CompetitorListing) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*CompetitorListing, error)
	ListByProduct(ctx context.Context, ownerID, productID uuid.UUID) ([]CompetitorListing, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]CompetitorListing, error)
	Update(ctx context.Context, listing *CompetitorListing) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

// PriceHistoryRepository is append-only: snapshots are created and listed,
// never updated.
type PriceHistoryRepository interface {
	Append(ctx context.Context, record *PriceHistory) error
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]PriceHistory, error)
	ListByListings(ctx context.Context, listingIDs []uuid.UUID) ([]PriceHistory, error)
}
