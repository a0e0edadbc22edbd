package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Product is a user-owned product being monitored for competitors.
// Schema and Data are stored as JSON columns; Data keys are field names
// declared in the schema.
type Product struct {
	ID          uuid.UUID                         `gorm:"type:uuid;primaryKey" json:"id"`
	SKU         string                            `gorm:"type:varchar(100)" json:"sku,omitempty"`
	Name        string                            `gorm:"type:text;not null" json:"name"`
	ProductType string                            `gorm:"type:varchar(100);not null" json:"productType"`
	Schema      datatypes.JSONType[ProductSchema] `gorm:"type:jsonb" json:"schema"`
	Data        datatypes.JSONMap                 `gorm:"type:jsonb" json:"data"`
	OwnerID     uuid.UUID                         `gorm:"type:uuid;not null;index" json:"ownerId"`
	CreatedAt   time.Time                         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time                         `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Product) TableName() string { return "my_products" }

// CandidateListing is an unapproved, possibly-matching listing produced by one
// discovery run. It lives only inside the current discovery batch for its
// product and is never persisted until approved.
type CandidateListing struct {
	URL                string         `json:"url"`
	RetailerName       string         `json:"retailerName"`
	ProductName        string         `json:"productName"`
	ExtractedData      map[string]any `json:"extractedData"`
	ImageURL           string         `json:"imageUrl,omitempty"`
	ConfidenceScore    float64        `json:"confidenceScore"`
	SpecSimilarity     float64        `json:"specSimilarity"`
	SemanticSimilarity float64        `json:"semanticSimilarity"`
	Schema             ProductSchema  `json:"schema"`
}

// CompetitorListing is an approved competitor page tracked against a product.
// URL is unique per owner.
type CompetitorListing struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID     uuid.UUID         `gorm:"type:uuid;not null;index" json:"productId"`
	URL           string            `gorm:"type:varchar(2048);not null;uniqueIndex:idx_owner_url" json:"url"`
	RetailerName  string            `gorm:"type:varchar(100)" json:"retailerName"`
	ProductName   string            `gorm:"type:text" json:"productName"`
	Data          datatypes.JSONMap `gorm:"type:jsonb" json:"data"`
	ImageURL      string            `gorm:"type:text" json:"imageUrl,omitempty"`
	LastCrawledAt *time.Time        `json:"lastCrawledAt,omitempty"`
	OwnerID       uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_owner_url;index" json:"ownerId"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"createdAt"`
}

func (CompetitorListing) TableName() string { return "competitor_listings" }

// PriceHistory is an append-only snapshot of a listing's data at crawl time.
// Rows are immutable once written.
type PriceHistory struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	ListingID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"listingId"`
	Data       datatypes.JSONMap `gorm:"type:jsonb" json:"data"`
	RecordedAt time.Time         `gorm:"autoCreateTime" json:"recordedAt"`
}

func (PriceHistory) TableName() string { return "price_history" }
