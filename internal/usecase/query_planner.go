package usecase

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/competitive-edge/backend/internal/domain"
)

// Bounds on per-retailer result counts
const (
	minResultsPerRetailer = 1
	maxResultsPerRetailer = 20
)

// Compiled regex patterns for query cleaning
var (
	querySizePattern = regexp.MustCompile(`(?i)\b\d+\.?\d*\s*(?:fl\s*oz|oz|ml|liters?|l|gallons?|gal|lbs?|pounds?|kg|grams?|g|w|watts?|btu|v|volts?)\b`)
	queryMultiSpace  = regexp.MustCompile(`\s+`)
	queryOrphanPunct = regexp.MustCompile(`\s+[,\-;:]+\s+`)
	queryEdgePunct   = regexp.MustCompile(`^[\s,\-;:]+|[\s,\-;:]+$`)
)

// DiscoveryConfig controls one discovery run. SearchQuery is user-editable;
// when empty the planner derives a query from the product name.
type DiscoveryConfig struct {
	SearchQuery           string   `json:"searchQuery"`
	Retailers             []string `json:"retailers"`
	MaxResultsPerRetailer int      `json:"maxResultsPerRetailer"`
}

// SearchRequest is one retailer search to hand to the crawler. Retailer URL
// construction is the crawler's responsibility.
type SearchRequest struct {
	RetailerID string
	Query      string
	MaxResults int
}

// QueryPlanner turns a product and a discovery configuration into
// per-retailer search requests.
type QueryPlanner struct{}

// NewQueryPlanner creates a new query planner
func NewQueryPlanner() *QueryPlanner {
	return &QueryPlanner{}
}

// Plan validates the configuration and produces one search request per
// selected retailer. Invalid configs are rejected here, before any external
// call is issued.
func (p *QueryPlanner) Plan(productName string, config DiscoveryConfig) ([]SearchRequest, error) {
	if len(config.Retailers) == 0 {
		return nil, fmt.Errorf("%w: at least one retailer is required", domain.ErrInvalidConfig)
	}
	if config.MaxResultsPerRetailer < minResultsPerRetailer || config.MaxResultsPerRetailer > maxResultsPerRetailer {
		return nil, fmt.Errorf("%w: maxResultsPerRetailer must be between %d and %d",
			domain.ErrInvalidConfig, minResultsPerRetailer, maxResultsPerRetailer)
	}

	query := strings.TrimSpace(config.SearchQuery)
	if query == "" {
		query = CleanSearchQuery(productName)
	}
	if query == "" {
		return nil, fmt.Errorf("%w: empty search query", domain.ErrInvalidConfig)
	}

	seen := make(map[string]bool, len(config.Retailers))
	requests := make([]SearchRequest, 0, len(config.Retailers))
	for _, retailer := range config.Retailers {
		id := strings.ToLower(strings.TrimSpace(retailer))
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		requests = append(requests, SearchRequest{
			RetailerID: id,
			Query:      query,
			MaxResults: config.MaxResultsPerRetailer,
		})
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("%w: at least one retailer is required", domain.ErrInvalidConfig)
	}

	return requests, nil
}

// CleanSearchQuery strips size/spec noise from a product name to produce a
// focused retailer search query. Retailer titles are noisy
// (e.g. "ProMax Steamer 1500W, 1.6 gallons") and the spec numbers hurt recall.
func CleanSearchQuery(name string) string {
	// Take only text before the first comma (strip size/packaging info)
	if idx := strings.Index(name, ","); idx > 0 {
		name = name[:idx]
	}

	name = querySizePattern.ReplaceAllString(name, " ")
	name = queryOrphanPunct.ReplaceAllString(name, " ")
	name = queryMultiSpace.ReplaceAllString(name, " ")
	name = queryEdgePunct.ReplaceAllString(name, "")
	name = strings.TrimSpace(name)

	// Keep queries short; long tails of model numbers hurt search results
	if len(name) > 100 {
		name = name[:100]
		if lastSpace := strings.LastIndex(name, " "); lastSpace > 50 {
			name = name[:lastSpace]
		}
	}

	return name
}
