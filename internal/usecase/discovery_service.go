package usecase

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/competitive-edge/backend/internal/domain"
)

// trackingParams are query parameters stripped during URL normalization; they
// vary per visit and would defeat candidate dedup.
var trackingParams = map[string]bool{
	"fbclid":    true,
	"gclid":     true,
	"msclkid":   true,
	"ref":       true,
	"ref_":      true,
	"tag":       true,
	"affid":     true,
	"irclickid": true,
	"mc_cid":    true,
	"mc_eid":    true,
	"athcpid":   true,
	"athznid":   true,
	"sourceid":  true,
	"srsltid":   true,
	"spm":       true,
	"cmpid":     true,
	"cm_mmc":    true,
	"linkcode":  true,
	"keywords":  true,
	"qid":       true,
	"sr":        true,
	"sprefix":   true,
	"crid":      true,
	"dib":       true,
	"dib_tag":   true,
}

// DiscoveryService owns the competitor discovery lifecycle: it plans retailer
// searches, crawls and extracts candidates, scores them, and maintains the
// per-product candidate batch. Approval migrates a candidate into a persisted
// CompetitorListing.
type DiscoveryService struct {
	planner   *QueryPlanner
	schemas   *SchemaService
	scorer    *ConfidenceScorer
	crawler   domain.Crawler
	extractor domain.Extractor
	embedder  domain.Embedder
	cache     domain.CandidateCache
	products  domain.ProductRepository
	listings  domain.ListingRepository
	history   domain.PriceHistoryRepository
}

// NewDiscoveryService creates a new discovery service with dependencies
func NewDiscoveryService(
	crawler domain.Crawler,
	extractor domain.Extractor,
	embedder domain.Embedder,
	cache domain.CandidateCache,
	products domain.ProductRepository,
	listings domain.ListingRepository,
	history domain.PriceHistoryRepository,
) *DiscoveryService {
	return &DiscoveryService{
		planner:   NewQueryPlanner(),
		schemas:   NewSchemaService(),
		scorer:    NewConfidenceScorer(),
		crawler:   crawler,
		extractor: extractor,
		embedder:  embedder,
		cache:     cache,
		products:  products,
		listings:  listings,
		history:   history,
	}
}

// Discover runs one discovery batch for the product and installs the result
// as the product's cached candidate batch, replacing any previous batch
// wholesale. Individual retailer or candidate failures are logged and skipped;
// the batch returns whatever succeeded. Cancellation before completion skips
// the cache write and leaves the previous batch untouched.
func (s *DiscoveryService) Discover(ctx context.Context, product *domain.Product, config DiscoveryConfig) ([]domain.CandidateListing, error) {
	requests, err := s.planner.Plan(product.Name, config)
	if err != nil {
		return nil, err
	}

	schema := product.Schema.Data()
	userEmbedding := s.embedText(ctx, product.Name)

	var collected []domain.CandidateListing
	for _, request := range requests {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		hits, err := s.crawler.SearchRetailer(ctx, request.RetailerID, request.Query, request.MaxResults)
		if err != nil {
			log.Warn().Err(err).Str("retailer", request.RetailerID).Msg("retailer search failed, skipping")
			continue
		}

		for _, hit := range hits {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			candidate, err := s.buildCandidate(ctx, product, schema, request.RetailerID, hit, userEmbedding)
			if err != nil {
				log.Warn().Err(err).Str("url", hit.URL).Msg("candidate excluded from batch")
				continue
			}
			collected = append(collected, *candidate)
		}
	}

	batch := dedupeCandidates(collected)
	sort.SliceStable(batch, func(i, j int) bool {
		return batch[i].ConfidenceScore > batch[j].ConfidenceScore
	})

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	s.cache.Install(product.ID, batch)

	log.Info().
		Str("product_id", product.ID.String()).
		Int("candidates", len(batch)).
		Int("crawled", len(collected)).
		Msg("discovery batch installed")

	return batch, nil
}

// buildCandidate fetches, extracts, embeds and scores a single search hit.
func (s *DiscoveryService) buildCandidate(
	ctx context.Context,
	product *domain.Product,
	schema domain.ProductSchema,
	retailerID string,
	hit domain.SearchHit,
	userEmbedding []float32,
) (*domain.CandidateListing, error) {
	page, err := s.crawler.Fetch(ctx, hit.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	extraction, err := s.extractor.Extract(ctx, page.RawText, schema)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	candidateName := hit.Title
	if name, ok := extraction.Data["name"].(string); ok && name != "" {
		candidateName = name
	}

	candidateData := s.schemas.NormalizeData(extraction.Data, schema)
	candidateEmbedding := s.embedText(ctx, candidateName)

	breakdown := s.scorer.Score(schema, map[string]any(product.Data), candidateData, userEmbedding, candidateEmbedding)

	imageURL := extraction.ImageURL
	if imageURL == "" {
		imageURL = page.ImageURL
	}

	return &domain.CandidateListing{
		URL:                hit.URL,
		RetailerName:       retailerID,
		ProductName:        candidateName,
		ExtractedData:      candidateData,
		ImageURL:           imageURL,
		ConfidenceScore:    breakdown.Confidence,
		SpecSimilarity:     breakdown.SpecSimilarity,
		SemanticSimilarity: breakdown.SemanticSimilarity,
		Schema:             schema,
	}, nil
}

// embedText degrades to a nil vector on failure; the scorer treats a missing
// embedding as a zero semantic term rather than an error.
func (s *DiscoveryService) embedText(ctx context.Context, text string) []float32 {
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("embedding unavailable, semantic term degraded to 0")
		return nil
	}
	return vector
}

// Candidates returns the current cached batch for a product. A cache miss is
// an empty batch, not an error.
func (s *DiscoveryService) Candidates(productID uuid.UUID) []domain.CandidateListing {
	batch, ok := s.cache.Batch(productID)
	if !ok {
		return []domain.CandidateListing{}
	}
	return batch
}

// InvalidateCandidates drops the cached batch for a product. Called when the
// product is deleted or its schema changes, since cached scores reference the
// old schema.
func (s *DiscoveryService) InvalidateCandidates(productID uuid.UUID) {
	s.cache.Invalidate(productID)
}

// ApproveRequest identifies one candidate of the product's current batch.
type ApproveRequest struct {
	ProductID uuid.UUID `json:"productId"`
	URL       string    `json:"url"`
}

// Approve migrates a candidate from the current batch into a persisted
// CompetitorListing. The candidate is removed from the batch only after
// persistence succeeds, so a store failure leaves it retryable.
func (s *DiscoveryService) Approve(ctx context.Context, ownerID uuid.UUID, req ApproveRequest) (*domain.CompetitorListing, error) {
	product, err := s.products.GetByID(ctx, ownerID, req.ProductID)
	if err != nil {
		return nil, err
	}

	candidate, ok := s.findCandidate(req.ProductID, req.URL)
	if !ok {
		return nil, domain.ErrCandidateNotFound
	}

	schema := product.Schema.Data()
	if valid, problems := s.schemas.ValidateData(candidate.ExtractedData, schema); !valid {
		return nil, &domain.ValidationErrors{Problems: problems}
	}
	normalized := s.schemas.NormalizeData(candidate.ExtractedData, schema)

	now := time.Now().UTC()
	listing := &domain.CompetitorListing{
		ProductID:     product.ID,
		URL:           candidate.URL,
		RetailerName:  candidate.RetailerName,
		ProductName:   candidate.ProductName,
		Data:          normalized,
		ImageURL:      candidate.ImageURL,
		LastCrawledAt: &now,
		OwnerID:       ownerID,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	s.recordSnapshot(ctx, listing)
	s.cache.Remove(req.ProductID, candidate.URL)

	return listing, nil
}

// LinkRequest manually links a competitor URL to a product without a
// discovery batch.
type LinkRequest struct {
	ProductID    uuid.UUID `json:"productId"`
	URL          string    `json:"url"`
	RetailerName string    `json:"retailerName"`
}

// LinkManual crawls and extracts a user-supplied URL and persists it directly
// as a CompetitorListing.
func (s *DiscoveryService) LinkManual(ctx context.Context, ownerID uuid.UUID, req LinkRequest) (*domain.CompetitorListing, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("%w: url is required", domain.ErrInvalidRequest)
	}

	product, err := s.products.GetByID(ctx, ownerID, req.ProductID)
	if err != nil {
		return nil, err
	}
	schema := product.Schema.Data()

	page, err := s.crawler.Fetch(ctx, req.URL)
	if err != nil {
		return nil, err
	}
	extraction, err := s.extractor.Extract(ctx, page.RawText, schema)
	if err != nil {
		return nil, err
	}
	normalized := s.schemas.NormalizeData(extraction.Data, schema)

	// name is extracted alongside the schema fields but is not one of them
	productName, _ := extraction.Data["name"].(string)
	if productName == "" {
		productName = req.URL
	}
	imageURL := extraction.ImageURL
	if imageURL == "" {
		imageURL = page.ImageURL
	}

	now := time.Now().UTC()
	listing := &domain.CompetitorListing{
		ProductID:     product.ID,
		URL:           req.URL,
		RetailerName:  req.RetailerName,
		ProductName:   productName,
		Data:          normalized,
		ImageURL:      imageURL,
		LastCrawledAt: &now,
		OwnerID:       ownerID,
	}
	if err := s.listings.Create(ctx, listing); err != nil {
		return nil, err
	}

	s.recordSnapshot(ctx, listing)
	return listing, nil
}

// Recrawl refetches one listing, updates its data and appends a price-history
// snapshot. History is append-only: recrawls never rewrite previous rows.
func (s *DiscoveryService) Recrawl(ctx context.Context, ownerID, listingID uuid.UUID) (*domain.CompetitorListing, error) {
	listing, err := s.listings.GetByID(ctx, ownerID, listingID)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, ownerID, listing.ProductID)
	if err != nil {
		return nil, err
	}
	schema := product.Schema.Data()

	page, err := s.crawler.Fetch(ctx, listing.URL)
	if err != nil {
		return nil, err
	}
	extraction, err := s.extractor.Extract(ctx, page.RawText, schema)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listing.Data = s.schemas.NormalizeData(extraction.Data, schema)
	listing.LastCrawledAt = &now
	if page.ImageURL != "" {
		listing.ImageURL = page.ImageURL
	}
	if err := s.listings.Update(ctx, listing); err != nil {
		return nil, err
	}

	s.recordSnapshot(ctx, listing)
	return listing, nil
}

func (s *DiscoveryService) recordSnapshot(ctx context.Context, listing *domain.CompetitorListing) {
	record := &domain.PriceHistory{
		ListingID:  listing.ID,
		Data:       listing.Data,
		RecordedAt: time.Now().UTC(),
	}
	if err := s.history.Append(ctx, record); err != nil {
		log.Error().Err(err).Str("listing_id", listing.ID.String()).Msg("failed to record price history snapshot")
	}
}

func (s *DiscoveryService) findCandidate(productID uuid.UUID, rawURL string) (domain.CandidateListing, bool) {
	batch, ok := s.cache.Batch(productID)
	if !ok {
		return domain.CandidateListing{}, false
	}
	key := NormalizeURL(rawURL)
	for _, candidate := range batch {
		if NormalizeURL(candidate.URL) == key {
			return candidate, true
		}
	}
	return domain.CandidateListing{}, false
}

// dedupeCandidates collapses candidates sharing a normalized URL, keeping the
// highest-scoring one.
func dedupeCandidates(candidates []domain.CandidateListing) []domain.CandidateListing {
	best := make(map[string]int, len(candidates))
	result := make([]domain.CandidateListing, 0, len(candidates))

	for _, candidate := range candidates {
		key := NormalizeURL(candidate.URL)
		idx, seen := best[key]
		if !seen {
			best[key] = len(result)
			result = append(result, candidate)
			continue
		}
		if candidate.ConfidenceScore > result[idx].ConfidenceScore {
			result[idx] = candidate
		}
	}

	return result
}

// NormalizeURL lower-cases the scheme and host, drops fragments and strips
// tracking query parameters. It is the dedup key for a discovery batch.
func NormalizeURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || parsed.Host == "" {
		return strings.ToLower(strings.TrimSpace(raw))
	}

	parsed.Scheme = strings.ToLower(parsed.Scheme)
	parsed.Host = strings.ToLower(parsed.Host)
	parsed.Fragment = ""

	query := parsed.Query()
	for param := range query {
		if trackingParams[param] || strings.HasPrefix(strings.ToLower(param), "utm_") {
			query.Del(param)
		}
	}
	parsed.RawQuery = query.Encode()

	return strings.TrimSuffix(parsed.String(), "?")
}
