package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/competitive-edge/backend/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

var whitespacePattern = regexp.MustCompile(`\s+`)

// retailerSearch describes how to search one retailer and recognize its
// product links in the result page.
type retailerSearch struct {
	searchURL   func(query string) string
	linkPattern string // goquery selector matching product anchors
}

var retailers = map[string]retailerSearch{
	"amazon": {
		searchURL: func(q string) string {
			return "https://www.amazon.com/s?k=" + url.QueryEscape(q)
		},
		linkPattern: `a[href*="/dp/"], a[href*="/gp/product/"]`,
	},
	"walmart": {
		searchURL: func(q string) string {
			return "https://www.walmart.com/search?q=" + url.QueryEscape(q)
		},
		linkPattern: `a[href^="/ip/"], a[href*="walmart.com/ip/"]`,
	},
	"homedepot": {
		searchURL: func(q string) string {
			return "https://www.homedepot.com/s/" + url.PathEscape(q)
		},
		linkPattern: `a[href^="/p/"], a[href*="homedepot.com/p/"]`,
	},
	"lowes": {
		searchURL: func(q string) string {
			return "https://www.lowes.com/search?searchTerm=" + url.QueryEscape(q)
		},
		linkPattern: `a[href^="/pd/"], a[href^="/p/"]`,
	},
}

// Config holds crawler HTTP client settings
type Config struct {
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
}

// Client fetches retailer pages over plain HTTP. Requests are rate limited
// globally and retried with backoff on transient failures.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	maxRetries  int
	userAgent   string
}

// NewClient creates a new crawler client
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 1
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 3
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		maxRetries:  cfg.MaxRetries,
		userAgent:   defaultUserAgent,
	}
}

// Fetch downloads a page and returns its readable text and main image URL.
func (c *Client) Fetch(ctx context.Context, pageURL string) (*domain.CrawlResult, error) {
	doc, err := c.fetchDocument(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	doc.Find("script, style, noscript, iframe").Remove()
	text := whitespacePattern.ReplaceAllString(doc.Find("body").Text(), " ")

	return &domain.CrawlResult{
		RawText:  strings.TrimSpace(text),
		ImageURL: extractMainImage(doc, pageURL),
	}, nil
}

// SearchRetailer runs a product search on the retailer and returns up to
// maxResults product links from the result page.
func (c *Client) SearchRetailer(ctx context.Context, retailerID, query string, maxResults int) ([]domain.SearchHit, error) {
	retailer, ok := retailers[strings.ToLower(retailerID)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownRetailer, retailerID)
	}

	searchURL := retailer.searchURL(query)
	doc, err := c.fetchDocument(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(searchURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCrawlFailed, err)
	}

	var hits []domain.SearchHit
	seen := make(map[string]bool)
	doc.Find(retailer.linkPattern).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, exists := sel.Attr("href")
		if !exists {
			return true
		}
		resolved := resolveURL(base, href)
		if resolved == "" || seen[resolved] {
			return true
		}
		seen[resolved] = true

		title := strings.TrimSpace(whitespacePattern.ReplaceAllString(sel.Text(), " "))
		hits = append(hits, domain.SearchHit{URL: resolved, Title: title})
		return len(hits) < maxResults
	})

	log.Debug().Str("retailer", retailerID).Str("query", query).Int("hits", len(hits)).Msg("retailer search")
	return hits, nil
}

// fetchDocument executes a rate-limited GET with retries and parses the body.
func (c *Client) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		doc, retryable, err := c.doFetch(ctx, pageURL)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}

		log.Warn().Err(err).Str("url", pageURL).Int("attempt", attempt).Msg("fetch failed")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt*500) * time.Millisecond):
		}
	}
	return nil, lastErr
}

func (c *Client) doFetch(ctx context.Context, pageURL string) (*goquery.Document, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrCrawlFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Timeout() {
			return nil, true, fmt.Errorf("%w: %v", domain.ErrCrawlTimeout, err)
		}
		return nil, true, fmt.Errorf("%w: %v", domain.ErrCrawlFailed, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		// A block is not transient; retrying only digs the hole deeper.
		return nil, false, fmt.Errorf("%w: status %d", domain.ErrCrawlBlocked, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, resp.StatusCode >= 500, fmt.Errorf("%w: status %d", domain.ErrCrawlFailed, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: parse: %v", domain.ErrCrawlFailed, err)
	}
	return doc, false, nil
}

// extractMainImage prefers the og:image meta tag, falling back to the first
// sizable-looking img element.
func extractMainImage(doc *goquery.Document, pageURL string) string {
	if og, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && og != "" {
		return og
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	var image string
	doc.Find("img[src]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, _ := sel.Attr("src")
		if src == "" || strings.HasPrefix(src, "data:") {
			return true
		}
		image = resolveURL(base, src)
		return image == ""
	})
	return image
}

func resolveURL(base *url.URL, href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(parsed).String()
}
