package usecase

import (
	"errors"
	"strings"
	"testing"

	"github.com/competitive-edge/backend/internal/domain"
)

func TestPlan(t *testing.T) {
	planner := NewQueryPlanner()

	t.Run("produces one request per retailer", func(t *testing.T) {
		requests, err := planner.Plan("ProMax Steamer", DiscoveryConfig{
			Retailers:             []string{"amazon", "walmart"},
			MaxResultsPerRetailer: 5,
		})
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if len(requests) != 2 {
			t.Fatalf("len(requests) = %d, want 2", len(requests))
		}
		for _, req := range requests {
			if req.Query != "ProMax Steamer" {
				t.Errorf("query = %q, want ProMax Steamer", req.Query)
			}
			if req.MaxResults != 5 {
				t.Errorf("maxResults = %d, want 5", req.MaxResults)
			}
		}
	})

	t.Run("explicit search query overrides the product name", func(t *testing.T) {
		requests, err := planner.Plan("ProMax Steamer 1500W", DiscoveryConfig{
			SearchQuery:           "garment steamer",
			Retailers:             []string{"amazon"},
			MaxResultsPerRetailer: 3,
		})
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if requests[0].Query != "garment steamer" {
			t.Errorf("query = %q, want garment steamer", requests[0].Query)
		}
	})

	t.Run("deduplicates retailers case-insensitively", func(t *testing.T) {
		requests, err := planner.Plan("Steamer", DiscoveryConfig{
			Retailers:             []string{"Amazon", "amazon", " AMAZON "},
			MaxResultsPerRetailer: 5,
		})
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if len(requests) != 1 {
			t.Fatalf("len(requests) = %d, want 1", len(requests))
		}
		if requests[0].RetailerID != "amazon" {
			t.Errorf("retailer id = %q, want amazon", requests[0].RetailerID)
		}
	})

	tests := []struct {
		name    string
		product string
		config  DiscoveryConfig
	}{
		{
			name:    "empty retailer list",
			product: "Steamer",
			config:  DiscoveryConfig{Retailers: nil, MaxResultsPerRetailer: 5},
		},
		{
			name:    "only blank retailer names",
			product: "Steamer",
			config:  DiscoveryConfig{Retailers: []string{"", "  "}, MaxResultsPerRetailer: 5},
		},
		{
			name:    "max results of zero",
			product: "Steamer",
			config:  DiscoveryConfig{Retailers: []string{"amazon"}, MaxResultsPerRetailer: 0},
		},
		{
			name:    "max results above upper bound",
			product: "Steamer",
			config:  DiscoveryConfig{Retailers: []string{"amazon"}, MaxResultsPerRetailer: 21},
		},
		{
			name:    "negative max results",
			product: "Steamer",
			config:  DiscoveryConfig{Retailers: []string{"amazon"}, MaxResultsPerRetailer: -1},
		},
		{
			name:    "empty query after cleaning",
			product: "  ",
			config:  DiscoveryConfig{Retailers: []string{"amazon"}, MaxResultsPerRetailer: 5},
		},
	}

	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := planner.Plan(tt.product, tt.config)
			if err == nil {
				t.Fatal("Plan() error = nil, want invalid config error")
			}
			if !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	t.Run("accepts boundary max results", func(t *testing.T) {
		for _, max := range []int{1, 20} {
			_, err := planner.Plan("Steamer", DiscoveryConfig{
				Retailers:             []string{"amazon"},
				MaxResultsPerRetailer: max,
			})
			if err != nil {
				t.Errorf("Plan() with max %d error = %v, want nil", max, err)
			}
		}
	})
}

func TestCleanSearchQuery(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "strips text after first comma",
			in:   "ProMax Garment Steamer, 1.6 gallons, white",
			want: "ProMax Garment Steamer",
		},
		{
			name: "removes size tokens",
			in:   "ProMax Steamer 1500W Deluxe",
			want: "ProMax Steamer Deluxe",
		},
		{
			name: "collapses whitespace",
			in:   "ProMax    Steamer",
			want: "ProMax Steamer",
		},
		{
			name: "plain name unchanged",
			in:   "ProMax Steamer",
			want: "ProMax Steamer",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CleanSearchQuery(tt.in)
			if got != tt.want {
				t.Errorf("CleanSearchQuery(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCleanSearchQueryCapsLength(t *testing.T) {
	long := strings.Repeat("steamer ", 30)
	got := CleanSearchQuery(long)
	if len(got) > 100 {
		t.Errorf("len = %d, want <= 100", len(got))
	}
	if strings.HasSuffix(got, " ") {
		t.Errorf("query %q has trailing space", got)
	}
}
