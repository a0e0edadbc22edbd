package usecase

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/competitive-edge/backend/internal/domain"
)

// Alert type labels surfaced on the dashboard
const (
	alertPriceDrop        = "price_drop"
	alertSpecDisadvantage = "spec_disadvantage"
)

// ListingComparison pairs a listing id with its comparison result.
type ListingComparison struct {
	ListingID uuid.UUID               `json:"listingId"`
	Result    domain.ComparisonResult `json:"comparison"`
}

// SummaryBucket is one dashboard counter with its share of listings.
type SummaryBucket struct {
	Count            int     `json:"count"`
	PercentageChange float64 `json:"percentageChange"`
}

// ListingAlerts is the per-listing alert rollup.
type ListingAlerts struct {
	ListingID uuid.UUID `json:"listingId"`
	Alerts    []string  `json:"alerts"`
	Severity  string    `json:"severity"`
}

// DashboardSummary aggregates comparison alerts and price-history trends.
type DashboardSummary struct {
	PriceDrops        SummaryBucket   `json:"priceDrops"`
	SpecDisadvantages SummaryBucket   `json:"specDisadvantages"`
	PriceIncreases    SummaryBucket   `json:"priceIncreases"`
	ListingAlerts     []ListingAlerts `json:"listingAlerts"`
}

// AlertSummaryService rolls comparison results and price history into the
// dashboard summary.
type AlertSummaryService struct{}

// NewAlertSummaryService creates a new alert summary service
func NewAlertSummaryService() *AlertSummaryService {
	return &AlertSummaryService{}
}

// Summarize counts price drops (red alerts on price-like fields plus falling
// history), spec disadvantages (yellow alerts and non-price reds) and price
// increases across all listings.
func (s *AlertSummaryService) Summarize(results []ListingComparison, history []domain.PriceHistory) DashboardSummary {
	priceDrops := make(map[uuid.UUID]bool)
	specDisadvantages := make(map[uuid.UUID]bool)
	priceIncreases := make(map[uuid.UUID]bool)

	for _, result := range results {
		for fieldName, comp := range result.Result.Fields {
			switch comp.Alert {
			case domain.AlertRed:
				if strings.Contains(strings.ToLower(fieldName), "price") {
					priceDrops[result.ListingID] = true
				} else {
					specDisadvantages[result.ListingID] = true
				}
			case domain.AlertYellow:
				specDisadvantages[result.ListingID] = true
			}
		}
		for _, comp := range result.Result.Metrics {
			if comp.Alert == domain.AlertYellow {
				specDisadvantages[result.ListingID] = true
			}
		}
	}

	// Price trends from history: compare the first and last recorded price
	// per listing.
	byListing := make(map[uuid.UUID][]domain.PriceHistory)
	for _, record := range history {
		byListing[record.ListingID] = append(byListing[record.ListingID], record)
	}
	for listingID, records := range byListing {
		if len(records) < 2 {
			continue
		}
		sort.Slice(records, func(i, j int) bool {
			return records[i].RecordedAt.Before(records[j].RecordedAt)
		})
		first, firstOK := historyPrice(records[0])
		last, lastOK := historyPrice(records[len(records)-1])
		if !firstOK || !lastOK {
			continue
		}
		if last > first {
			priceIncreases[listingID] = true
		} else if last < first {
			priceDrops[listingID] = true
		}
	}

	total := len(results)
	summary := DashboardSummary{
		PriceDrops:        bucket(len(priceDrops), total, true),
		SpecDisadvantages: bucket(len(specDisadvantages), total, false),
		PriceIncreases:    bucket(len(priceIncreases), total, false),
		ListingAlerts:     make([]ListingAlerts, 0, total),
	}

	for _, result := range results {
		var alerts []string
		if priceDrops[result.ListingID] {
			alerts = append(alerts, alertPriceDrop)
		}
		if specDisadvantages[result.ListingID] {
			alerts = append(alerts, alertSpecDisadvantage)
		}
		summary.ListingAlerts = append(summary.ListingAlerts, ListingAlerts{
			ListingID: result.ListingID,
			Alerts:    alerts,
			Severity:  severity(len(alerts)),
		})
	}

	return summary
}

func historyPrice(record domain.PriceHistory) (float64, bool) {
	for _, key := range []string{"price", "Price", "PRICE"} {
		if v, ok := record.Data[key]; ok {
			return domain.NumericValue(v)
		}
	}
	return 0, false
}

func bucket(count, total int, negative bool) SummaryBucket {
	var pct float64
	if total > 0 {
		pct = float64(count) / float64(total) * 100
	}
	if negative {
		pct = -pct
	}
	return SummaryBucket{Count: count, PercentageChange: pct}
}

func severity(alertCount int) string {
	switch {
	case alertCount >= 2:
		return "high"
	case alertCount == 1:
		return "medium"
	default:
		return "low"
	}
}
