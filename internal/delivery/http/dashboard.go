package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/competitive-edge/backend/internal/domain"
	"github.com/competitive-edge/backend/internal/usecase"
)

// DashboardSummary compares every listing against its product and rolls the
// alerts and price-history trends into one dashboard payload.
func (h *Handler) DashboardSummary(c *gin.Context) {
	ctx := c.Request.Context()
	owner := ownerID(c)

	listings, err := h.listings.ListByOwner(ctx, owner)
	if err != nil {
		respondError(c, err)
		return
	}

	// Products are fetched once each, listings grouped by product id.
	products := make(map[uuid.UUID]*domain.Product)
	results := make([]usecase.ListingComparison, 0, len(listings))
	listingIDs := make([]uuid.UUID, 0, len(listings))

	for i := range listings {
		listing := &listings[i]
		listingIDs = append(listingIDs, listing.ID)

		product, ok := products[listing.ProductID]
		if !ok {
			product, err = h.products.GetByID(ctx, owner, listing.ProductID)
			if err != nil {
				respondError(c, err)
				return
			}
			products[listing.ProductID] = product
		}

		results = append(results, usecase.ListingComparison{
			ListingID: listing.ID,
			Result:    h.comparisons.Compare(product.Schema.Data(), product.Data, listing.Data),
		})
	}

	history, err := h.history.ListByListings(ctx, listingIDs)
	if err != nil {
		respondError(c, err)
		return
	}

	summary := h.summaries.Summarize(results, history)
	c.JSON(http.StatusOK, summary)
}
