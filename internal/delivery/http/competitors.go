package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/competitive-edge/backend/internal/usecase"
)

// LinkCompetitor crawls a user-supplied URL and persists it as a competitor
// listing, bypassing discovery.
func (h *Handler) LinkCompetitor(c *gin.Context) {
	var req usecase.LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	listing, err := h.discovery.LinkManual(c.Request.Context(), ownerID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// ListCompetitors returns the caller's competitor listings, optionally
// filtered by product via the productId query parameter.
func (h *Handler) ListCompetitors(c *gin.Context) {
	owner := ownerID(c)

	if raw := c.Query("productId"); raw != "" {
		productID, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid productId parameter"})
			return
		}
		listings, err := h.listings.ListByProduct(c.Request.Context(), owner, productID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"listings": listings, "count": len(listings)})
		return
	}

	listings, err := h.listings.ListByOwner(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listings": listings, "count": len(listings)})
}

// DeleteCompetitor removes a listing and its price history.
func (h *Handler) DeleteCompetitor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.listings.Delete(c.Request.Context(), ownerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "competitor listing deleted"})
}

// RecrawlCompetitor refetches the listing's page, updates its data and appends
// a price-history snapshot.
func (h *Handler) RecrawlCompetitor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	listing, err := h.discovery.Recrawl(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// CompareCompetitor returns the field-by-field and metric comparison between
// the listing and its product.
func (h *Handler) CompareCompetitor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	owner := ownerID(c)

	listing, err := h.listings.GetByID(c.Request.Context(), owner, id)
	if err != nil {
		respondError(c, err)
		return
	}
	product, err := h.products.GetByID(c.Request.Context(), owner, listing.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}

	result := h.comparisons.Compare(product.Schema.Data(), product.Data, listing.Data)
	c.JSON(http.StatusOK, gin.H{
		"productId":  product.ID,
		"listingId":  listing.ID,
		"comparison": result,
	})
}

// ListPriceHistory returns the listing's price-history snapshots, oldest
// first.
func (h *Handler) ListPriceHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Ownership check; history rows carry no owner column
	listing, err := h.listings.GetByID(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	records, err := h.history.ListByListing(c.Request.Context(), listing.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"listingId": listing.ID,
		"history":   records,
		"count":     len(records),
	})
}
