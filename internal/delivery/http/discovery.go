package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/competitive-edge/backend/internal/usecase"
)

// discoverRequest configures one discovery run. All fields are optional;
// missing values fall back to server defaults.
type discoverRequest struct {
	SearchQuery           string   `json:"searchQuery"`
	Retailers             []string `json:"retailers"`
	MaxResultsPerRetailer int      `json:"maxResultsPerRetailer"`
}

// defaultRetailers are searched when the request names none.
var defaultRetailers = []string{"amazon", "walmart", "homedepot", "lowes"}

// DiscoverCompetitors runs a discovery batch for the product and returns the
// scored candidates. The batch replaces any previous one for this product.
func (h *Handler) DiscoverCompetitors(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req discoverRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
	}
	if len(req.Retailers) == 0 {
		req.Retailers = defaultRetailers
	}
	if req.MaxResultsPerRetailer == 0 {
		req.MaxResultsPerRetailer = h.defaultMaxResults
	}

	product, err := h.products.GetByID(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	candidates, err := h.discovery.Discover(c.Request.Context(), product, usecase.DiscoveryConfig{
		SearchQuery:           req.SearchQuery,
		Retailers:             req.Retailers,
		MaxResultsPerRetailer: req.MaxResultsPerRetailer,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"productId":  product.ID,
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// ListCandidates returns the current cached candidate batch for a product.
// An expired or absent batch is an empty list.
func (h *Handler) ListCandidates(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Confirm ownership before exposing the batch
	product, err := h.products.GetByID(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	candidates := h.discovery.Candidates(product.ID)
	c.JSON(http.StatusOK, gin.H{
		"productId":  product.ID,
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// ApproveCandidate promotes one cached candidate into a persisted competitor
// listing and removes it from the batch.
func (h *Handler) ApproveCandidate(c *gin.Context) {
	var req usecase.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	listing, err := h.discovery.Approve(c.Request.Context(), ownerID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, listing)
}
