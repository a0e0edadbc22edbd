package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/competitive-edge/backend/internal/domain"
	"github.com/competitive-edge/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	schemas           *usecase.SchemaService
	discovery         *usecase.DiscoveryService
	comparisons       *usecase.ComparisonService
	summaries         *usecase.AlertSummaryService
	products          domain.ProductRepository
	listings          domain.ListingRepository
	history           domain.PriceHistoryRepository
	defaultMaxResults int
}

// NewHandler creates a new HTTP handler
func NewHandler(
	discovery *usecase.DiscoveryService,
	comparisons *usecase.ComparisonService,
	products domain.ProductRepository,
	listings domain.ListingRepository,
	history domain.PriceHistoryRepository,
	defaultMaxResults int,
) *Handler {
	return &Handler{
		schemas:           usecase.NewSchemaService(),
		discovery:         discovery,
		comparisons:       comparisons,
		summaries:         usecase.NewAlertSummaryService(),
		products:          products,
		listings:          listings,
		history:           history,
		defaultMaxResults: defaultMaxResults,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "competitive-edge-backend",
		"version": "1.0.0",
	})
}

// respondError maps domain errors to HTTP status codes.
func respondError(c *gin.Context, err error) {
	var validation *domain.ValidationErrors
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "validation failed",
			"details": validation.Problems,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrInvalidConfig), errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrProductNotFound),
		errors.Is(err, domain.ErrListingNotFound),
		errors.Is(err, domain.ErrCandidateNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateURL):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCrawlTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCrawlBlocked), errors.Is(err, domain.ErrCrawlFailed),
		errors.Is(err, domain.ErrExtractionFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parseIDParam parses a uuid path parameter, writing a 400 on failure.
func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " parameter"})
		return uuid.Nil, false
	}
	return id, true
}
