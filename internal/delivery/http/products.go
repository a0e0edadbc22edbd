package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"

	"github.com/competitive-edge/backend/internal/domain"
)

// productRequest is the payload for creating or updating a product.
type productRequest struct {
	SKU         string               `json:"sku"`
	Name        string               `json:"name" binding:"required"`
	ProductType string               `json:"productType" binding:"required"`
	Schema      domain.ProductSchema `json:"schema"`
	Data        map[string]any       `json:"data"`
}

// CreateProduct validates the schema and data, then persists a new product.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if valid, problems := h.schemas.ValidateSchema(req.Schema); !valid {
		respondError(c, &domain.ValidationErrors{Problems: problems})
		return
	}
	if valid, problems := h.schemas.ValidateData(req.Data, req.Schema); !valid {
		respondError(c, &domain.ValidationErrors{Problems: problems})
		return
	}

	product := &domain.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		ProductType: req.ProductType,
		Schema:      datatypes.NewJSONType(req.Schema),
		Data:        datatypes.JSONMap(h.schemas.NormalizeData(req.Data, req.Schema)),
		OwnerID:     ownerID(c),
	}
	if err := h.products.Create(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, product)
}

// ListProducts returns all products owned by the caller.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), ownerID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"count":    len(products),
	})
}

// GetProduct returns one product by id.
func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), ownerID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateProduct replaces a product's editable attributes. Schema and data are
// revalidated together, since a schema change can invalidate existing data.
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if valid, problems := h.schemas.ValidateSchema(req.Schema); !valid {
		respondError(c, &domain.ValidationErrors{Problems: problems})
		return
	}
	if valid, problems := h.schemas.ValidateData(req.Data, req.Schema); !valid {
		respondError(c, &domain.ValidationErrors{Problems: problems})
		return
	}

	owner := ownerID(c)
	product, err := h.products.GetByID(c.Request.Context(), owner, id)
	if err != nil {
		respondError(c, err)
		return
	}

	product.SKU = req.SKU
	product.Name = req.Name
	product.ProductType = req.ProductType
	product.Schema = datatypes.NewJSONType(req.Schema)
	product.Data = datatypes.JSONMap(h.schemas.NormalizeData(req.Data, req.Schema))

	if err := h.products.Update(c.Request.Context(), product); err != nil {
		respondError(c, err)
		return
	}

	// Cached candidates were scored against the old schema
	h.discovery.InvalidateCandidates(id)

	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product along with its listings and history, and
// drops any cached candidate batch.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(c.Request.Context(), ownerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	h.discovery.InvalidateCandidates(id)

	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}
