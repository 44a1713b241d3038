package handler

import (
	"net/http"

	"seyyar/internal/catalog"
	"seyyar/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves the static picker data: filter options, wilayas and cities.
type CatalogHandler struct {
	catalog *catalog.Catalog
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: cat}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/catalog")
	{
		group.GET("/filters", h.Filters)
		group.GET("/wilayas", h.Wilayas)
		group.GET("/wilayas/:wilaya/cities", h.Cities)
		group.GET("/brands/:brand/models", h.Models)
	}
}

func (h *CatalogHandler) Filters(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Filters retrieved successfully", h.catalog.Filters)
}

func (h *CatalogHandler) Wilayas(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Wilayas retrieved successfully", h.catalog.WilayaNames())
}

func (h *CatalogHandler) Cities(c *gin.Context) {
	wilaya := c.Param("wilaya")
	if !h.catalog.HasWilaya(wilaya) {
		utils.ErrorResponse(c, http.StatusNotFound, "Unknown wilaya")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Cities retrieved successfully", h.catalog.CitiesForWilaya(wilaya))
}

func (h *CatalogHandler) Models(c *gin.Context) {
	brand := c.Param("brand")
	if !h.catalog.HasBrand(brand) {
		utils.ErrorResponse(c, http.StatusNotFound, "Unknown brand")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Models retrieved successfully", h.catalog.ModelsForBrand(brand))
}
