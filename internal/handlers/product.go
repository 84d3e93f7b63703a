package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sareenotsorry/shop/internal/models"
	"github.com/sareenotsorry/shop/internal/service/catalog"
)

// ProductHandler serves the public, read-only product surface.
type ProductHandler struct {
	DB *gorm.DB
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	params := catalog.Params{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		Fabric:   c.QueryParam("fabric"),
		Occasion: c.QueryParam("occasion"),
		MinPrice: c.QueryParam("minPrice"),
		MaxPrice: c.QueryParam("maxPrice"),
		SortBy:   c.QueryParam("sortBy"),
		Page:     parseIntDefault(c.QueryParam("page"), 1),
		Limit:    parseIntDefault(c.QueryParam("limit"), 12),
	}

	result, err := catalog.List(c.Request().Context(), h.DB, params)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":  true,
		"products": result.Products,
		"pagination": map[string]any{
			"currentPage":   result.Page,
			"totalPages":    result.TotalPages,
			"totalProducts": result.Total,
			"hasNextPage":   int64(result.Page) < result.TotalPages,
			"hasPrevPage":   result.Page > 1,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var product models.Product
	if err := h.DB.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, errorBody{Error: "Product not found"})
		}
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"product": product,
	})
}
