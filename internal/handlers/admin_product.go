package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/sareenotsorry/shop/internal/middleware/auth"
	"github.com/sareenotsorry/shop/internal/models"
	"github.com/sareenotsorry/shop/internal/mykafka"
	"github.com/sareenotsorry/shop/internal/service/search"
)

// AdminProductHandler owns the back-office product CRUD. Writes publish a
// product event and refresh the search index, both best effort.
type AdminProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	Index    string
}

type productRequest struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Categories  models.StringList `json:"categories"`
	Price       float64           `json:"price"`
	SalePrice   *float64          `json:"salePrice"`
	Stock       *uint             `json:"stock"`
	Images      models.StringList `json:"images"`
	Fabric      string            `json:"fabric"`
	Color       string            `json:"color"`
	Occasion    string            `json:"occasion"`
	IsActive    *bool             `json:"isActive"`
}

func (h *AdminProductHandler) ListProducts(c echo.Context) error {
	var products []models.Product
	if err := h.DB.Order("created_at DESC").Find(&products).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *AdminProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	if req.Title == "" || req.Description == "" || req.Price <= 0 || req.Stock == nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Missing required fields"})
	}

	slug := slugify(req.Title)
	var existing models.Product
	err := h.DB.Where("slug = ?", slug).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Product with this title already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := models.Product{
		VendorID:    authmw.UserID(c),
		Title:       req.Title,
		Slug:        slug,
		Description: req.Description,
		Categories:  req.Categories,
		Price:       req.Price,
		SalePrice:   req.SalePrice,
		Stock:       *req.Stock,
		Images:      req.Images,
		Fabric:      req.Fabric,
		Color:       req.Color,
		Occasion:    req.Occasion,
		IsActive:    isActive,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return respondError(c, err)
	}

	h.afterWrite(c, "product_created", &product)
	return c.JSON(http.StatusCreated, product)
}

func (h *AdminProductHandler) UpdateProduct(c echo.Context) error {
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

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	if req.Title == "" || req.Description == "" || req.Price <= 0 || req.Stock == nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Missing required fields"})
	}

	product.Title = req.Title
	product.Description = req.Description
	product.Categories = req.Categories
	product.Price = req.Price
	product.SalePrice = req.SalePrice
	product.Stock = *req.Stock
	product.Images = req.Images
	product.Fabric = req.Fabric
	product.Color = req.Color
	product.Occasion = req.Occasion
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := h.DB.Save(&product).Error; err != nil {
		return respondError(c, err)
	}

	h.afterWrite(c, "product_updated", &product)
	return c.JSON(http.StatusOK, product)
}

// PatchProduct applies a partial update; only the fields present in the
// body change.
func (h *AdminProductHandler) PatchProduct(c echo.Context) error {
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

	var req productRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}

	if req.Title != "" {
		product.Title = req.Title
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Categories != nil {
		product.Categories = req.Categories
	}
	if req.Price > 0 {
		product.Price = req.Price
	}
	if req.SalePrice != nil {
		product.SalePrice = req.SalePrice
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if req.Fabric != "" {
		product.Fabric = req.Fabric
	}
	if req.Color != "" {
		product.Color = req.Color
	}
	if req.Occasion != "" {
		product.Occasion = req.Occasion
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	if err := h.DB.Save(&product).Error; err != nil {
		return respondError(c, err)
	}

	h.afterWrite(c, "product_updated", &product)
	return c.JSON(http.StatusOK, product)
}

func (h *AdminProductHandler) DeleteProduct(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	res := h.DB.Delete(&models.Product{}, id)
	if res.Error != nil {
		return respondError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, errorBody{Error: "Product not found"})
	}

	h.publish(c, map[string]any{"type": "product_deleted", "productID": id})
	if h.ES != nil {
		if err := search.DeleteProduct(c.Request().Context(), h.ES, h.Index, id); err != nil {
			c.Logger().Errorf("search index delete error: %v", err)
		}
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminProductHandler) afterWrite(c echo.Context, eventType string, product *models.Product) {
	h.publish(c, map[string]any{
		"type":      eventType,
		"productID": product.ID,
		"title":     product.Title,
		"price":     product.Price,
		"stock":     product.Stock,
	})
	if h.ES != nil {
		if err := search.IndexProduct(c.Request().Context(), h.ES, h.Index, product); err != nil {
			c.Logger().Errorf("search index error: %v", err)
		}
	}
}

func (h *AdminProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}
