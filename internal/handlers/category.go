package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sareenotsorry/shop/internal/models"
)

type CategoryHandler struct {
	DB *gorm.DB
}

type categoryView struct {
	models.Category
	ProductCount int64 `json:"productCount"`
}

func (h *CategoryHandler) withCounts(categories []models.Category) ([]categoryView, error) {
	out := make([]categoryView, len(categories))
	for i, cat := range categories {
		var count int64
		err := h.DB.Model(&models.Product{}).
			Where("is_active = ? AND categories LIKE ?", true, `%"`+cat.Slug+`"%`).
			Count(&count).Error
		if err != nil {
			return nil, err
		}
		out[i] = categoryView{Category: cat, ProductCount: count}
	}
	return out, nil
}

// ListCategories is the public listing: active categories only.
func (h *CategoryHandler) ListCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Where("is_active = ?", true).Order("created_at DESC").Find(&categories).Error; err != nil {
		return respondError(c, err)
	}
	views, err := h.withCounts(categories)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "categories": views})
}

func (h *CategoryHandler) AdminListCategories(c echo.Context) error {
	var categories []models.Category
	if err := h.DB.Order("created_at DESC").Find(&categories).Error; err != nil {
		return respondError(c, err)
	}
	views, err := h.withCounts(categories)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "categories": views})
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	IsActive    *bool  `json:"isActive"`
}

func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	if req.Name == "" || req.Description == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Name and description are required"})
	}

	slug := slugify(req.Name)
	var existing models.Category
	err := h.DB.Where("LOWER(name) = ? OR slug = ?", strings.ToLower(req.Name), slug).First(&existing).Error
	if err == nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Category with this name already exists"})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return respondError(c, err)
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	category := models.Category{
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
		Image:       req.Image,
		IsActive:    isActive,
	}
	if err := h.DB.Create(&category).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"success": true, "category": category})
}

func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var category models.Category
	if err := h.DB.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, errorBody{Error: "Category not found"})
		}
		return respondError(c, err)
	}

	var req categoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}

	if req.Name != "" && req.Name != category.Name {
		slug := slugify(req.Name)
		var existing models.Category
		err := h.DB.Where("(LOWER(name) = ? OR slug = ?) AND id <> ?", strings.ToLower(req.Name), slug, id).
			First(&existing).Error
		if err == nil {
			return c.JSON(http.StatusBadRequest, errorBody{Error: "Category with this name already exists"})
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return respondError(c, err)
		}
		category.Name = req.Name
		category.Slug = slug
	}
	if req.Description != "" {
		category.Description = req.Description
	}
	if req.Image != "" {
		category.Image = req.Image
	}
	if req.IsActive != nil {
		category.IsActive = *req.IsActive
	}
	if err := h.DB.Save(&category).Error; err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true, "category": category})
}

func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	res := h.DB.Delete(&models.Category{}, id)
	if res.Error != nil {
		return respondError(c, res.Error)
	}
	if res.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, errorBody{Error: "Category not found"})
	}
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
