package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/sareenotsorry/shop/internal/models"
)

// lowStockThreshold marks products the back office flags for restocking.
const lowStockThreshold = 5

type StatsHandler struct {
	DB *gorm.DB
}

func (h *StatsHandler) GetStats(c echo.Context) error {
	db := h.DB.WithContext(c.Request().Context())

	var totalUsers, totalProducts, totalOrders, pendingOrders, lowStock int64
	if err := db.Model(&models.User{}).Where("role <> ?", models.RoleAdmin).Count(&totalUsers).Error; err != nil {
		return respondError(c, err)
	}
	if err := db.Model(&models.Product{}).Count(&totalProducts).Error; err != nil {
		return respondError(c, err)
	}
	if err := db.Model(&models.Order{}).Count(&totalOrders).Error; err != nil {
		return respondError(c, err)
	}
	if err := db.Model(&models.Order{}).Where("status = ?", models.OrderStatusPending).Count(&pendingOrders).Error; err != nil {
		return respondError(c, err)
	}
	if err := db.Model(&models.Product{}).Where("stock <= ?", lowStockThreshold).Count(&lowStock).Error; err != nil {
		return respondError(c, err)
	}

	var totalRevenue float64
	if err := db.Model(&models.Order{}).
		Where("status = ?", models.OrderStatusDelivered).
		Select("COALESCE(SUM(total_amount), 0)").
		Scan(&totalRevenue).Error; err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"totalUsers":       totalUsers,
		"totalProducts":    totalProducts,
		"totalOrders":      totalOrders,
		"totalRevenue":     totalRevenue,
		"pendingOrders":    pendingOrders,
		"lowStockProducts": lowStock,
	})
}
