package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authmw "github.com/sareenotsorry/shop/internal/middleware/auth"
	"github.com/sareenotsorry/shop/internal/models"
	"github.com/sareenotsorry/shop/internal/service/order"
	"github.com/sareenotsorry/shop/internal/util"
)

type AdminOrderHandler struct {
	DB     *gorm.DB
	Engine *order.Engine
}

func (h *AdminOrderHandler) adminActor(c echo.Context) order.Actor {
	return order.Actor{UserID: authmw.UserID(c), Role: models.RoleAdmin}
}

func (h *AdminOrderHandler) view(ord *models.Order) orderView {
	oh := OrderHandler{DB: h.DB}
	return oh.view(ord)
}

func (h *AdminOrderHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	limit := parseIntDefault(c.QueryParam("limit"), 10)

	params := order.ListParams{
		Status:   c.QueryParam("status"),
		VendorID: uint(parseIntDefault(c.QueryParam("vendorId"), 0)),
		Page:     page,
		Limit:    limit,
	}

	orders, total, err := h.Engine.ListOrders(c.Request().Context(), h.adminActor(c), params)
	if err != nil {
		return respondError(c, err)
	}

	oh := OrderHandler{DB: h.DB}
	return c.JSON(http.StatusOK, map[string]any{
		"orders": oh.views(orders),
		"pagination": map[string]any{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": util.TotalPages(total, limit),
		},
	})
}

func (h *AdminOrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ord, err := h.Engine.GetOrder(c.Request().Context(), id, h.adminActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h.view(ord))
}

// PatchOrder applies an admin status transition.
func (h *AdminOrderHandler) PatchOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req order.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}
	if req.Status == "" {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Status is required"})
	}

	updated, err := h.Engine.ApplyStatusTransition(c.Request().Context(), id, req, h.adminActor(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h.view(updated))
}

func (h *AdminOrderHandler) DeleteOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.Engine.DeleteOrder(c.Request().Context(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}
