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

type OrderHandler struct {
	DB     *gorm.DB
	Engine *order.Engine
}

// orderView is an order with the owner's display fields denormalized in.
type orderView struct {
	models.Order
	UserName  string `json:"userName,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
}

func actorFrom(c echo.Context) order.Actor {
	return order.Actor{UserID: authmw.UserID(c), Role: authmw.Role(c)}
}

func (h *OrderHandler) view(ord *models.Order) orderView {
	v := orderView{Order: *ord}
	var user models.User
	if err := h.DB.First(&user, ord.UserID).Error; err == nil {
		v.UserName = user.Name
		v.UserEmail = user.Email
	}
	return v
}

func (h *OrderHandler) views(orders []models.Order) []orderView {
	out := make([]orderView, len(orders))
	for i := range orders {
		out[i] = h.view(&orders[i])
	}
	return out
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	actor := actorFrom(c)
	page := parseIntDefault(c.QueryParam("page"), 1)
	limit := parseIntDefault(c.QueryParam("limit"), 10)

	params := order.ListParams{
		Status: c.QueryParam("status"),
		Page:   page,
		Limit:  limit,
	}
	if actor.Role == models.RoleAdmin {
		params.VendorID = uint(parseIntDefault(c.QueryParam("vendorId"), 0))
	}

	orders, total, err := h.Engine.ListOrders(c.Request().Context(), actor, params)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"orders": h.views(orders),
		"pagination": map[string]any{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": util.TotalPages(total, limit),
		},
	})
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	var req struct {
		Items           []order.CreateItem     `json:"items"`
		ShippingAddress models.ShippingAddress `json:"shippingAddress"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}

	created, err := h.Engine.CreateOrder(c.Request().Context(), authmw.UserID(c), req.Items, req.ShippingAddress)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, h.view(created))
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ord, err := h.Engine.GetOrder(c.Request().Context(), id, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h.view(ord))
}

// UpdateOrder applies a role-checked status transition or field update.
func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req order.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}

	updated, err := h.Engine.ApplyStatusTransition(c.Request().Context(), id, req, actorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h.view(updated))
}
