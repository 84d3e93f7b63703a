package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	authmw "github.com/sareenotsorry/shop/internal/middleware/auth"
	"github.com/sareenotsorry/shop/internal/service/notify"
)

type NotificationHandler struct {
	Notify *notify.Service
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	notifications, err := h.Notify.List(c.Request().Context(), authmw.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"notifications": notifications})
}

// PatchNotifications marks one notification read, or all of them.
func (h *NotificationHandler) PatchNotifications(c echo.Context) error {
	var req struct {
		NotificationID uint `json:"notificationId"`
		MarkAllAsRead  bool `json:"markAllAsRead"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "invalid request body"})
	}

	userID := authmw.UserID(c)
	ctx := c.Request().Context()

	switch {
	case req.MarkAllAsRead:
		if err := h.Notify.MarkAllRead(ctx, userID); err != nil {
			return respondError(c, err)
		}
	case req.NotificationID != 0:
		if err := h.Notify.MarkRead(ctx, userID, req.NotificationID); err != nil {
			return respondError(c, err)
		}
	default:
		return c.JSON(http.StatusBadRequest, errorBody{Error: "Either notificationId or markAllAsRead is required"})
	}

	notifications, err := h.Notify.List(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"notifications": notifications})
}
