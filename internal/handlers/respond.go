package handlers

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sareenotsorry/shop/internal/logging"
	"github.com/sareenotsorry/shop/internal/service/inventory"
	"github.com/sareenotsorry/shop/internal/service/notify"
	"github.com/sareenotsorry/shop/internal/service/order"
)

type errorBody struct {
	Error string `json:"error"`
}

// respondError maps service sentinels onto the API's status codes.
// Unexpected failures are logged server-side and surfaced generically.
func respondError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, inventory.ErrInsufficientStock):
		return c.JSON(http.StatusBadRequest, errorBody{Error: errMessage(err)})
	case errors.Is(err, order.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorBody{Error: errMessage(err)})
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, notify.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorBody{Error: errMessage(err)})
	default:
		logging.FromContext(c.Request().Context()).Error("request failed", "error", err)
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "Internal server error"})
	}
}

// errMessage strips the leading sentinel text ("validation: ", ...) so
// clients see only the human-readable part.
func errMessage(err error) string {
	msg := err.Error()
	for _, prefix := range []string{"validation: ", "forbidden: ", "not found: "} {
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(s string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}
