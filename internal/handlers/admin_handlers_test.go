package handlers

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sareenotsorry/shop/internal/models"
)

func TestGetStats(t *testing.T) {
	db := newHandlerDB(t)
	h := &StatsHandler{DB: db}

	seedHandlerUser(t, db, "admin", models.RoleAdmin)
	seedHandlerUser(t, db, "asha", models.RoleCustomer)
	seedHandlerUser(t, db, "vendor", models.RoleVendor)

	seedHandlerProduct(t, db, "plentiful", 100, 50, 1)
	seedHandlerProduct(t, db, "running-low", 100, 3, 1)

	now := time.Now()
	require.NoError(t, db.Create(&models.Order{
		OrderNumber: "ORD1", UserID: 2, TotalAmount: 1500,
		Status: models.OrderStatusDelivered, PaymentMethod: "COD",
		PaymentStatus: models.PaymentStatusPaid, DeliveredAt: &now,
	}).Error)
	require.NoError(t, db.Create(&models.Order{
		OrderNumber: "ORD2", UserID: 2, TotalAmount: 900,
		Status: models.OrderStatusPending, PaymentMethod: "COD",
		PaymentStatus: models.PaymentStatusPending,
	}).Error)

	c, rec := newJSONContext(t, http.MethodGet, "/api/v1/admin/stats", nil, 1, models.RoleAdmin)
	require.NoError(t, h.GetStats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.Equal(t, float64(2), body["totalUsers"])
	require.Equal(t, float64(2), body["totalProducts"])
	require.Equal(t, float64(2), body["totalOrders"])
	require.Equal(t, float64(1500), body["totalRevenue"])
	require.Equal(t, float64(1), body["pendingOrders"])
	require.Equal(t, float64(1), body["lowStockProducts"])
}

func TestCreateCategory(t *testing.T) {
	db := newHandlerDB(t)
	h := &CategoryHandler{DB: db}

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/admin/categories",
		map[string]any{"name": "Wedding Silks", "description": "for the big day"}, 1, models.RoleAdmin)
	require.NoError(t, h.CreateCategory(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	category := body["category"].(map[string]any)
	require.Equal(t, "wedding-silks", category["slug"])
	require.Equal(t, true, category["isActive"])

	// Same name, different casing: still a duplicate.
	c, rec = newJSONContext(t, http.MethodPost, "/api/v1/admin/categories",
		map[string]any{"name": "wedding silks", "description": "dup"}, 1, models.RoleAdmin)
	require.NoError(t, h.CreateCategory(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "Category with this name already exists", decodeBody(t, rec)["error"])

	c, rec = newJSONContext(t, http.MethodPost, "/api/v1/admin/categories",
		map[string]any{"name": "No Description"}, 1, models.RoleAdmin)
	require.NoError(t, h.CreateCategory(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListCategoriesPublicFiltersInactive(t *testing.T) {
	db := newHandlerDB(t)
	h := &CategoryHandler{DB: db}

	require.NoError(t, db.Create(&models.Category{
		Name: "Silk", Slug: "silk", Description: "d", IsActive: true,
	}).Error)
	require.NoError(t, db.Create(&models.Category{
		Name: "Retired", Slug: "retired", Description: "d", IsActive: false,
	}).Error)

	product := models.Product{
		VendorID: 1, Title: "wedding-silk", Slug: "wedding-silk", Description: "d",
		Price: 100, Stock: 1, IsActive: true,
		Categories: models.StringList{"silk"},
	}
	require.NoError(t, db.Create(&product).Error)

	c, rec := newJSONContext(t, http.MethodGet, "/api/v1/categories", nil, 0, "")
	require.NoError(t, h.ListCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	categories := body["categories"].([]any)
	require.Len(t, categories, 1)
	first := categories[0].(map[string]any)
	require.Equal(t, "silk", first["slug"])
	require.Equal(t, float64(1), first["productCount"])

	// Admin listing includes the inactive one.
	c, rec = newJSONContext(t, http.MethodGet, "/api/v1/admin/categories", nil, 1, models.RoleAdmin)
	require.NoError(t, h.AdminListCategories(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decodeBody(t, rec)["categories"].([]any), 2)
}

func TestUpdateCategory(t *testing.T) {
	db := newHandlerDB(t)
	h := &CategoryHandler{DB: db}

	category := models.Category{Name: "Silk", Slug: "silk", Description: "d", IsActive: true}
	require.NoError(t, db.Create(&category).Error)
	other := models.Category{Name: "Cotton", Slug: "cotton", Description: "d", IsActive: true}
	require.NoError(t, db.Create(&other).Error)

	id := strconv.Itoa(int(category.ID))

	c, rec := newJSONContext(t, http.MethodPut, "/api/v1/admin/categories/"+id,
		map[string]any{"name": "Pure Silk", "isActive": false}, 1, models.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.UpdateCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeBody(t, rec)["category"].(map[string]any)
	require.Equal(t, "pure-silk", updated["slug"])
	require.Equal(t, false, updated["isActive"])

	// Renaming onto another category's name is rejected.
	c, rec = newJSONContext(t, http.MethodPut, "/api/v1/admin/categories/"+id,
		map[string]any{"name": "Cotton"}, 1, models.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.UpdateCategory(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteCategory(t *testing.T) {
	db := newHandlerDB(t)
	h := &CategoryHandler{DB: db}

	category := models.Category{Name: "Silk", Slug: "silk", Description: "d", IsActive: true}
	require.NoError(t, db.Create(&category).Error)
	id := strconv.Itoa(int(category.ID))

	c, rec := newJSONContext(t, http.MethodDelete, "/api/v1/admin/categories/"+id, nil, 1, models.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.DeleteCategory(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(t, http.MethodDelete, "/api/v1/admin/categories/"+id, nil, 1, models.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues(id)
	require.NoError(t, h.DeleteCategory(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
