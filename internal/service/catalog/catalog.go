package catalog

import (
	"context"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/sareenotsorry/shop/internal/models"
	"github.com/sareenotsorry/shop/internal/util"
)

// effectivePrice is the expression filters compare against: sale price
// when set, list price otherwise.
const effectivePrice = "COALESCE(sale_price, price)"

// Params are the raw query-string values; empty strings mean unset.
type Params struct {
	Search   string
	Category string
	Fabric   string
	Occasion string
	MinPrice string
	MaxPrice string
	SortBy   string
	Page     int
	Limit    int
}

type Result struct {
	Products   []models.Product `json:"products"`
	Total      int64            `json:"totalProducts"`
	Page       int              `json:"currentPage"`
	TotalPages int64            `json:"totalPages"`
	Limit      int              `json:"limit"`
}

var sortOrders = map[string]string{
	"price":      "price ASC",
	"-price":     "price DESC",
	"-rating":    "rating DESC",
	"title":      "title ASC",
	"-createdAt": "created_at DESC",
	"createdAt":  "created_at ASC",
}

// List translates the loosely-typed request parameters into a filtered,
// sorted, paginated listing of active products.
func List(ctx context.Context, db *gorm.DB, p Params) (*Result, error) {
	q := db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true)

	if p.Search != "" {
		needle := "%" + strings.ToLower(p.Search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", needle, needle)
	}
	if p.Category != "" {
		// Categories are stored as a JSON array in a text column, so
		// membership is a match on the quoted element.
		q = q.Where("categories LIKE ?", `%"`+p.Category+`"%`)
	}
	if p.Fabric != "" {
		q = q.Where("fabric = ?", p.Fabric)
	}
	if p.Occasion != "" {
		q = q.Where("occasion = ?", p.Occasion)
	}
	if min, ok := parsePrice(p.MinPrice); ok {
		q = q.Where(effectivePrice+" >= ?", min)
	}
	if max, ok := parsePrice(p.MaxPrice); ok {
		q = q.Where(effectivePrice+" <= ?", max)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	sortOrder, ok := sortOrders[p.SortBy]
	if !ok {
		sortOrder = sortOrders["createdAt"]
	}

	offset, limit := util.Calculate(p.Page, p.Limit)
	var products []models.Product
	if err := q.Order(sortOrder).Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}

	page := p.Page
	if page < 1 {
		page = 1
	}
	return &Result{
		Products:   products,
		Total:      total,
		Page:       page,
		TotalPages: util.TotalPages(total, limit),
		Limit:      limit,
	}, nil
}

func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
