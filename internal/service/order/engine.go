package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sareenotsorry/shop/internal/logging"
	"github.com/sareenotsorry/shop/internal/models"
	"github.com/sareenotsorry/shop/internal/mykafka"
	"github.com/sareenotsorry/shop/internal/service/inventory"
	"github.com/sareenotsorry/shop/internal/service/notify"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrForbidden  = errors.New("forbidden")  // 403
)

// ErrInsufficientStock is the ledger's sentinel, re-exported so handlers
// only import this package.
var ErrInsufficientStock = inventory.ErrInsufficientStock

// Actor is the authenticated identity a request acts as.
type Actor struct {
	UserID uint
	Role   string
}

type CreateItem struct {
	ProductID uint `json:"productId"`
	Quantity  uint `json:"quantity"`
}

// TransitionRequest carries a requested status change plus the optional
// fields a role is allowed to set alongside it. A nil pointer means the
// field was not sent.
type TransitionRequest struct {
	Status         string  `json:"status"`
	TrackingNumber *string `json:"trackingNumber"`
	Notes          *string `json:"notes"`
	CancelReason   *string `json:"cancelReason"`
}

type ListParams struct {
	Status   string
	VendorID uint
	Page     int
	Limit    int
}

// Engine owns every order mutation: checkout, status transitions and
// deletion, together with their inventory and notification side effects.
type Engine struct {
	DB       *gorm.DB
	Ledger   *inventory.Ledger
	Notifier *notify.Service
	Producer *mykafka.Producer
}

func NewEngine(db *gorm.DB, producer *mykafka.Producer) *Engine {
	return &Engine{
		DB:       db,
		Ledger:   &inventory.Ledger{DB: db},
		Notifier: &notify.Service{DB: db},
		Producer: producer,
	}
}

// CreateOrder runs checkout: validates every line item, decrements stock
// and persists the order inside one transaction, so a failure on any item
// leaves no partial decrement behind.
func (e *Engine) CreateOrder(ctx context.Context, userID uint, items []CreateItem, addr models.ShippingAddress) (*models.Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: order items are required", ErrValidation)
	}
	if err := validateAddress(addr); err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.ProductID == 0 {
			return nil, fmt.Errorf("%w: productId is required", ErrValidation)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be >= 1", ErrValidation)
		}
	}

	var created models.Order
	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := e.Ledger.WithTx(tx)

		var orderItems []models.OrderItem
		var total float64
		for _, it := range items {
			var product models.Product
			if err := tx.First(&product, it.ProductID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: product %d not found or inactive", ErrValidation, it.ProductID)
				}
				return err
			}
			if !product.IsActive {
				return fmt.Errorf("%w: product %d not found or inactive", ErrValidation, it.ProductID)
			}

			if err := ledger.Decrement(ctx, product.ID, it.Quantity); err != nil {
				return err
			}

			price := product.EffectivePrice()
			subtotal := price * float64(it.Quantity)
			image := ""
			if len(product.Images) > 0 {
				image = product.Images[0]
			}
			orderItems = append(orderItems, models.OrderItem{
				ProductID: product.ID,
				VendorID:  product.VendorID,
				Title:     product.Title,
				Image:     image,
				Price:     price,
				Quantity:  it.Quantity,
				Subtotal:  subtotal,
			})
			total += subtotal
		}

		var count int64
		if err := tx.Model(&models.Order{}).Count(&count).Error; err != nil {
			return err
		}

		created = models.Order{
			OrderNumber:     fmt.Sprintf("ORD%d%04d", time.Now().UnixMilli(), count+1),
			UserID:          userID,
			Items:           orderItems,
			ShippingAddress: addr,
			TotalAmount:     total,
			Status:          models.OrderStatusPending,
			PaymentMethod:   models.PaymentMethodCOD,
			PaymentStatus:   models.PaymentStatusPending,
		}
		return tx.Create(&created).Error
	})
	if err != nil {
		return nil, err
	}

	e.publish(ctx, "order_events", map[string]any{
		"type":        "order_created",
		"eventID":     uuid.NewString(),
		"orderID":     created.ID,
		"orderNumber": created.OrderNumber,
		"userID":      userID,
		"totalAmount": created.TotalAmount,
	})

	return &created, nil
}

// ApplyStatusTransition validates and applies a status change for the
// acting role, reconciling inventory and emitting at most one notification.
//
// Side effects run in this order: release stock when entering cancelled,
// re-reserve stock when re-confirming a cancelled order (all-or-nothing),
// persist the new status, then notify the owner if the status actually
// changed.
func (e *Engine) ApplyStatusTransition(ctx context.Context, orderID uint, req TransitionRequest, actor Actor) (*models.Order, error) {
	if req.Status != "" {
		if _, ok := validStatuses[req.Status]; !ok {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, req.Status)
		}
	}
	if err := checkFields(actor.Role, req); err != nil {
		return nil, err
	}

	var ord models.Order
	if err := e.DB.WithContext(ctx).Preload("Items").First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if err := e.checkScope(&ord, actor); err != nil {
		return nil, err
	}

	previous := normalizeStatus(ord.Status)
	requested := req.Status
	if requested != "" {
		if err := checkTransition(actor, previous, requested); err != nil {
			return nil, err
		}
	}

	err := e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ledger := e.Ledger.WithTx(tx)

		if requested == models.OrderStatusCancelled && previous != models.OrderStatusCancelled {
			e.releaseStock(ctx, ledger, &ord)
		}

		if requested == models.OrderStatusConfirmed && previous == models.OrderStatusCancelled {
			if err := e.reserveStock(ctx, tx, ledger, &ord); err != nil {
				return err
			}
		}

		updates := map[string]any{"updated_at": time.Now().UTC()}
		if requested != "" {
			updates["status"] = requested
		}
		if req.TrackingNumber != nil {
			updates["tracking_number"] = *req.TrackingNumber
		}
		if req.Notes != nil {
			updates["notes"] = *req.Notes
		}
		if req.CancelReason != nil {
			updates["cancel_reason"] = *req.CancelReason
		}
		if requested == models.OrderStatusCancelled && req.CancelReason == nil && actor.Role == models.RoleCustomer {
			updates["cancel_reason"] = "Cancelled by customer"
		}
		if requested == models.OrderStatusDelivered {
			updates["delivered_at"] = time.Now().UTC()
			updates["payment_status"] = models.PaymentStatusPaid
		}
		return tx.Model(&models.Order{}).Where("id = ?", ord.ID).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	if requested != "" && requested != previous {
		if nerr := e.Notifier.NotifyOrderStatus(ctx, ord.UserID, ord.ID, ord.OrderNumber, requested); nerr != nil {
			logging.FromContext(ctx).Error("order notification failed",
				"order_id", ord.ID, "status", requested, "error", nerr)
		}
		e.publish(ctx, "order_events", map[string]any{
			"type":           "order_status_changed",
			"eventID":        uuid.NewString(),
			"orderID":        ord.ID,
			"orderNumber":    ord.OrderNumber,
			"previousStatus": previous,
			"status":         requested,
			"actorRole":      actor.Role,
		})
	}

	var updated models.Order
	if err := e.DB.WithContext(ctx).Preload("Items").First(&updated, ord.ID).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteOrder removes an order permanently. Orders that still hold
// reserved stock (confirmed, legacy approved, or shipped) release it
// first. No notification is sent.
func (e *Engine) DeleteOrder(ctx context.Context, orderID uint) error {
	return e.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ord models.Order
		if err := tx.Preload("Items").First(&ord, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, orderID)
			}
			return err
		}

		if _, holds := statusesHoldingStock[normalizeStatus(ord.Status)]; holds {
			e.releaseStock(ctx, e.Ledger.WithTx(tx), &ord)
		}

		if err := tx.Where("order_id = ?", ord.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ord).Error
	})
}

// GetOrder fetches one order scoped to the actor's visibility.
func (e *Engine) GetOrder(ctx context.Context, orderID uint, actor Actor) (*models.Order, error) {
	var ord models.Order
	if err := e.DB.WithContext(ctx).Preload("Items").First(&ord, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if err := e.checkScope(&ord, actor); err != nil {
		// Scope failures read as absence, matching the role-filtered
		// lookups the API has always done.
		return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
	}
	return &ord, nil
}

// ListOrders returns the actor-visible page of orders, newest first.
func (e *Engine) ListOrders(ctx context.Context, actor Actor, p ListParams) ([]models.Order, int64, error) {
	q := e.DB.WithContext(ctx).Model(&models.Order{})

	switch actor.Role {
	case models.RoleCustomer:
		q = q.Where("user_id = ?", actor.UserID)
	case models.RoleVendor:
		q = q.Where("id IN (SELECT order_id FROM order_items WHERE vendor_id = ?)", actor.UserID)
	case models.RoleAdmin:
		if p.VendorID != 0 {
			q = q.Where("id IN (SELECT order_id FROM order_items WHERE vendor_id = ?)", p.VendorID)
		}
	default:
		return nil, 0, fmt.Errorf("%w: unknown role %q", ErrForbidden, actor.Role)
	}

	if p.Status != "" {
		q = q.Where("status = ?", p.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset, limit := paginate(p.Page, p.Limit)
	var orders []models.Order
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

func (e *Engine) checkScope(ord *models.Order, actor Actor) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCustomer:
		if ord.UserID != actor.UserID {
			return fmt.Errorf("%w: not your order", ErrForbidden)
		}
		return nil
	case models.RoleVendor:
		for _, it := range ord.Items {
			if it.VendorID == actor.UserID {
				return nil
			}
		}
		return fmt.Errorf("%w: order has none of your items", ErrForbidden)
	default:
		return fmt.Errorf("%w: unknown role %q", ErrForbidden, actor.Role)
	}
}

// releaseStock returns every line item's quantity to the product's
// available count. A product that no longer exists is logged and skipped;
// the transition proceeds regardless.
func (e *Engine) releaseStock(ctx context.Context, ledger *inventory.Ledger, ord *models.Order) {
	for _, it := range ord.Items {
		if err := ledger.Increment(ctx, it.ProductID, it.Quantity); err != nil {
			logging.FromContext(ctx).Warn("stock release skipped",
				"order_id", ord.ID, "product_id", it.ProductID, "error", err)
		}
	}
}

// reserveStock re-reserves inventory for a cancelled order being
// re-confirmed. Every item is validated before any decrement is applied,
// and the caller's transaction makes the whole pass all-or-nothing.
func (e *Engine) reserveStock(ctx context.Context, tx *gorm.DB, ledger *inventory.Ledger, ord *models.Order) error {
	for _, it := range ord.Items {
		var product models.Product
		if err := tx.First(&product, it.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: product %s not found", ErrNotFound, it.Title)
			}
			return err
		}
		if product.Stock < it.Quantity {
			return fmt.Errorf("%w for %s. Available: %d, Required: %d",
				inventory.ErrInsufficientStock, it.Title, product.Stock, it.Quantity)
		}
	}
	for _, it := range ord.Items {
		if err := ledger.Decrement(ctx, it.ProductID, it.Quantity); err != nil {
			return err
		}
	}
	return nil
}

func checkFields(role string, req TransitionRequest) error {
	allowed, ok := roleFields[role]
	if !ok {
		return fmt.Errorf("%w: unknown role %q", ErrForbidden, role)
	}
	switch {
	case req.TrackingNumber != nil && !allowed.TrackingNumber:
		return fmt.Errorf("%w: invalid update fields for %s", ErrValidation, role)
	case req.Notes != nil && !allowed.Notes:
		return fmt.Errorf("%w: invalid update fields for %s", ErrValidation, role)
	case req.CancelReason != nil && !allowed.CancelReason:
		return fmt.Errorf("%w: invalid update fields for %s", ErrValidation, role)
	}
	return nil
}

func validateAddress(addr models.ShippingAddress) error {
	if addr.Name == "" || addr.Phone == "" || addr.Address == "" ||
		addr.City == "" || addr.State == "" || addr.Pincode == "" {
		return fmt.Errorf("%w: shipping address is required", ErrValidation)
	}
	return nil
}

func paginate(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return (page - 1) * limit, limit
}

func (e *Engine) publish(ctx context.Context, topic string, event map[string]any) {
	key := fmt.Sprint(event["orderID"])
	if err := e.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Error("kafka publish failed", "topic", topic, "error", err)
	}
}
