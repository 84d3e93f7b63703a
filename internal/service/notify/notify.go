package notify

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sareenotsorry/shop/internal/models"
)

// MaxPerUser caps how many notifications a user keeps; the oldest are
// evicted first on append.
const MaxPerUser = 50

var ErrNotFound = errors.New("notification not found")

type statusTemplate struct {
	Type    string
	Title   string
	Message string
}

var statusTemplates = map[string]statusTemplate{
	models.OrderStatusConfirmed: {
		Type:    "order_confirmed",
		Title:   "Order Confirmed",
		Message: "Your order #%s has been confirmed and is being processed.",
	},
	models.OrderStatusCancelled: {
		Type:    "order_cancelled",
		Title:   "Order Cancelled",
		Message: "Your order #%s has been cancelled. The items have been returned to stock.",
	},
	models.OrderStatusPacked: {
		Type:    "order_status",
		Title:   "Order Packed",
		Message: "Your order #%s has been packed and is ready for shipping.",
	},
	models.OrderStatusShipped: {
		Type:    "order_shipped",
		Title:   "Order Shipped",
		Message: "Your order #%s has been shipped and is on its way to you.",
	},
	models.OrderStatusDelivered: {
		Type:    "order_delivered",
		Title:   "Order Delivered",
		Message: "Your order #%s has been delivered. Thank you for shopping with us!",
	},
}

type Service struct {
	DB *gorm.DB
}

// Append stores a notification for the user and evicts everything beyond
// the most recent MaxPerUser entries.
func (s *Service) Append(ctx context.Context, n *models.Notification) error {
	db := s.DB.WithContext(ctx)
	if err := db.Create(n).Error; err != nil {
		return err
	}
	return db.Exec(
		`DELETE FROM notifications WHERE user_id = ? AND id NOT IN (
			SELECT id FROM notifications WHERE user_id = ?
			ORDER BY created_at DESC, id DESC LIMIT ?)`,
		n.UserID, n.UserID, MaxPerUser,
	).Error
}

// NotifyOrderStatus records the fixed per-status message for the order's
// owner. Statuses without a template (pending) produce nothing.
func (s *Service) NotifyOrderStatus(ctx context.Context, userID, orderID uint, orderNumber, status string) error {
	tpl, ok := statusTemplates[status]
	if !ok {
		return nil
	}
	n := models.Notification{
		UserID:      userID,
		Type:        tpl.Type,
		Title:       tpl.Title,
		Message:     fmt.Sprintf(tpl.Message, orderNumber),
		OrderID:     orderID,
		OrderNumber: orderNumber,
	}
	return s.Append(ctx, &n)
}

func (s *Service) List(ctx context.Context, userID uint) ([]models.Notification, error) {
	var out []models.Notification
	err := s.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID uint) error {
	res := s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, notificationID)
	}
	return nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uint) error {
	return s.DB.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
