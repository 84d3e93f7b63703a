package order

import (
	"fmt"

	"github.com/sareenotsorry/shop/internal/models"
)

var validStatuses = map[string]struct{}{
	models.OrderStatusPending:   {},
	models.OrderStatusConfirmed: {},
	models.OrderStatusPacked:    {},
	models.OrderStatusShipped:   {},
	models.OrderStatusDelivered: {},
	models.OrderStatusCancelled: {},
}

// normalizeStatus maps the legacy "approved" value still found in old rows
// onto the current vocabulary. Both mean the order has committed inventory.
func normalizeStatus(s string) string {
	if s == models.OrderStatusApproved {
		return models.OrderStatusConfirmed
	}
	return s
}

// statusesHoldingStock are the states in which an order owns reserved
// inventory that must be released before the order row disappears.
var statusesHoldingStock = map[string]struct{}{
	models.OrderStatusConfirmed: {},
	models.OrderStatusShipped:   {},
}

// fieldSet names the order fields a role may touch in one update request.
type fieldSet struct {
	Status         bool
	TrackingNumber bool
	Notes          bool
	CancelReason   bool
}

var roleFields = map[string]fieldSet{
	models.RoleCustomer: {Status: true, CancelReason: true},
	models.RoleVendor:   {Status: true, TrackingNumber: true, Notes: true},
	models.RoleAdmin:    {Status: true, TrackingNumber: true, Notes: true, CancelReason: true},
}

// checkTransition enforces the per-role transition rules in one place
// instead of re-deriving them per handler. The order must already be
// scoped to the actor (ownership / item membership) by the caller.
func checkTransition(actor Actor, current, requested string) error {
	switch actor.Role {
	case models.RoleAdmin, models.RoleVendor:
		return nil
	case models.RoleCustomer:
		if requested != models.OrderStatusCancelled {
			return fmt.Errorf("%w: customers can only cancel orders", ErrForbidden)
		}
		if current != models.OrderStatusPending {
			return fmt.Errorf("%w: can only cancel pending orders", ErrValidation)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown role %q", ErrForbidden, actor.Role)
	}
}
