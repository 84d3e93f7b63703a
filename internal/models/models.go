package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleVendor   = "vendor"
	RoleAdmin    = "admin"
)

// StringList is stored as a JSON text column so it works the same on
// postgres and the sqlite test driver.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
}

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"not null"                 json:"name"`
	Email        string    `gorm:"unique;not null"          json:"email"`
	PasswordHash string    `gorm:"not null"                 json:"-"`
	Role         string    `gorm:"not null;default:customer" json:"role"`
	BusinessName string    `json:"businessName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Product struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	VendorID    uint       `gorm:"index;not null"           json:"vendorId"`
	Title       string     `gorm:"not null"                 json:"title"`
	Slug        string     `gorm:"unique;not null"          json:"slug"`
	Description string     `gorm:"not null"                 json:"description"`
	Categories  StringList `gorm:"type:text"                json:"categories"`
	Price       float64    `gorm:"not null"                 json:"price"`
	SalePrice   *float64   `json:"salePrice,omitempty"`
	Stock       uint       `gorm:"not null;default:0"       json:"stock"`
	Images      StringList `gorm:"type:text"                json:"images"`
	Fabric      string     `json:"fabric"`
	Color       string     `json:"color"`
	Occasion    string     `json:"occasion"`
	Rating      float64    `gorm:"default:0"                json:"rating"`
	ReviewCount uint       `gorm:"default:0"                json:"reviewCount"`
	IsActive    bool       `gorm:"default:true"             json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// EffectivePrice is the sale price when one is set, otherwise the list
// price. Totals and range filters always use this value.
func (p *Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

type Category struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"unique;not null"          json:"name"`
	Slug        string    `gorm:"unique;not null"          json:"slug"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	IsActive    bool      `gorm:"default:true"             json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPacked    = "packed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"

	// Legacy value still present in old rows; treated as confirmed.
	OrderStatusApproved = "approved"

	PaymentMethodCOD = "COD"

	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
	PaymentStatusFailed  = "failed"
)

// ShippingAddress is embedded into the order row as a frozen snapshot.
type ShippingAddress struct {
	Name    string `gorm:"column:ship_name"    json:"name"`
	Phone   string `gorm:"column:ship_phone"   json:"phone"`
	Address string `gorm:"column:ship_address" json:"address"`
	City    string `gorm:"column:ship_city"    json:"city"`
	State   string `gorm:"column:ship_state"   json:"state"`
	Pincode string `gorm:"column:ship_pincode" json:"pincode"`
}

type Order struct {
	ID              uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderNumber     string          `gorm:"unique;not null"          json:"orderNumber"`
	UserID          uint            `gorm:"index;not null"           json:"userId"`
	Items           []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items"`
	ShippingAddress ShippingAddress `gorm:"embedded"                 json:"shippingAddress"`
	TotalAmount     float64         `gorm:"not null"                 json:"totalAmount"`
	Status          string          `gorm:"index;not null;default:pending" json:"status"`
	PaymentMethod   string          `gorm:"not null;default:COD"     json:"paymentMethod"`
	PaymentStatus   string          `gorm:"not null;default:pending" json:"paymentStatus"`
	TrackingNumber  string          `json:"trackingNumber,omitempty"`
	Notes           string          `json:"notes,omitempty"`
	CancelReason    string          `json:"cancelReason,omitempty"`
	DeliveredAt     *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// OrderItem freezes the product's display fields and price at order time.
// It is never recomputed from the live product.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"index;not null"           json:"orderId"`
	ProductID uint    `gorm:"index;not null"           json:"productId"`
	VendorID  uint    `gorm:"index;not null"           json:"vendorId"`
	Title     string  `gorm:"not null"                 json:"title"`
	Image     string  `json:"image"`
	Price     float64 `gorm:"not null"                 json:"price"`
	Quantity  uint    `gorm:"not null"                 json:"quantity"`
	Subtotal  float64 `gorm:"not null"                 json:"subtotal"`
}

type Notification struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint      `gorm:"index;not null"           json:"userId"`
	Type        string    `gorm:"not null"                 json:"type"`
	Title       string    `gorm:"not null"                 json:"title"`
	Message     string    `gorm:"not null"                 json:"message"`
	OrderID     uint      `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Read        bool      `gorm:"default:false"            json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}
