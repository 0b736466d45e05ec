package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order channels. The channel decides which identifier variant a tab carries
// and which fees apply to its totals.
const (
	ChannelDineIn   = "dine_in"
	ChannelBeach    = "beach"
	ChannelDelivery = "delivery"
	ChannelTakeaway = "takeaway"
)

// Tab billing statuses. "cancelled" is reachable only through an explicit
// cancellation of an unpaid open tab.
const (
	TabOpen      = "open"
	TabClosed    = "closed"
	TabCancelled = "cancelled"
)

// Kitchen workflow statuses for an order item, in their fixed linear order.
const (
	ItemStatusNew       = "new"
	ItemStatusPreparing = "preparing"
	ItemStatusReady     = "ready"
	ItemStatusInTransit = "in_transit"
	ItemStatusCompleted = "completed"
)

// ItemStatusSequence is the only legal progression for item statuses.
var ItemStatusSequence = []string{
	ItemStatusNew,
	ItemStatusPreparing,
	ItemStatusReady,
	ItemStatusInTransit,
	ItemStatusCompleted,
}

// Payment method tags.
const (
	PaymentCash = "cash"
	PaymentPix  = "pix"
	PaymentCard = "card"
)

// DeliveryInfo holds the structured identifier for delivery tabs.
type DeliveryInfo struct {
	Address    string `json:"address"`
	Phone      string `json:"phone"`
	Complement string `json:"complement,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// Tab is a customer order aggregate (a "comanda"): the open check that
// accumulates line items and payments until it settles. Subtotal, fees and
// total are derived and rewritten as a whole on every item mutation so a
// reader never observes an inconsistent subtotal/total pair.
type Tab struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	CompanyID    uint            `gorm:"not null;index" json:"company_id"`
	Channel      string          `gorm:"not null" json:"channel"`
	CustomerName string          `gorm:"not null" json:"customer_name"`
	WaiterName   *string         `json:"waiter_name,omitempty"`
	TentNumber   *string         `json:"tent_number,omitempty"` // table/tent token for dine-in and beach tabs
	Delivery     *DeliveryInfo   `gorm:"embedded;embeddedPrefix:delivery_" json:"delivery,omitempty"`
	PeopleCount  int             `gorm:"not null;default:1" json:"people_count"`
	Observation  string          `json:"observation,omitempty"`
	Items        []OrderItem     `gorm:"foreignKey:TabID;constraint:OnDelete:CASCADE" json:"items"`
	Status       string          `gorm:"not null;default:'open';index" json:"status"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"subtotal"`
	ServiceFee   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"service_fee"`
	DeliveryFee  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"delivery_fee"`
	Total        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total"`
	AmountPaid   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"amount_paid"`
	PaymentLogs  []PaymentLog    `gorm:"foreignKey:TabID;constraint:OnDelete:CASCADE" json:"payment_logs"`
	CreatedAt    time.Time       `json:"created_at"`
	ClosedAt     *time.Time      `json:"closed_at,omitempty"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Tab model
func (Tab) TableName() string {
	return "tabs"
}

// IsOpen reports whether the tab still accepts items and payments.
func (t *Tab) IsOpen() bool {
	return t.Status == TabOpen
}

// OrderItem is one priced, quantified line within a tab. PriceAtOrder is the
// unit price computed once at ordering time and never recomputed.
type OrderItem struct {
	ID           uint               `gorm:"primaryKey" json:"id"`
	TabID        uint               `gorm:"not null;index" json:"tab_id"`
	ProductID    *uint              `gorm:"index" json:"product_id,omitempty"`
	ComboID      *uint              `gorm:"index" json:"combo_id,omitempty"`
	Name         string             `gorm:"not null" json:"name"` // product/combo name at order time
	Quantity     int                `gorm:"not null;check:quantity > 0" json:"quantity"`
	Note         string             `json:"note,omitempty"`
	Status       string             `gorm:"not null;default:'new'" json:"status"`
	IsCombo      bool               `gorm:"not null;default:false" json:"is_combo"`
	PriceAtOrder decimal.Decimal    `gorm:"type:decimal(10,2);not null" json:"price_at_order"`
	Modifiers    []SelectedModifier `gorm:"foreignKey:OrderItemID;constraint:OnDelete:CASCADE" json:"modifiers"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}

// SelectedModifier is a snapshot of a chosen option: group and option names
// and the extra price are copied at selection time so later catalog edits
// never change historical order lines.
type SelectedModifier struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderItemID uint            `gorm:"not null;index" json:"order_item_id"`
	GroupID     uint            `gorm:"not null" json:"group_id"`
	GroupName   string          `gorm:"not null" json:"group_name"`
	OptionID    uint            `gorm:"not null" json:"option_id"`
	OptionName  string          `gorm:"not null" json:"option_name"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"price"`
}

// TableName specifies the table name for the SelectedModifier model
func (SelectedModifier) TableName() string {
	return "selected_modifiers"
}

// PaymentLog is one entry in a tab's append-only payment ledger. Entries are
// never mutated or removed.
type PaymentLog struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	TabID     uint            `gorm:"not null;index" json:"tab_id"`
	Reference string          `gorm:"uniqueIndex;not null" json:"reference"` // uuid, for receipts and reconciliation
	Amount    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"amount"`
	Method    string          `gorm:"not null" json:"method"`
	CreatedAt time.Time       `json:"created_at"`
}

// TableName specifies the table name for the PaymentLog model
func (PaymentLog) TableName() string {
	return "payment_logs"
}
