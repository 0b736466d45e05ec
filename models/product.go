package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product categories. The set is fixed; promotions may target a category by tag.
const (
	CategoryDrinks     = "drinks"
	CategoryAppetizers = "appetizers"
	CategoryMains      = "mains"
	CategoryDesserts   = "desserts"
	CategoryCombos     = "combos"
	CategoryPizzas     = "pizzas"
	CategoryLunchboxes = "lunchboxes"
	CategoryAcai       = "acai"
)

// Categories lists every valid product category tag.
var Categories = []string{
	CategoryDrinks,
	CategoryAppetizers,
	CategoryMains,
	CategoryDesserts,
	CategoryCombos,
	CategoryPizzas,
	CategoryLunchboxes,
	CategoryAcai,
}

// IsValidCategory reports whether tag is a member of the fixed category set.
func IsValidCategory(tag string) bool {
	for _, c := range Categories {
		if c == tag {
			return true
		}
	}
	return false
}

// Product represents a sellable menu item. Prices on historical order lines
// are snapshots, so editing a product never changes past tabs.
type Product struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	CompanyID      uint            `gorm:"not null;index" json:"company_id"`
	Name           string          `gorm:"not null" json:"name"`
	Description    string          `json:"description,omitempty"`
	Price          decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Category       string          `gorm:"not null;index" json:"category"`
	ImageS3Key     *string         `json:"image_s3_key,omitempty"`
	ImageURL       *string         `gorm:"-" json:"image_url,omitempty"` // computed field, presigned URL for image
	ModifierGroups []ModifierGroup `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"modifier_groups,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// ModifierGroup is a named set of options with a required selection-count
// range. Invariant: 0 <= Min <= Max and len(Options) >= Min; groups violating
// this are configuration errors and block catalog save.
type ModifierGroup struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	ProductID uint             `gorm:"not null;index" json:"product_id"`
	Name      string           `gorm:"not null" json:"name"`
	Min       int              `gorm:"not null;default:0" json:"min"`
	Max       int              `gorm:"not null;default:1" json:"max"`
	Position  int              `gorm:"not null;default:0" json:"position"` // presentation/wizard order
	Options   []ModifierOption `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"options"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the ModifierGroup model
func (ModifierGroup) TableName() string {
	return "modifier_groups"
}

// ModifierOption is a single choosable option within a modifier group.
// ExtraPrice may be zero; negative prices are not expected by convention.
type ModifierOption struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	GroupID    uint            `gorm:"not null;index" json:"group_id"`
	Name       string          `gorm:"not null" json:"name"`
	ExtraPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"extra_price"`
	Position   int             `gorm:"not null;default:0" json:"position"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the ModifierOption model
func (ModifierOption) TableName() string {
	return "modifier_options"
}
