package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Combo bundles two or more products under a single flat price. Constituent
// prices never influence the combo price and modifiers do not apply.
type Combo struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CompanyID   uint            `gorm:"not null;index" json:"company_id"`
	Name        string          `gorm:"not null" json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageS3Key  *string         `json:"image_s3_key,omitempty"`
	ImageURL    *string         `gorm:"-" json:"image_url,omitempty"`
	Products    []ComboProduct  `gorm:"foreignKey:ComboID;constraint:OnDelete:CASCADE" json:"products"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Combo model
func (Combo) TableName() string {
	return "combos"
}

// ComboProduct links a combo to one of its constituent products.
type ComboProduct struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	ComboID   uint `gorm:"not null;index" json:"combo_id"`
	ProductID uint `gorm:"not null;index" json:"product_id"`
}

// TableName specifies the table name for the ComboProduct model
func (ComboProduct) TableName() string {
	return "combo_products"
}
