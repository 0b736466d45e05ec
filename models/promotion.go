package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Promotion target kinds.
const (
	PromotionTargetProduct  = "product"
	PromotionTargetCategory = "category"
)

// Promotion schedule kinds. ScheduleValue is interpreted per kind:
// daily = weekday index "0"-"6" (0=Sunday), monthly = day of month "1"-"31",
// yearly = "MM-DD". Unused for always.
const (
	ScheduleAlways  = "always"
	ScheduleDaily   = "daily"
	ScheduleMonthly = "monthly"
	ScheduleYearly  = "yearly"
)

// Promotion discount kinds. badge_only promotions decorate the menu without
// changing the price.
const (
	PromoPercentage = "percentage"
	PromoFixed      = "fixed"
	PromoBadgeOnly  = "badge_only"
)

// Promotion is a time-scheduled discount rule targeting a product or a whole
// category. Title/badge/color are presentation only.
type Promotion struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	CompanyID     uint            `gorm:"not null;index" json:"company_id"`
	Title         string          `gorm:"not null" json:"title"`
	Description   string          `json:"description,omitempty"`
	Badge         string          `json:"badge,omitempty"`
	Color         string          `json:"color,omitempty"`
	TargetType    string          `gorm:"not null" json:"target_type"` // "product" or "category"
	TargetID      string          `gorm:"not null" json:"target_id"`   // product id or category tag
	ScheduleType  string          `gorm:"not null;default:'always'" json:"schedule_type"`
	ScheduleValue string          `json:"schedule_value,omitempty"`
	PromoType     string          `gorm:"not null;default:'badge_only'" json:"promo_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_value"`
	IsActive      bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Promotion model
func (Promotion) TableName() string {
	return "promotions"
}
