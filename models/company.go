package models

import (
	"time"

	"gorm.io/gorm"
)

// Company represents a tenant (restaurant/establishment) in the system.
// Every catalog entity and tab belongs to exactly one company.
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Slug      string         `gorm:"uniqueIndex;not null" json:"slug"`
	LogoS3Key *string        `json:"logo_s3_key,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Company model
func (Company) TableName() string {
	return "companies"
}
