package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Settings holds the per-company fee and availability configuration. Exactly
// one row exists per company; it is read on every pricing calculation.
type Settings struct {
	ID                    uint            `gorm:"primaryKey" json:"id"`
	CompanyID             uint            `gorm:"uniqueIndex;not null" json:"company_id"`
	IsOpen                bool            `gorm:"not null;default:true" json:"is_open"`
	OpeningTime           string          `gorm:"not null;default:'08:00'" json:"opening_time"`
	ClosingTime           string          `gorm:"not null;default:'23:00'" json:"closing_time"`
	ServiceFeePercent     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:10" json:"service_fee_percent"`
	ServiceFeeEnabled     bool            `gorm:"not null;default:true" json:"service_fee_enabled"`
	DeliveryFee           decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"delivery_fee"`
	EnabledChannels       []string        `gorm:"serializer:json" json:"enabled_channels"`
	EnabledPaymentMethods []string        `gorm:"serializer:json" json:"enabled_payment_methods"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Settings model
func (Settings) TableName() string {
	return "settings"
}

// ChannelEnabled reports whether the company accepts tabs on the channel.
func (s *Settings) ChannelEnabled(channel string) bool {
	for _, c := range s.EnabledChannels {
		if c == channel {
			return true
		}
	}
	return false
}

// PaymentMethodEnabled reports whether the company accepts the payment method.
func (s *Settings) PaymentMethodEnabled(method string) bool {
	for _, m := range s.EnabledPaymentMethods {
		if m == method {
			return true
		}
	}
	return false
}

// DefaultSettings returns the settings a newly created company starts with.
func DefaultSettings(companyID uint) Settings {
	return Settings{
		CompanyID:             companyID,
		IsOpen:                true,
		OpeningTime:           "08:00",
		ClosingTime:           "23:00",
		ServiceFeePercent:     decimal.NewFromInt(10),
		ServiceFeeEnabled:     true,
		DeliveryFee:           decimal.NewFromInt(7),
		EnabledChannels:       []string{ChannelDineIn, ChannelBeach, ChannelDelivery, ChannelTakeaway},
		EnabledPaymentMethods: []string{PaymentCash, PaymentPix, PaymentCard},
	}
}
