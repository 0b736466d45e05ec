package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/multifood/comanda-api/config"
	"github.com/multifood/comanda-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UpdateSettingsRequest represents the request body for updating company settings
type UpdateSettingsRequest struct {
	IsOpen                *bool            `json:"is_open"`
	OpeningTime           *string          `json:"opening_time"`
	ClosingTime           *string          `json:"closing_time"`
	ServiceFeePercent     *decimal.Decimal `json:"service_fee_percent"`
	ServiceFeeEnabled     *bool            `json:"service_fee_enabled"`
	DeliveryFee           *decimal.Decimal `json:"delivery_fee"`
	EnabledChannels       []string         `json:"enabled_channels"`
	EnabledPaymentMethods []string         `json:"enabled_payment_methods"`
}

// GetSettings handles GET /api/v1/settings - returns the company's settings,
// creating the default row on first read
func GetSettings(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var settings models.Settings
	err := db.Where("company_id = ?", companyID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultSettings(companyID)
		err = db.Create(&settings).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch settings",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

// UpdateSettings handles PUT /api/v1/settings - partial update of fee and
// availability configuration (admin only)
func UpdateSettings(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	for _, channel := range req.EnabledChannels {
		switch channel {
		case models.ChannelDineIn, models.ChannelBeach, models.ChannelDelivery, models.ChannelTakeaway:
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_CHANNEL",
					"message": "Unknown order channel: " + channel,
				},
			})
			return
		}
	}
	for _, method := range req.EnabledPaymentMethods {
		switch method {
		case models.PaymentCash, models.PaymentPix, models.PaymentCard:
		default:
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_PAYMENT_METHOD",
					"message": "Unknown payment method: " + method,
				},
			})
			return
		}
	}
	if req.ServiceFeePercent != nil && req.ServiceFeePercent.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FEE",
				"message": "Service fee percent must not be negative",
			},
		})
		return
	}
	if req.DeliveryFee != nil && req.DeliveryFee.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FEE",
				"message": "Delivery fee must not be negative",
			},
		})
		return
	}

	db := config.GetDB()
	var settings models.Settings
	err := db.Where("company_id = ?", companyID).First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		settings = models.DefaultSettings(companyID)
		err = db.Create(&settings).Error
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch settings",
			},
		})
		return
	}

	if req.IsOpen != nil {
		settings.IsOpen = *req.IsOpen
	}
	if req.OpeningTime != nil {
		settings.OpeningTime = *req.OpeningTime
	}
	if req.ClosingTime != nil {
		settings.ClosingTime = *req.ClosingTime
	}
	if req.ServiceFeePercent != nil {
		settings.ServiceFeePercent = *req.ServiceFeePercent
	}
	if req.ServiceFeeEnabled != nil {
		settings.ServiceFeeEnabled = *req.ServiceFeeEnabled
	}
	if req.DeliveryFee != nil {
		settings.DeliveryFee = *req.DeliveryFee
	}
	if req.EnabledChannels != nil {
		settings.EnabledChannels = req.EnabledChannels
	}
	if req.EnabledPaymentMethods != nil {
		settings.EnabledPaymentMethods = req.EnabledPaymentMethods
	}

	if err := db.Save(&settings).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update settings",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}
