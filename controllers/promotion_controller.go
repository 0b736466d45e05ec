package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/multifood/comanda-api/config"
	"github.com/multifood/comanda-api/models"
	"github.com/multifood/comanda-api/services"
	"github.com/shopspring/decimal"
)

// PromotionRequest represents the request body for creating or updating a promotion
type PromotionRequest struct {
	Title         string          `json:"title" binding:"required"`
	Description   string          `json:"description"`
	Badge         string          `json:"badge"`
	Color         string          `json:"color"`
	TargetType    string          `json:"target_type" binding:"required"`
	TargetID      string          `json:"target_id" binding:"required"`
	ScheduleType  string          `json:"schedule_type" binding:"required"`
	ScheduleValue string          `json:"schedule_value"`
	PromoType     string          `json:"promo_type" binding:"required"`
	DiscountValue decimal.Decimal `json:"discount_value"`
	IsActive      *bool           `json:"is_active"`
}

func (r *PromotionRequest) toModel(companyID uint) models.Promotion {
	isActive := true
	if r.IsActive != nil {
		isActive = *r.IsActive
	}
	return models.Promotion{
		CompanyID:     companyID,
		Title:         r.Title,
		Description:   r.Description,
		Badge:         r.Badge,
		Color:         r.Color,
		TargetType:    r.TargetType,
		TargetID:      r.TargetID,
		ScheduleType:  r.ScheduleType,
		ScheduleValue: r.ScheduleValue,
		PromoType:     r.PromoType,
		DiscountValue: r.DiscountValue,
		IsActive:      isActive,
	}
}

// CreatePromotion handles POST /api/v1/promotions (admin only)
func CreatePromotion(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}

	var req PromotionRequest
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

	promo := req.toModel(companyID)
	if err := services.ValidatePromotion(&promo); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PROMOTION",
				"message": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	if err := db.Create(&promo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create promotion",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    promo,
	})
}

// ListPromotions handles GET /api/v1/promotions - lists the company's
// promotions, optionally only active ones with ?active=true
func ListPromotions(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Where("company_id = ?", companyID).Order("id")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var promotions []models.Promotion
	if err := query.Find(&promotions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch promotions",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    promotions,
	})
}

// GetPromotion handles GET /api/v1/promotions/:id
func GetPromotion(c *gin.Context) {
	promo, ok := loadPromotion(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    promo,
	})
}

// UpdatePromotion handles PUT /api/v1/promotions/:id (admin only)
func UpdatePromotion(c *gin.Context) {
	existing, ok := loadPromotion(c)
	if !ok {
		return
	}

	var req PromotionRequest
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

	replacement := req.toModel(existing.CompanyID)
	replacement.ID = existing.ID
	replacement.CreatedAt = existing.CreatedAt

	if err := services.ValidatePromotion(&replacement); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PROMOTION",
				"message": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	if err := db.Save(&replacement).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update promotion",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    replacement,
	})
}

// DeletePromotion handles DELETE /api/v1/promotions/:id (admin only)
func DeletePromotion(c *gin.Context) {
	promo, ok := loadPromotion(c)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Delete(promo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete promotion",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

func loadPromotion(c *gin.Context) (*models.Promotion, bool) {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil, false
	}

	db := config.GetDB()
	var promo models.Promotion
	if err := db.Where("company_id = ?", companyID).
		First(&promo, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROMOTION_NOT_FOUND",
				"message": "Promotion not found",
			},
		})
		return nil, false
	}
	return &promo, true
}
