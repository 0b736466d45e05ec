package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/multifood/comanda-api/config"
	"github.com/multifood/comanda-api/models"
	"github.com/multifood/comanda-api/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ComboRequest represents the request body for creating or updating a combo
type ComboRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	ImageS3Key  *string         `json:"image_s3_key"`
	ProductIDs  []uint          `json:"product_ids" binding:"required,min=2"`
}

// CreateCombo handles POST /api/v1/combos - creates a flat-priced bundle
// of existing products (admin only)
func CreateCombo(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}

	var req ComboRequest
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

	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PRICE",
				"message": "Combo price must be greater than zero",
			},
		})
		return
	}

	db := config.GetDB()

	// Every constituent must belong to this company's catalog
	var count int64
	if err := db.Model(&models.Product{}).
		Where("company_id = ? AND id IN ?", companyID, req.ProductIDs).
		Count(&count).Error; err != nil || count != int64(len(req.ProductIDs)) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_PRODUCT",
				"message": "All combo products must exist in the company's catalog",
			},
		})
		return
	}

	combo := models.Combo{
		CompanyID:   companyID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageS3Key:  req.ImageS3Key,
	}
	for _, productID := range req.ProductIDs {
		combo.Products = append(combo.Products, models.ComboProduct{ProductID: productID})
	}

	if err := db.Create(&combo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create combo",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    combo,
	})
}

// ListCombos handles GET /api/v1/combos
func ListCombos(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var combos []models.Combo
	if err := db.Where("company_id = ?", companyID).
		Preload("Products").
		Order("name").
		Find(&combos).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch combos",
			},
		})
		return
	}

	attachComboImageURLs(combos)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    combos,
	})
}

// GetCombo handles GET /api/v1/combos/:id
func GetCombo(c *gin.Context) {
	combo, ok := loadCombo(c)
	if !ok {
		return
	}

	attachComboImageURLs([]models.Combo{*combo})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    combo,
	})
}

// UpdateCombo handles PUT /api/v1/combos/:id (admin only)
func UpdateCombo(c *gin.Context) {
	existing, ok := loadCombo(c)
	if !ok {
		return
	}

	var req ComboRequest
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

	if !req.Price.IsPositive() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PRICE",
				"message": "Combo price must be greater than zero",
			},
		})
		return
	}

	db := config.GetDB()

	var count int64
	if err := db.Model(&models.Product{}).
		Where("company_id = ? AND id IN ?", existing.CompanyID, req.ProductIDs).
		Count(&count).Error; err != nil || count != int64(len(req.ProductIDs)) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNKNOWN_PRODUCT",
				"message": "All combo products must exist in the company's catalog",
			},
		})
		return
	}

	replacement := models.Combo{
		ID:          existing.ID,
		CompanyID:   existing.CompanyID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		ImageS3Key:  req.ImageS3Key,
		CreatedAt:   existing.CreatedAt,
	}
	for _, productID := range req.ProductIDs {
		replacement.Products = append(replacement.Products, models.ComboProduct{ProductID: productID})
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("combo_id = ?", existing.ID).Delete(&models.ComboProduct{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&replacement).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update combo",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    replacement,
	})
}

// DeleteCombo handles DELETE /api/v1/combos/:id (admin only)
func DeleteCombo(c *gin.Context) {
	combo, ok := loadCombo(c)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Delete(combo).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete combo",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

func loadCombo(c *gin.Context) (*models.Combo, bool) {
	companyID, ok := requireCompany(c)
	if !ok {
		return nil, false
	}

	db := config.GetDB()
	var combo models.Combo
	if err := db.Where("company_id = ?", companyID).
		Preload("Products").
		First(&combo, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "COMBO_NOT_FOUND",
				"message": "Combo not found",
			},
		})
		return nil, false
	}
	return &combo, true
}

func attachComboImageURLs(combos []models.Combo) {
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}
	for i := range combos {
		if combos[i].ImageS3Key == nil {
			continue
		}
		url, err := imageService.GetImageURL(*combos[i].ImageS3Key)
		if err != nil || url == "" {
			continue
		}
		combos[i].ImageURL = &url
	}
}
