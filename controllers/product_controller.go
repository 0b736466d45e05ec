package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/multifood/comanda-api/config"
	"github.com/multifood/comanda-api/middleware"
	"github.com/multifood/comanda-api/models"
	"github.com/multifood/comanda-api/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ModifierOptionRequest is one option inside a modifier group payload
type ModifierOptionRequest struct {
	Name       string          `json:"name" binding:"required"`
	ExtraPrice decimal.Decimal `json:"extra_price"`
	Position   int             `json:"position"`
}

// ModifierGroupRequest is one modifier group inside a product payload
type ModifierGroupRequest struct {
	Name     string                  `json:"name" binding:"required"`
	Min      int                     `json:"min"`
	Max      int                     `json:"max"`
	Position int                     `json:"position"`
	Options  []ModifierOptionRequest `json:"options"`
}

// ProductRequest represents the request body for creating or updating a product
type ProductRequest struct {
	Name           string                 `json:"name" binding:"required"`
	Description    string                 `json:"description"`
	Price          decimal.Decimal        `json:"price" binding:"required"`
	Category       string                 `json:"category" binding:"required"`
	ImageS3Key     *string                `json:"image_s3_key"`
	ModifierGroups []ModifierGroupRequest `json:"modifier_groups"`
}

func (r *ProductRequest) toModel(companyID uint) models.Product {
	product := models.Product{
		CompanyID:   companyID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		ImageS3Key:  r.ImageS3Key,
	}
	for _, g := range r.ModifierGroups {
		group := models.ModifierGroup{
			Name:     g.Name,
			Min:      g.Min,
			Max:      g.Max,
			Position: g.Position,
		}
		for _, o := range g.Options {
			group.Options = append(group.Options, models.ModifierOption{
				Name:       o.Name,
				ExtraPrice: o.ExtraPrice,
				Position:   o.Position,
			})
		}
		product.ModifierGroups = append(product.ModifierGroups, group)
	}
	return product
}

// CreateProduct handles POST /api/v1/products - creates a catalog product (admin only)
func CreateProduct(c *gin.Context) {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_COMPANY",
				"message": "Could not resolve company",
			},
		})
		return
	}

	var req ProductRequest
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

	if !models.IsValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CATEGORY",
				"message": "Unknown product category",
			},
		})
		return
	}

	product := req.toModel(companyID)

	// Configuration invariants block catalog save
	if err := services.ValidateProduct(&product); err != nil {
		var cfgErr *services.ConfigError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"error": gin.H{
					"code":    cfgErr.Code,
					"message": cfgErr.Message,
					"group":   cfgErr.GroupName,
				},
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	if err := db.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create product",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    product,
	})
}

// ListProducts handles GET /api/v1/products - lists the company's catalog,
// optionally filtered by ?category=
func ListProducts(c *gin.Context) {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_COMPANY",
				"message": "Could not resolve company",
			},
		})
		return
	}

	db := config.GetDB()
	query := db.Where("company_id = ?", companyID).
		Preload("ModifierGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, id")
		}).
		Preload("ModifierGroups.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, id")
		}).
		Order("category, name")

	if category := c.Query("category"); category != "" {
		if !models.IsValidCategory(category) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_CATEGORY",
					"message": "Unknown product category",
				},
			})
			return
		}
		query = query.Where("category = ?", category)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch products",
			},
		})
		return
	}

	attachProductImageURLs(products)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    products,
	})
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	product, ok := loadProduct(c)
	if !ok {
		return
	}

	attachProductImageURLs([]models.Product{*product})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    product,
	})
}

// UpdateProduct handles PUT /api/v1/products/:id - replaces the product and
// its modifier groups as a whole (admin only)
func UpdateProduct(c *gin.Context) {
	existing, ok := loadProduct(c)
	if !ok {
		return
	}

	var req ProductRequest
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

	if !models.IsValidCategory(req.Category) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_CATEGORY",
				"message": "Unknown product category",
			},
		})
		return
	}

	replacement := req.toModel(existing.CompanyID)
	replacement.ID = existing.ID

	if err := services.ValidateProduct(&replacement); err != nil {
		var cfgErr *services.ConfigError
		if errors.As(err, &cfgErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"error": gin.H{
					"code":    cfgErr.Code,
					"message": cfgErr.Message,
					"group":   cfgErr.GroupName,
				},
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	err := db.Transaction(func(tx *gorm.DB) error {
		// Groups are replaced wholesale; order lines keep their own snapshots
		if err := tx.Where("product_id = ?", existing.ID).Delete(&models.ModifierGroup{}).Error; err != nil {
			return err
		}
		return tx.Session(&gorm.Session{FullSaveAssociations: true}).Save(&replacement).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    replacement,
	})
}

// DeleteProduct handles DELETE /api/v1/products/:id (admin only)
func DeleteProduct(c *gin.Context) {
	product, ok := loadProduct(c)
	if !ok {
		return
	}

	db := config.GetDB()
	if err := db.Delete(product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete product",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}

// GetProductPromotion handles GET /api/v1/products/:id/promotion - returns the
// promotion applying to the product right now (or at ?at=RFC3339), if any
func GetProductPromotion(c *gin.Context) {
	product, ok := loadProduct(c)
	if !ok {
		return
	}

	at, ok := parseAtParam(c)
	if !ok {
		return
	}

	db := config.GetDB()
	var promotions []models.Promotion
	if err := db.Where("company_id = ? AND is_active = ?", product.CompanyID, true).
		Order("id").Find(&promotions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch promotions",
			},
		})
		return
	}

	promo := services.ActivePromotionFor(promotions, product, at)
	if promo == nil {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    nil,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"promotion":        promo,
			"original_price":   product.Price,
			"discounted_price": services.DiscountedPrice(product.Price, promo),
		},
	})
}

// QuoteRequest carries the modifier selections to price, keyed by group id
type QuoteRequest struct {
	Selections map[uint][]uint `json:"selections"`
}

// QuoteProduct handles POST /api/v1/products/:id/quote - prices a
// customization without creating an order line
func QuoteProduct(c *gin.Context) {
	product, ok := loadProduct(c)
	if !ok {
		return
	}

	at, ok := parseAtParam(c)
	if !ok {
		return
	}

	var req QuoteRequest
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

	db := config.GetDB()
	var promotions []models.Promotion
	if err := db.Where("company_id = ? AND is_active = ?", product.CompanyID, true).
		Order("id").Find(&promotions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch promotions",
			},
		})
		return
	}

	price, snapshots, err := services.QuoteLine(product, promotions, req.Selections, at)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"price":     price,
			"modifiers": snapshots,
		},
	})
}

// loadProduct fetches the :id product scoped to the request's company,
// writing the error response itself when it fails.
func loadProduct(c *gin.Context) (*models.Product, bool) {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_COMPANY",
				"message": "Could not resolve company",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var product models.Product
	err = db.Where("company_id = ?", companyID).
		Preload("ModifierGroups", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, id")
		}).
		Preload("ModifierGroups.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("position, id")
		}).
		First(&product, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PRODUCT_NOT_FOUND",
				"message": "Product not found",
			},
		})
		return nil, false
	}
	return &product, true
}

// parseAtParam reads the optional ?at=RFC3339 evaluation instant, defaulting
// to the current time.
func parseAtParam(c *gin.Context) (time.Time, bool) {
	raw := c.Query("at")
	if raw == "" {
		return time.Now(), true
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_AT",
				"message": "at must be an RFC3339 timestamp",
			},
		})
		return time.Time{}, false
	}
	return at, true
}

// attachProductImageURLs fills the computed ImageURL field from the image
// service for products carrying an S3 key.
func attachProductImageURLs(products []models.Product) {
	imageService := services.GetImageService()
	if imageService == nil {
		return
	}
	for i := range products {
		if products[i].ImageS3Key == nil {
			continue
		}
		url, err := imageService.GetImageURL(*products[i].ImageS3Key)
		if err != nil || url == "" {
			continue
		}
		products[i].ImageURL = &url
	}
}
