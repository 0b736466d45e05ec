package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/multifood/comanda-api/config"
	"github.com/multifood/comanda-api/middleware"
	"github.com/multifood/comanda-api/models"
	"github.com/multifood/comanda-api/services"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var tabService *services.TabService

// InitTabController wires the controller to the shared tab service. The
// service must be a singleton so per-tab serialization holds across requests.
func InitTabController(svc *services.TabService) {
	tabService = svc
}

// OpenTabRequest represents the request body for opening a tab
type OpenTabRequest struct {
	Channel      string               `json:"channel" binding:"required"`
	CustomerName string               `json:"customer_name" binding:"required"`
	WaiterName   *string              `json:"waiter_name"`
	TentNumber   *string              `json:"tent_number"`
	Delivery     *models.DeliveryInfo `json:"delivery"`
	PeopleCount  int                  `json:"people_count"`
	Observation  string               `json:"observation"`
}

// TabLineRequest is one requested order line
type TabLineRequest struct {
	ProductID  *uint           `json:"product_id"`
	ComboID    *uint           `json:"combo_id"`
	Quantity   int             `json:"quantity" binding:"required,gt=0"`
	Note       string          `json:"note"`
	Selections map[uint][]uint `json:"selections"`
}

// AddItemsRequest represents the request body for adding order lines
type AddItemsRequest struct {
	Items []TabLineRequest `json:"items" binding:"required,min=1"`
}

// AddPaymentRequest represents the request body for recording a payment
type AddPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"required"`
}

// UpdateItemStatusRequest represents the request body for a kitchen status step
type UpdateItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OpenTab handles POST /api/v1/tabs - opens a new tab
func OpenTab(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}

	var req OpenTabRequest
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

	tab, err := tabService.OpenTab(companyID, services.OpenTabInput{
		Channel:      req.Channel,
		CustomerName: req.CustomerName,
		WaiterName:   req.WaiterName,
		TentNumber:   req.TentNumber,
		Delivery:     req.Delivery,
		PeopleCount:  req.PeopleCount,
		Observation:  req.Observation,
	})
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    tab,
	})
}

// ListTabs handles GET /api/v1/tabs - lists the company's tabs, optionally
// filtered by ?status= and ?channel=
func ListTabs(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}

	db := config.GetDB()
	query := db.Where("company_id = ?", companyID).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Preload("Items.Modifiers").
		Preload("PaymentLogs", func(db *gorm.DB) *gorm.DB {
			return db.Order("id")
		}).
		Order("created_at DESC")

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if channel := c.Query("channel"); channel != "" {
		query = query.Where("channel = ?", channel)
	}

	var tabs []models.Tab
	if err := query.Find(&tabs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to fetch tabs",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tabs,
	})
}

// GetTab handles GET /api/v1/tabs/:id
func GetTab(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}
	tabID, ok := parseTabID(c)
	if !ok {
		return
	}

	tab, err := tabService.GetTab(companyID, tabID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tab,
	})
}

// AddTabItems handles POST /api/v1/tabs/:id/items - validates, prices and
// appends order lines to an open tab
func AddTabItems(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}
	tabID, ok := parseTabID(c)
	if !ok {
		return
	}

	var req AddItemsRequest
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

	lines := make([]services.LineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, services.LineInput{
			ProductID:  item.ProductID,
			ComboID:    item.ComboID,
			Quantity:   item.Quantity,
			Note:       item.Note,
			Selections: item.Selections,
		})
	}

	at, ok := parseAtParam(c)
	if !ok {
		return
	}

	tab, err := tabService.AddItems(companyID, tabID, lines, at)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tab,
	})
}

// AddTabPayment handles POST /api/v1/tabs/:id/payments - records a payment
// on the tab's append-only ledger (cashier or admin)
func AddTabPayment(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}
	tabID, ok := parseTabID(c)
	if !ok {
		return
	}

	var req AddPaymentRequest
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

	tab, err := tabService.AddPayment(companyID, tabID, req.Amount, req.Method)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    tab,
	})
}

// UpdateTabItemStatus handles PATCH /api/v1/tabs/:id/items/:itemId/status -
// advances one item a single step along the kitchen sequence
func UpdateTabItemStatus(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}
	tabID, ok := parseTabID(c)
	if !ok {
		return
	}

	itemID, err := strconv.ParseUint(c.Param("itemId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Item ID must be a positive integer",
			},
		})
		return
	}

	var req UpdateItemStatusRequest
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

	tab, err := tabService.UpdateItemStatus(companyID, tabID, uint(itemID), req.Status)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tab,
	})
}

// CancelTab handles POST /api/v1/tabs/:id/cancel - cancels an open unpaid tab
func CancelTab(c *gin.Context) {
	companyID, ok := requireCompany(c)
	if !ok {
		return
	}
	tabID, ok := parseTabID(c)
	if !ok {
		return
	}

	tab, err := tabService.CancelTab(companyID, tabID)
	if err != nil {
		respondEngineError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tab,
	})
}

// requireCompany resolves the tenant stored by middleware.RequireCompany,
// writing the error response itself when it is missing.
func requireCompany(c *gin.Context) (uint, bool) {
	companyID, err := middleware.GetCompanyID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_COMPANY",
				"message": "Could not resolve company",
			},
		})
		return 0, false
	}
	return companyID, true
}

func parseTabID(c *gin.Context) (uint, bool) {
	tabID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Tab ID must be a positive integer",
			},
		})
		return 0, false
	}
	return uint(tabID), true
}
