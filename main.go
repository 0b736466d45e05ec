package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/multifood/comanda-api/config"
	"github.com/multifood/comanda-api/controllers"
	"github.com/multifood/comanda-api/middleware"
	"github.com/multifood/comanda-api/models"
	"github.com/multifood/comanda-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Comanda API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Company{},
		&models.User{},
		&models.Product{},
		&models.ModifierGroup{},
		&models.ModifierOption{},
		&models.Combo{},
		&models.ComboProduct{},
		&models.Promotion{},
		&models.Settings{},
		&models.Tab{},
		&models.OrderItem{},
		&models.SelectedModifier{},
		&models.PaymentLog{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Image storage is optional in development
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
	} else {
		log.Println("AWS_S3_BUCKET not set, image uploads disabled")
	}

	controllers.InitTabController(services.NewTabService(db))

	router := setupRouter()

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the Gin engine with all API routes. Catalog writes are
// admin-only and payments need cashier or admin; everything tenant-scoped
// goes through RequireCompany.
func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	cfg := config.GetConfig()
	if cfg == nil {
		cfg = &config.Config{}
	}

	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		// Locally stored images are public
		v1.GET("/uploads/:filename", controllers.GetUploadedImage)
	}

	authenticated := v1.Group("")
	authenticated.Use(middleware.EnsureValidToken(cfg))
	{
		// Staff profile
		authenticated.POST("/users", middleware.RequireCompany(), controllers.CreateUser)
		authenticated.GET("/users/me", controllers.GetMyProfile)
		authenticated.PUT("/users/me", controllers.UpdateMyProfile)
	}

	tenant := authenticated.Group("")
	tenant.Use(middleware.RequireCompany())
	{
		// Catalog reads
		tenant.GET("/products", controllers.ListProducts)
		tenant.GET("/products/:id", controllers.GetProduct)
		tenant.GET("/products/:id/promotion", controllers.GetProductPromotion)
		tenant.POST("/products/:id/quote", controllers.QuoteProduct)
		tenant.GET("/combos", controllers.ListCombos)
		tenant.GET("/combos/:id", controllers.GetCombo)
		tenant.GET("/promotions", controllers.ListPromotions)
		tenant.GET("/promotions/:id", controllers.GetPromotion)
		tenant.GET("/settings", controllers.GetSettings)

		// Order surface
		tenant.POST("/tabs", controllers.OpenTab)
		tenant.GET("/tabs", controllers.ListTabs)
		tenant.GET("/tabs/:id", controllers.GetTab)
		tenant.POST("/tabs/:id/items", controllers.AddTabItems)
		tenant.PATCH("/tabs/:id/items/:itemId/status", controllers.UpdateTabItemStatus)
		tenant.POST("/tabs/:id/cancel", controllers.CancelTab)
	}

	cashier := tenant.Group("")
	cashier.Use(middleware.RequireRole(models.RoleCashier, models.RoleAdmin))
	{
		cashier.POST("/tabs/:id/payments", controllers.AddTabPayment)
	}

	admin := tenant.Group("")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/products", controllers.CreateProduct)
		admin.PUT("/products/:id", controllers.UpdateProduct)
		admin.DELETE("/products/:id", controllers.DeleteProduct)
		admin.POST("/combos", controllers.CreateCombo)
		admin.PUT("/combos/:id", controllers.UpdateCombo)
		admin.DELETE("/combos/:id", controllers.DeleteCombo)
		admin.POST("/promotions", controllers.CreatePromotion)
		admin.PUT("/promotions/:id", controllers.UpdatePromotion)
		admin.DELETE("/promotions/:id", controllers.DeletePromotion)
		admin.PUT("/settings", controllers.UpdateSettings)
		admin.POST("/uploads", controllers.UploadProductImage)
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Comanda API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
