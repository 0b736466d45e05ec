package acceptance

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/multifood/comanda-api/config"
	"github.com/multifood/comanda-api/controllers"
	"github.com/multifood/comanda-api/middleware"
	"github.com/multifood/comanda-api/models"
	"github.com/multifood/comanda-api/services"
	"github.com/multifood/comanda-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// FileUploadAcceptanceTestSuite covers the product photo feature end to end:
// an admin uploads a photo, attaches it to a menu item, and clients see the
// resolved image URL in the catalog.
type FileUploadAcceptanceTestSuite struct {
	suite.Suite
	server    *httptest.Server
	db        *gorm.DB
	uploadDir string
	mock      *services.MockImageService
}

// SetupSuite runs once before all tests
func (suite *FileUploadAcceptanceTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)

	// Setup database
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.NoError(err)
	suite.db = db

	err = db.AutoMigrate(
		&models.Company{},
		&models.Product{},
		&models.ModifierGroup{},
		&models.ModifierOption{},
	)
	suite.NoError(err)

	config.SetDB(db)

	// Create temporary upload directory
	suite.uploadDir = suite.T().TempDir()

	// Override the global upload directory for testing
	utils.UploadDir = suite.uploadDir

	// Create test server
	router := suite.createRouter()
	suite.server = httptest.NewServer(router)
}

// TearDownSuite runs once after all tests
func (suite *FileUploadAcceptanceTestSuite) TearDownSuite() {
	suite.server.Close()
	services.SetImageService(nil)
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
	}
}

// SetupTest runs before each test
func (suite *FileUploadAcceptanceTestSuite) SetupTest() {
	// Clean up database and swap in a fresh mock store before each test
	suite.db.Exec("DELETE FROM modifier_options")
	suite.db.Exec("DELETE FROM modifier_groups")
	suite.db.Exec("DELETE FROM products")
	suite.db.Exec("DELETE FROM companies")

	suite.mock = services.NewMockImageService()
	suite.mock.SetAsMockForTesting()

	company := models.Company{Name: "Barraca do Juca", Slug: "barraca-do-juca"}
	suite.NoError(suite.db.Create(&company).Error)
}

// createRouter creates the full application router for acceptance testing
func (suite *FileUploadAcceptanceTestSuite) createRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	v1.GET("/uploads/:filename", controllers.GetUploadedImage)

	admin := v1.Group("", suite.mockAdminMiddleware(), middleware.RequireCompany())
	{
		admin.POST("/uploads", controllers.UploadProductImage)
		admin.POST("/products", controllers.CreateProduct)
		admin.GET("/products", controllers.ListProducts)
	}

	return router
}

// mockAdminMiddleware simulates an authenticated admin for acceptance testing
func (suite *FileUploadAcceptanceTestSuite) mockAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "auth0|admin")
		c.Set("access_token", "mock-token")
		c.Set("validated_claims", &validator.ValidatedClaims{
			RegisteredClaims: validator.RegisteredClaims{Subject: "auth0|admin"},
			CustomClaims:     &middleware.CustomClaims{Role: models.RoleAdmin},
		})
		c.Next()
	}
}

// uploadPhoto posts a multipart photo and returns the decoded response
func (suite *FileUploadAcceptanceTestSuite) uploadPhoto(filename string, content []byte) (*http.Response, map[string]interface{}) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	suite.NoError(err)
	_, err = part.Write(content)
	suite.NoError(err)
	suite.NoError(writer.Close())

	req, err := http.NewRequest("POST", suite.server.URL+"/api/v1/uploads", body)
	suite.NoError(err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Company-ID", "1")

	resp, err := http.DefaultClient.Do(req)
	suite.NoError(err)

	var responseData map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&responseData)
	suite.NoError(err)
	resp.Body.Close()

	return resp, responseData
}

// TestPhotoWorkflow_Acceptance uploads a photo, attaches it to a product and
// reads it back from the catalog.
func (suite *FileUploadAcceptanceTestSuite) TestPhotoWorkflow_Acceptance() {
	// Step 1: upload the photo
	resp, response := suite.uploadPhoto("moqueca.jpg", []byte("fake JPEG content"))
	assert.Equal(suite.T(), http.StatusCreated, resp.StatusCode)

	data := response["data"].(map[string]interface{})
	imageKey := data["image_s3_key"].(string)
	assert.NotEmpty(suite.T(), imageKey)
	assert.NotEmpty(suite.T(), data["image_url"])
	assert.True(suite.T(), suite.mock.ImageExists(imageKey))

	// Step 2: create a product carrying the key
	payload := map[string]interface{}{
		"name":         "Moqueca",
		"price":        "50.00",
		"category":     models.CategoryMains,
		"image_s3_key": imageKey,
	}
	bodyJSON, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", suite.server.URL+"/api/v1/products", bytes.NewReader(bodyJSON))
	suite.NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Company-ID", "1")

	createResp, err := http.DefaultClient.Do(req)
	suite.NoError(err)
	defer createResp.Body.Close()
	assert.Equal(suite.T(), http.StatusCreated, createResp.StatusCode)

	// Step 3: the catalog resolves the key to a URL
	req, err = http.NewRequest("GET", suite.server.URL+"/api/v1/products", nil)
	suite.NoError(err)
	req.Header.Set("X-Company-ID", "1")

	listResp, err := http.DefaultClient.Do(req)
	suite.NoError(err)
	defer listResp.Body.Close()
	assert.Equal(suite.T(), http.StatusOK, listResp.StatusCode)

	var listResponse map[string]interface{}
	suite.NoError(json.NewDecoder(listResp.Body).Decode(&listResponse))
	products := listResponse["data"].([]interface{})
	suite.Len(products, 1)
	product := products[0].(map[string]interface{})
	assert.Equal(suite.T(), imageKey, product["image_s3_key"])
	assert.NotEmpty(suite.T(), product["image_url"])
}

// TestRejectedUploads_Acceptance exercises the format and size limits.
func (suite *FileUploadAcceptanceTestSuite) TestRejectedUploads_Acceptance() {
	suite.T().Run("Unsupported format", func(t *testing.T) {
		resp, response := suite.uploadPhoto("animation.gif", []byte("GIF89a"))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errorData := response["error"].(map[string]interface{})
		assert.Equal(t, "INVALID_FILE_FORMAT", errorData["code"])
	})

	suite.T().Run("Oversized file", func(t *testing.T) {
		resp, response := suite.uploadPhoto("huge.png", make([]byte, 11*1024*1024))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		errorData := response["error"].(map[string]interface{})
		assert.Equal(t, "FILE_TOO_LARGE", errorData["code"])
	})

	// Nothing landed in the store
	assert.Empty(suite.T(), suite.mock.GetUploadedImages())
}

// TestServeLocalImage_Acceptance serves a locally stored image file.
func (suite *FileUploadAcceptanceTestSuite) TestServeLocalImage_Acceptance() {
	content := []byte("fake PNG content")
	filename := "cartaz.png"
	suite.NoError(os.WriteFile(filepath.Join(suite.uploadDir, filename), content, 0644))

	resp, err := http.Get(suite.server.URL + "/api/v1/uploads/" + filename)
	suite.NoError(err)
	defer resp.Body.Close()

	assert.Equal(suite.T(), http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), "image/png", resp.Header.Get("Content-Type"))
}

// TestFileUploadAcceptanceSuite runs the acceptance test suite
func TestFileUploadAcceptanceSuite(t *testing.T) {
	suite.Run(t, new(FileUploadAcceptanceTestSuite))
}
