package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// RequireCompany resolves the tenant for the request from the X-Company-ID
// header and stores it in the Gin context. Every catalog and tab route is
// scoped to exactly one company; requests without a valid header are rejected
// before reaching a handler.
func RequireCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("X-Company-ID")
		if header == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MISSING_COMPANY",
					"message": "X-Company-ID header is required",
				},
			})
			c.Abort()
			return
		}

		companyID, err := strconv.ParseUint(header, 10, 32)
		if err != nil || companyID == 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_COMPANY",
					"message": "X-Company-ID must be a positive integer",
				},
			})
			c.Abort()
			return
		}

		c.Set("company_id", uint(companyID))
		c.Next()
	}
}

// GetCompanyID extracts the tenant id stored by RequireCompany.
func GetCompanyID(c *gin.Context) (uint, error) {
	value, exists := c.Get("company_id")
	if !exists {
		return 0, &AuthError{Code: "MISSING_COMPANY", Message: "Company ID not found in context"}
	}

	companyID, ok := value.(uint)
	if !ok {
		return 0, &AuthError{Code: "INVALID_COMPANY", Message: "Company ID is not in the expected format"}
	}

	return companyID, nil
}
