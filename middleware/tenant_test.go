package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRequireCompany(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		header         string
		wantStatusCode int
		wantAborted    bool
		wantCompanyID  uint
	}{
		{
			name:          "valid company header",
			header:        "42",
			wantCompanyID: 42,
		},
		{
			name:           "missing header",
			header:         "",
			wantStatusCode: http.StatusBadRequest,
			wantAborted:    true,
		},
		{
			name:           "non-numeric header",
			header:         "acme",
			wantStatusCode: http.StatusBadRequest,
			wantAborted:    true,
		},
		{
			name:           "zero is not a tenant",
			header:         "0",
			wantStatusCode: http.StatusBadRequest,
			wantAborted:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.header != "" {
				c.Request.Header.Set("X-Company-ID", tt.header)
			}

			handler := RequireCompany()
			handler(c)

			if tt.wantAborted {
				assert.True(t, c.IsAborted())
				assert.Equal(t, tt.wantStatusCode, w.Code)
				return
			}

			assert.False(t, c.IsAborted())
			companyID, err := GetCompanyID(c)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantCompanyID, companyID)
		})
	}
}

func TestGetCompanyID_Missing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	_, err := GetCompanyID(c)
	assert.Error(t, err)
}
