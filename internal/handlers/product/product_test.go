package product

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func listRequest(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	ListProducts(c)
	return w
}

func TestListProductsRejectsUnknownSort(t *testing.T) {
	w := listRequest(t, "/api/v1/products?sort=cheapest_first")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "sort")
}

func TestListProductsRejectsUnknownCategory(t *testing.T) {
	w := listRequest(t, "/api/v1/products?category=spaceships")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "category")
}
