package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsContext(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+rawQuery, nil)
	return c
}

func TestPageParamsDefaults(t *testing.T) {
	page, perPage := pageParams(paramsContext(t, ""))
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, perPage)
}

func TestPageParamsClampsPerPage(t *testing.T) {
	// The clamped value feeds both the query and the response meta,
	// so a per_page=200 request reports the page size it actually got.
	page, perPage := pageParams(paramsContext(t, "page=2&per_page=200"))
	assert.Equal(t, 2, page)
	assert.Equal(t, 100, perPage)
}

func TestPageParamsIgnoresInvalidValues(t *testing.T) {
	page, perPage := pageParams(paramsContext(t, "page=-1&per_page=abc"))
	assert.Equal(t, 1, page)
	assert.Equal(t, 50, perPage)
}
