package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestSystemHandler_Health(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	NewSystemHandler(nil).RegisterRoutes(router.Group("/api/v1"))

	w := performJSON(router, http.MethodGet, "/api/v1/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["status"])
	assert.NotEmpty(t, data["timestamp"])
}

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	NewSystemHandler(nil).RegisterRoutes(router.Group("/api/v1"))

	w := performJSON(router, http.MethodGet, "/api/v1/system/info", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "CraftBridge Backend API", data["name"])
	assert.NotEmpty(t, data["go_version"])
}
