package handler

import (
	"github.com/gin-gonic/gin"

	poolingapp "github.com/craftbridge/backend/internal/application/pooling"
)

// AnalyticsHandler handles regional pooling analytics endpoints
type AnalyticsHandler struct {
	BaseHandler
	analyticsService *poolingapp.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *poolingapp.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// RegisterRoutes registers analytics routes on the API group
func (h *AnalyticsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/pooling/analytics/region", h.RegionAnalytics)
}

// regionAnalyticsQuery binds the region query parameters
type regionAnalyticsQuery struct {
	District string `form:"district" binding:"required,min=1,max=100"`
	State    string `form:"state" binding:"required,min=1,max=100"`
}

// RegionAnalytics godoc
// @Summary      Pooling analytics for a region
// @Description  Order volume, shipping spend and pooling potential for a district
// @Tags         pooling
// @Produce      json
// @Param        district query string true "Origin district"
// @Param        state query string true "Origin state"
// @Success      200 {object} dto.Response{data=pooling.RegionAnalyticsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/analytics/region [get]
func (h *AnalyticsHandler) RegionAnalytics(c *gin.Context) {
	var query regionAnalyticsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	analytics, err := h.analyticsService.RegionAnalytics(c.Request.Context(), query.District, query.State)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, analytics)
}
