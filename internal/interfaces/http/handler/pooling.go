package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	poolingapp "github.com/craftbridge/backend/internal/application/pooling"
	"github.com/craftbridge/backend/internal/interfaces/http/dto"
)

// PoolingHandler handles cluster logistics pooling API endpoints
type PoolingHandler struct {
	BaseHandler
	poolingService *poolingapp.PoolingService
}

// NewPoolingHandler creates a new PoolingHandler
func NewPoolingHandler(poolingService *poolingapp.PoolingService) *PoolingHandler {
	return &PoolingHandler{
		poolingService: poolingService,
	}
}

// RegisterRoutes registers pooling routes on the API group
func (h *PoolingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	pooling := rg.Group("/pooling")
	{
		pooling.POST("/orders", h.RegisterOrder)
		pooling.GET("/orders/:id", h.GetOrder)
		pooling.GET("/orders/:id/opportunities", h.FindOpportunities)
		pooling.POST("/orders/:id/opt-in", h.OptIn)
		pooling.POST("/eligibility", h.FindPoolable)
		pooling.POST("/savings", h.CalculateSavings)
		pooling.GET("/hubs/:state", h.ResolveHub)
		pooling.POST("/schedule", h.EstimateSchedule)
		pooling.POST("/shipments", h.CreateShipment)
		pooling.GET("/shipments", h.ListShipments)
		pooling.GET("/shipments/:ref", h.GetShipment)
		pooling.POST("/shipments/:ref/ship", h.ShipShipment)
		pooling.POST("/shipments/:ref/deliver", h.DeliverShipment)
		pooling.GET("/clusters", h.PlanClusters)
		pooling.GET("/artisans/:id/clusters", h.ActiveClusters)
	}
}

// RegisterOrder godoc
// @Summary      Register a poolable order
// @Description  Register a marketplace order with the pooling subsystem
// @Tags         pooling
// @Accept       json
// @Produce      json
// @Param        request body pooling.RegisterOrderRequest true "Order registration request"
// @Success      201 {object} dto.Response{data=pooling.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/orders [post]
func (h *PoolingHandler) RegisterOrder(c *gin.Context) {
	var req poolingapp.RegisterOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.poolingService.RegisterOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetOrder godoc
// @Summary      Get a poolable order
// @Tags         pooling
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=pooling.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/orders/{id} [get]
func (h *PoolingHandler) GetOrder(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.poolingService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// FindOpportunities godoc
// @Summary      Find pooling opportunities for an order
// @Description  Composite quote: eligible peers, savings, hub and pickup timeline
// @Tags         pooling
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=pooling.OpportunityResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/orders/{id}/opportunities [get]
func (h *PoolingHandler) FindOpportunities(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	opportunity, err := h.poolingService.FindOpportunities(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, opportunity)
}

// OptIn godoc
// @Summary      Opt an order into cluster pooling
// @Tags         pooling
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=pooling.OrderResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/orders/{id}/opt-in [post]
func (h *PoolingHandler) OptIn(c *gin.Context) {
	orderID, ok := h.parseOrderID(c)
	if !ok {
		return
	}

	order, err := h.poolingService.OptIn(c.Request.Context(), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// FindPoolable godoc
// @Summary      Find orders eligible to share a shipment
// @Tags         pooling
// @Accept       json
// @Produce      json
// @Param        request body pooling.FindPoolableRequest true "Eligibility query"
// @Success      200 {object} dto.Response{data=pooling.FindPoolableResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/eligibility [post]
func (h *PoolingHandler) FindPoolable(c *gin.Context) {
	var req poolingapp.FindPoolableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.poolingService.FindPoolable(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// CalculateSavings godoc
// @Summary      Price a candidate cluster
// @Description  Compare individual and consolidated shipping for a set of orders
// @Tags         pooling
// @Accept       json
// @Produce      json
// @Param        request body pooling.CalculateSavingsRequest true "Savings calculation request"
// @Success      200 {object} dto.Response{data=pooling.SavingsReportResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/savings [post]
func (h *PoolingHandler) CalculateSavings(c *gin.Context) {
	var req poolingapp.CalculateSavingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	report, err := h.poolingService.CalculateSavings(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, report)
}

// ResolveHub godoc
// @Summary      Resolve the consolidation hub for a state
// @Tags         pooling
// @Produce      json
// @Param        state path string true "Origin state"
// @Success      200 {object} dto.Response{data=pooling.HubResponse}
// @Security     BearerAuth
// @Router       /pooling/hubs/{state} [get]
func (h *PoolingHandler) ResolveHub(c *gin.Context) {
	state := c.Param("state")
	if state == "" {
		h.BadRequest(c, "State is required")
		return
	}

	h.Success(c, h.poolingService.ResolveHub(state))
}

// EstimateSchedule godoc
// @Summary      Quote the pickup and delivery timeline for a cluster
// @Tags         pooling
// @Accept       json
// @Produce      json
// @Param        request body pooling.EstimateScheduleRequest true "Schedule estimation request"
// @Success      200 {object} dto.Response{data=pooling.ScheduleResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/schedule [post]
func (h *PoolingHandler) EstimateSchedule(c *gin.Context) {
	var req poolingapp.EstimateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	schedule, err := h.poolingService.EstimateSchedule(req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, schedule)
}

// CreateShipment godoc
// @Summary      Consolidate orders into a shipment
// @Description  Atomically claim the listed orders and create the consolidated shipment
// @Tags         pooling
// @Accept       json
// @Produce      json
// @Param        request body pooling.CreateShipmentRequest true "Shipment creation request"
// @Success      201 {object} dto.Response{data=pooling.ShipmentResponse}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/shipments [post]
func (h *PoolingHandler) CreateShipment(c *gin.Context) {
	var req poolingapp.CreateShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	shipment, err := h.poolingService.CreateShipment(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, shipment)
}

// ListShipments godoc
// @Summary      List consolidated shipments
// @Tags         pooling
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=pooling.ShipmentListResponse}
// @Security     BearerAuth
// @Router       /pooling/shipments [get]
func (h *PoolingHandler) ListShipments(c *gin.Context) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	list, err := h.poolingService.ListShipments(c.Request.Context(), req.Page, req.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, list.Items, list.Total, list.Page, list.PageSize)
}

// GetShipment godoc
// @Summary      Get a shipment by its reference
// @Tags         pooling
// @Produce      json
// @Param        ref path string true "Shipment reference"
// @Success      200 {object} dto.Response{data=pooling.ShipmentResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/shipments/{ref} [get]
func (h *PoolingHandler) GetShipment(c *gin.Context) {
	ref := c.Param("ref")
	if ref == "" {
		h.BadRequest(c, "Shipment reference is required")
		return
	}

	shipment, err := h.poolingService.GetShipmentByRef(c.Request.Context(), ref)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// ShipShipment godoc
// @Summary      Mark a shipment as shipped
// @Tags         pooling
// @Produce      json
// @Param        ref path string true "Shipment reference"
// @Success      200 {object} dto.Response{data=pooling.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/shipments/{ref}/ship [post]
func (h *PoolingHandler) ShipShipment(c *gin.Context) {
	ref := c.Param("ref")
	shipment, err := h.poolingService.MarkShipmentShipped(c.Request.Context(), ref)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// DeliverShipment godoc
// @Summary      Mark a shipment as delivered
// @Tags         pooling
// @Produce      json
// @Param        ref path string true "Shipment reference"
// @Success      200 {object} dto.Response{data=pooling.ShipmentResponse}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/shipments/{ref}/deliver [post]
func (h *PoolingHandler) DeliverShipment(c *gin.Context) {
	ref := c.Param("ref")
	shipment, err := h.poolingService.MarkShipmentDelivered(c.Request.Context(), ref)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, shipment)
}

// PlanClusters godoc
// @Summary      Plan clusters across all open orders
// @Tags         pooling
// @Produce      json
// @Success      200 {object} dto.Response{data=[]pooling.ClusterResponse}
// @Security     BearerAuth
// @Router       /pooling/clusters [get]
func (h *PoolingHandler) PlanClusters(c *gin.Context) {
	clusters, err := h.poolingService.PlanClusters(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, clusters)
}

// ActiveClusters godoc
// @Summary      List an artisan's active pooled shipments
// @Description  Group the artisan's consolidated orders by shipment reference
// @Tags         pooling
// @Produce      json
// @Param        id path string true "Artisan ID" format(uuid)
// @Success      200 {object} dto.Response{data=pooling.ActiveClustersResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /pooling/artisans/{id}/clusters [get]
func (h *PoolingHandler) ActiveClusters(c *gin.Context) {
	artisanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid artisan ID format")
		return
	}

	clusters, err := h.poolingService.ActiveClusters(c.Request.Context(), artisanID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, clusters)
}

func (h *PoolingHandler) parseOrderID(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return uuid.Nil, false
	}
	return orderID, true
}
