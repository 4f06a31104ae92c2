package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/domain/orders"
	"stitchstock/internal/infrastructure/http/v1/dto"
	"stitchstock/internal/infrastructure/storage/postgres"
	"stitchstock/pkg/logger"
)

// OrderHandler handles HTTP requests for manufacturing orders.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
	audit   *postgres.AuditService
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service, audit *postgres.AuditService) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service, audit: audit}
}

// Create handles POST /orders. The consumption report is built from the
// product's BOM and frozen with the order.
func (h *OrderHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid product id").WithDetail("productId", req.ProductID))
		return
	}

	orderDate := time.Now().UTC()
	if req.OrderDate != nil {
		orderDate = *req.OrderDate
	}

	o, err := h.service.Create(ctx, req.PONumber, productID, orderDate, req.Quantity, req.Comment)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, o.ID, postgres.AuditActionCreate, map[string]any{
		"poNo": o.Number, "styleNo": o.StyleNumber, "quantity": o.Quantity,
	})
	c.JSON(http.StatusCreated, dto.FromOrder(o))
}

// Get handles GET /orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}

	o, err := h.service.GetByID(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrder(o))
}

// List handles GET /orders.
func (h *OrderHandler) List(c *gin.Context) {
	filter := orders.ListFilter{
		Search:         c.Query("search"),
		IncludeDeleted: c.Query("includeDeleted") == "true",
		Limit:          h.ParseIntQuery(c, "limit", 50),
		Offset:         h.ParseIntQuery(c, "offset", 0),
		OrderBy:        c.Query("orderBy"),
	}
	if status := c.Query("status"); status != "" {
		s := orders.Status(status)
		if !orders.ValidStatus(s) {
			h.Error(c, apperror.NewValidation("unknown status").WithDetail("status", status))
			return
		}
		filter.Status = &s
	}
	if productParam := c.Query("productId"); productParam != "" {
		productID, err := id.Parse(productParam)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid product id").WithDetail("productId", productParam))
			return
		}
		filter.ProductID = &productID
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromOrders(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// UpdateStatus handles PATCH /orders/:id/status. Moving to PRODUCING
// runs the stock gate; a shortfall comes back as INSUFFICIENT_STOCK
// with the per-material breakdown.
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	ctx := c.Request.Context()
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateOrderStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	to := orders.Status(req.Status)
	if !orders.ValidStatus(to) {
		h.Error(c, apperror.NewValidation("unknown status").WithDetail("status", req.Status))
		return
	}

	o, err := h.service.TransitionStatus(ctx, orderID, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, o.ID, postgres.AuditActionStatusChange, map[string]any{
		"status": o.Status,
	})
	h.OK(c, dto.FromOrder(o))
}

// Delete handles DELETE /orders/:id. Production logs cascade; their
// count is reported back.
func (h *OrderHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}

	deleted, err := h.service.Delete(ctx, orderID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, orderID, postgres.AuditActionDelete, map[string]any{
		"deletedProductionLogCount": deleted,
	})
	h.OK(c, dto.DeleteOrderResponse{Message: "order deleted", DeletedProductionLogs: deleted})
}

// Usage handles GET /orders/:id/usage.
func (h *OrderHandler) Usage(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}

	usage, err := h.service.GetUsage(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromUsage(usage))
}

func (h *OrderHandler) logAudit(ctx context.Context, entityID id.ID, action postgres.AuditAction, changes map[string]any) {
	if err := h.audit.LogChange(ctx, "order", entityID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "entity_type", "order", "entity_id", entityID, "error", err)
	}
}
