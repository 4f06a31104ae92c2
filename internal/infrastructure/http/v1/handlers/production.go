package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/domain/production"
	"stitchstock/internal/infrastructure/http/v1/dto"
	"stitchstock/internal/infrastructure/storage/postgres"
	"stitchstock/pkg/logger"
)

// ProductionHandler handles HTTP requests for production events.
type ProductionHandler struct {
	*BaseHandler
	recorder *production.Recorder
	audit    *postgres.AuditService
}

// NewProductionHandler creates a new production handler.
func NewProductionHandler(base *BaseHandler, recorder *production.Recorder, audit *postgres.AuditService) *ProductionHandler {
	return &ProductionHandler{BaseHandler: base, recorder: recorder, audit: audit}
}

// Record handles POST /production. A PENDING order moves to PRODUCING as
// a side effect; a COMPLETED order refuses the posting.
func (h *ProductionHandler) Record(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordProductionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	orderID, err := id.Parse(req.OrderID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid order id").WithDetail("orderId", req.OrderID))
		return
	}

	date := time.Now().UTC()
	if req.Date != nil {
		date = *req.Date
	}

	log, err := h.recorder.RecordProduction(ctx, orderID, date, req.CutQty, req.UsedFabric, req.WastageQty, req.WastageReason, req.Remarks)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, log.ID, postgres.AuditActionRecord, map[string]any{
		"orderId": orderID, "cutQty": log.CutQty, "usedFabric": log.UsedFabric, "wastageQty": log.WastageQty,
	})
	c.JSON(http.StatusCreated, dto.FromProductionLog(log))
}

// RecordExtraWastage handles POST /production/extra-wastage. Posts a
// wastage correction with no production figures and no stock movement.
func (h *ProductionHandler) RecordExtraWastage(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RecordExtraWastageRequest
	if !h.BindJSON(c, &req) {
		return
	}

	orderID, err := id.Parse(req.OrderID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid order id").WithDetail("orderId", req.OrderID))
		return
	}

	entries := make([]production.ExtraWastageEntry, 0, len(req.MaterialUsage))
	for _, e := range req.MaterialUsage {
		materialID, err := id.Parse(e.MaterialID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid material id").WithDetail("materialId", e.MaterialID))
			return
		}
		entries = append(entries, production.ExtraWastageEntry{
			MaterialID: materialID,
			Quantity:   e.ExtraWastage,
			Reason:     e.WastageReason,
		})
	}

	log, err := h.recorder.RecordExtraWastage(ctx, orderID, entries, req.Remarks)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, log.ID, postgres.AuditActionRecord, map[string]any{
		"orderId": orderID, "entries": len(entries), "extraWastageOnly": true,
	})
	c.JSON(http.StatusCreated, dto.FromProductionLog(log))
}

// List handles GET /production?orderId=.
func (h *ProductionHandler) List(c *gin.Context) {
	raw := c.Query("orderId")
	if raw == "" {
		h.Error(c, apperror.NewValidation("orderId query parameter is required"))
		return
	}
	orderID, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid order id").WithDetail("orderId", raw))
		return
	}

	logs, err := h.recorder.ListByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProductionLogs(logs))
}

// Get handles GET /production/:id.
func (h *ProductionHandler) Get(c *gin.Context) {
	logID, ok := h.ParseID(c)
	if !ok {
		return
	}

	log, err := h.recorder.GetByID(c.Request.Context(), logID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProductionLog(log))
}

func (h *ProductionHandler) logAudit(ctx context.Context, entityID id.ID, action postgres.AuditAction, changes map[string]any) {
	if err := h.audit.LogChange(ctx, "production_log", entityID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "entity_type", "production_log", "entity_id", entityID, "error", err)
	}
}
