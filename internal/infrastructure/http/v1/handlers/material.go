package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stitchstock/internal/core/id"
	"stitchstock/internal/domain/catalogs/material"
	"stitchstock/internal/infrastructure/http/v1/dto"
	"stitchstock/internal/infrastructure/storage/postgres"
	"stitchstock/pkg/logger"
)

// MaterialHandler handles HTTP requests for raw materials.
type MaterialHandler struct {
	*BaseHandler
	service *material.Service
	audit   *postgres.AuditService
}

// NewMaterialHandler creates a new material handler.
func NewMaterialHandler(base *BaseHandler, service *material.Service, audit *postgres.AuditService) *MaterialHandler {
	return &MaterialHandler{BaseHandler: base, service: service, audit: audit}
}

// Create handles POST /materials.
func (h *MaterialHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateMaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m := material.NewRawMaterial(req.ItemCode, req.Name, material.Unit(req.Unit))
	m.CurrentStock = req.InitialStock

	if err := h.service.Create(ctx, m); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, m.ID, postgres.AuditActionCreate, map[string]any{
		"itemCode": m.Code, "name": m.Name, "unit": m.Unit, "initialStock": m.CurrentStock,
	})
	c.JSON(http.StatusCreated, dto.FromMaterial(m))
}

// Get handles GET /materials/:id.
func (h *MaterialHandler) Get(c *gin.Context) {
	materialID, ok := h.ParseID(c)
	if !ok {
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), materialID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMaterial(m))
}

// List handles GET /materials.
func (h *MaterialHandler) List(c *gin.Context) {
	filter := material.ListFilter{
		Search:         c.Query("search"),
		IncludeDeleted: c.Query("includeDeleted") == "true",
		Limit:          h.ParseIntQuery(c, "limit", 50),
		Offset:         h.ParseIntQuery(c, "offset", 0),
		OrderBy:        c.Query("orderBy"),
	}
	if unit := c.Query("unit"); unit != "" {
		u := material.Unit(unit)
		filter.Unit = &u
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromMaterials(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Update handles PUT /materials/:id.
func (h *MaterialHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	materialID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateMaterialRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.GetByID(ctx, materialID)
	if err != nil {
		h.Error(c, err)
		return
	}

	m.Name = req.Name
	m.Unit = material.Unit(req.Unit)
	m.Version = req.Version

	if err := h.service.Update(ctx, m); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, m.ID, postgres.AuditActionUpdate, map[string]any{
		"name": m.Name, "unit": m.Unit,
	})
	h.OK(c, dto.FromMaterial(m))
}

// Delete handles DELETE /materials/:id. The material is marked, not
// removed; deletion is refused while any product's BOM references it.
func (h *MaterialHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	materialID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, materialID); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, materialID, postgres.AuditActionDelete, nil)
	h.NoContent(c)
}

// ReceiveBatch handles POST /materials/:id/batches.
func (h *MaterialHandler) ReceiveBatch(c *gin.Context) {
	ctx := c.Request.Context()
	materialID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.ReceiveBatchRequest
	if !h.BindJSON(c, &req) {
		return
	}

	m, err := h.service.ReceiveBatch(ctx, materialID, req.Quantity, req.Remarks)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, materialID, postgres.AuditActionRecord, map[string]any{
		"quantity": req.Quantity, "remarks": req.Remarks,
	})
	h.OK(c, dto.FromMaterial(m))
}

// logAudit records the mutation in the audit trail. Audit failures are
// logged, never surfaced to the caller.
func (h *MaterialHandler) logAudit(ctx context.Context, entityID id.ID, action postgres.AuditAction, changes map[string]any) {
	if err := h.audit.LogChange(ctx, "material", entityID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "entity_type", "material", "entity_id", entityID, "error", err)
	}
}
