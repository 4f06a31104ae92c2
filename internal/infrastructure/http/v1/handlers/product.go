package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"stitchstock/internal/core/apperror"
	"stitchstock/internal/core/id"
	"stitchstock/internal/domain/catalogs/product"
	"stitchstock/internal/infrastructure/http/v1/dto"
	"stitchstock/internal/infrastructure/storage/postgres"
	"stitchstock/pkg/logger"
)

// ProductHandler handles HTTP requests for garment styles.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
	audit   *postgres.AuditService
}

// NewProductHandler creates a new product handler.
func NewProductHandler(base *BaseHandler, service *product.Service, audit *postgres.AuditService) *ProductHandler {
	return &ProductHandler{BaseHandler: base, service: service, audit: audit}
}

func (h *ProductHandler) applyRequirements(p *product.Product, reqs []dto.RequirementRequest) error {
	p.MaterialsRequired = p.MaterialsRequired[:0]
	for _, r := range reqs {
		materialID, err := id.Parse(r.MaterialID)
		if err != nil {
			return apperror.NewValidation("invalid material id").WithDetail("materialId", r.MaterialID)
		}
		p.AddRequirement(materialID, r.QuantityPerPiece, r.ExpectedWastagePct, r.WastageRemarks, r.IsPrimary)
	}
	return nil
}

// Create handles POST /products.
func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()
	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p := product.NewProduct(req.StyleNumber, req.Name)
	p.Description = req.Description
	p.WastageRemarks = req.WastageRemarks
	if err := h.applyRequirements(p, req.Requirements); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Create(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, p.ID, postgres.AuditActionCreate, map[string]any{
		"styleNo": p.Code, "name": p.Name, "lines": len(p.MaterialsRequired),
	})
	c.JSON(http.StatusCreated, dto.FromProduct(p))
}

// Get handles GET /products/:id.
func (h *ProductHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromProduct(p))
}

// List handles GET /products.
func (h *ProductHandler) List(c *gin.Context) {
	filter := product.ListFilter{
		Search:         c.Query("search"),
		IncludeDeleted: c.Query("includeDeleted") == "true",
		Limit:          h.ParseIntQuery(c, "limit", 50),
		Offset:         h.ParseIntQuery(c, "offset", 0),
		OrderBy:        c.Query("orderBy"),
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      dto.FromProducts(result.Items),
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}

// Update handles PUT /products/:id. The BOM is replaced wholesale.
func (h *ProductHandler) Update(c *gin.Context) {
	ctx := c.Request.Context()
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.UpdateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := h.service.GetByID(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	p.Name = req.Name
	p.Description = req.Description
	p.WastageRemarks = req.WastageRemarks
	p.Version = req.Version
	if err := h.applyRequirements(p, req.Requirements); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(ctx, p); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, p.ID, postgres.AuditActionUpdate, map[string]any{
		"name": p.Name, "lines": len(p.MaterialsRequired),
	})
	h.OK(c, dto.FromProduct(p))
}

// UpdateWastage handles PATCH /products/:id/wastage. Only expected
// wastage percentages and remarks change; open orders are recomputed
// through the wastage-changed event.
func (h *ProductHandler) UpdateWastage(c *gin.Context) {
	ctx := c.Request.Context()
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	var req dto.WastageUpdateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	updates := make([]product.WastageUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		materialID, err := id.Parse(u.MaterialID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid material id").WithDetail("materialId", u.MaterialID))
			return
		}
		updates = append(updates, product.WastageUpdate{
			MaterialID:         materialID,
			ExpectedWastagePct: u.ExpectedWastagePct,
			Remarks:            u.WastageRemarks,
		})
	}

	p, err := h.service.UpdateWastage(ctx, productID, updates, req.WastageRemarks)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, p.ID, postgres.AuditActionUpdate, map[string]any{
		"wastageUpdates": len(updates),
	})
	h.OK(c, dto.FromProduct(p))
}

// Delete handles DELETE /products/:id.
func (h *ProductHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	productID, ok := h.ParseID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, productID); err != nil {
		h.Error(c, err)
		return
	}

	h.logAudit(ctx, productID, postgres.AuditActionDelete, nil)
	h.NoContent(c)
}

func (h *ProductHandler) logAudit(ctx context.Context, entityID id.ID, action postgres.AuditAction, changes map[string]any) {
	if err := h.audit.LogChange(ctx, "product", entityID, action, changes); err != nil {
		logger.Warn(ctx, "audit log failed", "entity_type", "product", "entity_id", entityID, "error", err)
	}
}
