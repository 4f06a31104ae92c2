package handlers

import (
	"github.com/gin-gonic/gin"

	"stitchstock/internal/domain/reports"
	"stitchstock/internal/infrastructure/http/v1/dto"
)

// ReportsHandler handles HTTP requests for aggregate reports. Every
// endpoint accepts an optional CEL expression in the filter query
// parameter, evaluated per row.
type ReportsHandler struct {
	*BaseHandler
	service *reports.Service
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(base *BaseHandler, service *reports.Service) *ReportsHandler {
	return &ReportsHandler{BaseHandler: base, service: service}
}

// MaterialTotals handles GET /reports/materials.
// Example: filter=wastage > 5.0 && unit == "meter"
func (h *ReportsHandler) MaterialTotals(c *gin.Context) {
	rows, err := h.service.MaterialTotals(c.Request.Context(), c.Query("filter"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromMaterialTotals(rows))
}

// StockSnapshot handles GET /reports/stock.
// Example: filter=shortfall || currentStock < 100.0
func (h *ReportsHandler) StockSnapshot(c *gin.Context) {
	rows, err := h.service.StockSnapshot(c.Request.Context(), c.Query("filter"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromStockRows(rows))
}

// OrderSummary handles GET /reports/orders/:id.
func (h *ReportsHandler) OrderSummary(c *gin.Context) {
	orderID, ok := h.ParseID(c)
	if !ok {
		return
	}

	summary, err := h.service.OrderSummary(c.Request.Context(), orderID, c.Query("filter"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.FromOrderSummary(summary))
}
