package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type recordPaymentRequest struct {
	AmountCents int64 `json:"amount_cents" binding:"required"`
}

// getPayment serves the payment item after a best-effort reconcile.
func (h *Handler) getPayment(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	item, err := h.reconciler.ReconcileSafe(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) reconcilePayment(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	result, err := h.reconciler.Reconcile(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"subtotal_cents": result.Totals.SubtotalCents,
		"fee_cents":      result.Totals.FeeCents,
		"total_cents":    result.Totals.TotalCents,
		"corrected":      result.Corrected,
	})
}

func (h *Handler) recordPayment(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req recordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.reconciler.RecordPayment(c.Request.Context(), principal, id, req.AmountCents)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) driftReport(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	report, err := h.reconciler.DriftReport(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) exportDriftReport(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}

	report, err := h.reconciler.DriftReport(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	content, err := h.excel.Generate(report)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := fmt.Sprintf("payment-drift-%s.xlsx", report.GeneratedAt.Format("20060102-150405"))
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, xlsxContentType, content)
}
