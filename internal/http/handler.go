package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/hunt-contracts/internal/excel"
	"github.com/nurpe/hunt-contracts/internal/http/middleware"
	"github.com/nurpe/hunt-contracts/internal/model"
	"github.com/nurpe/hunt-contracts/internal/pdf"
	"github.com/nurpe/hunt-contracts/internal/service"
)

type Handler struct {
	workflow   *service.WorkflowService
	reconciler *service.ReconciliationService
	catalog    *service.CatalogService
	pdf        *pdf.Generator
	excel      *excel.Generator
	log        zerolog.Logger
}

func NewHandler(
	workflow *service.WorkflowService,
	reconciler *service.ReconciliationService,
	catalog *service.CatalogService,
	pdfGenerator *pdf.Generator,
	excelGenerator *excel.Generator,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		workflow:   workflow,
		reconciler: reconciler,
		catalog:    catalog,
		pdf:        pdfGenerator,
		excel:      excelGenerator,
		log:        log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/pricing", h.listPricing)
	protected.POST("/pricing", h.createPricing)
	protected.PATCH("/pricing/:id", h.updatePrice)
	protected.PUT("/templates/contract", h.saveContractTemplate)

	protected.POST("/hunts", h.registerHunt)
	protected.GET("/hunts/:id/workflow", h.getWorkflow)
	protected.POST("/hunts/:id/client", h.assignClient)
	protected.POST("/hunts/:id/tag-status", h.setTagStatus)
	protected.POST("/hunts/:id/contract", h.generateContract)
	protected.POST("/hunts/:id/slot", h.assignSlot)
	protected.POST("/hunts/:id/completion", h.completeBooking)

	protected.POST("/contracts/:id/send", h.sendForSignature)
	protected.POST("/contracts/:id/signatures", h.recordSignature)
	protected.POST("/contracts/:id/side-effects/retry", h.retrySideEffects)
	protected.GET("/contracts/:id/pdf", h.exportContractPDF)

	protected.GET("/payments/:id", h.getPayment)
	protected.POST("/payments/:id/reconcile", h.reconcilePayment)
	protected.POST("/payments/:id/receipts", h.recordPayment)
	protected.GET("/reports/drift", h.driftReport)
	protected.GET("/reports/drift/export", h.exportDriftReport)
}

// principal writes the 401 response itself when the request carries none.
func (h *Handler) principal(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrContractLocked), errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPrecondition), errors.Is(err, service.ErrNoAmount):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

// parseDateRange parses an optional start/end pair. Both empty yields nils.
func parseDateRange(rawStart, rawEnd string) (*time.Time, *time.Time, error) {
	if strings.TrimSpace(rawStart) == "" && strings.TrimSpace(rawEnd) == "" {
		return nil, nil, nil
	}
	start, err := parseDate(rawStart)
	if err != nil {
		return nil, nil, err
	}
	end, err := parseDate(rawEnd)
	if err != nil {
		return nil, nil, err
	}
	return &start, &end, nil
}

func parseOptionalID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, service.ErrInvalidInput
	}
	return &id, nil
}
