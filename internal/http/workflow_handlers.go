package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nurpe/hunt-contracts/internal/model"
	"github.com/nurpe/hunt-contracts/internal/service"
)

type pricingRequest struct {
	Title        string          `json:"title" binding:"required"`
	Category     string          `json:"category" binding:"required"`
	AddOnKind    string          `json:"add_on_kind"`
	Species      []string        `json:"species"`
	Weapons      []string        `json:"weapons"`
	IncludedDays int             `json:"included_days"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	SortOrder    int             `json:"sort_order"`
}

type updatePriceRequest struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type templateRequest struct {
	OutfitterName string `json:"outfitter_name"`
	Body          string `json:"body"`
}

type registerHuntRequest struct {
	Species           string `json:"species" binding:"required"`
	Weapon            string `json:"weapon"`
	Unit              string `json:"unit"`
	HuntCode          string `json:"hunt_code"`
	HuntType          string `json:"hunt_type" binding:"required"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	SelectedPricingID string `json:"selected_pricing_id"`
}

type assignClientRequest struct {
	ClientID   string `json:"client_id" binding:"required"`
	ClientName string `json:"client_name"`
}

type tagStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type slotRequest struct {
	HuntCode  string `json:"hunt_code"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type completionRequest struct {
	SelectedPricingID string       `json:"selected_pricing_id"`
	AddOns            model.AddOns `json:"add_ons"`
	StartDate         string       `json:"start_date"`
	EndDate           string       `json:"end_date"`
}

type signatureRequest struct {
	Party    string `json:"party" binding:"required"`
	SignedAt string `json:"signed_at"`
}

func (h *Handler) listPricing(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	entries, err := h.catalog.ListPricing(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": entries})
}

func (h *Handler) createPricing(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req pricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.catalog.CreatePricing(c.Request.Context(), principal, service.PricingEntryInput{
		Title:        req.Title,
		Category:     model.PricingCategory(req.Category),
		AddOnKind:    model.AddOnKind(req.AddOnKind),
		Species:      req.Species,
		Weapons:      req.Weapons,
		IncludedDays: req.IncludedDays,
		UnitPrice:    req.UnitPrice,
		SortOrder:    req.SortOrder,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *Handler) updatePrice(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req updatePriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.catalog.UpdatePrice(c.Request.Context(), principal, id, req.UnitPrice); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) saveContractTemplate(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req templateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tpl, err := h.catalog.SaveContractTemplate(c.Request.Context(), principal, req.OutfitterName, req.Body)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": tpl.ID, "updated_at": tpl.UpdatedAt})
}

func (h *Handler) registerHunt(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	var req registerHuntRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hunt dates"})
		return
	}
	pricingID, err := parseOptionalID(req.SelectedPricingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid selected_pricing_id"})
		return
	}

	result, err := h.workflow.RegisterHunt(c.Request.Context(), principal, service.RegisterHuntInput{
		Species:           req.Species,
		Weapon:            req.Weapon,
		Unit:              req.Unit,
		HuntCode:          req.HuntCode,
		HuntType:          model.HuntType(req.HuntType),
		StartDate:         start,
		EndDate:           end,
		SelectedPricingID: pricingID,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) getWorkflow(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.respond(c, func() (*service.TransitionResult, error) {
		return h.workflow.GetWorkflow(c.Request.Context(), principal, id)
	})
}

func (h *Handler) assignClient(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req assignClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client_id"})
		return
	}
	h.respond(c, func() (*service.TransitionResult, error) {
		return h.workflow.AssignClient(c.Request.Context(), principal, id, clientID, req.ClientName)
	})
}

func (h *Handler) setTagStatus(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req tagStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, func() (*service.TransitionResult, error) {
		return h.workflow.SetTagStatus(c.Request.Context(), principal, id, model.TagStatus(req.Status))
	})
}

func (h *Handler) generateContract(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.respond(c, func() (*service.TransitionResult, error) {
		return h.workflow.GenerateContract(c.Request.Context(), principal, id)
	})
}

func (h *Handler) assignSlot(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hunt dates"})
		return
	}
	h.respond(c, func() (*service.TransitionResult, error) {
		return h.workflow.AssignSlot(c.Request.Context(), principal, id, req.HuntCode, start, end)
	})
}

func (h *Handler) completeBooking(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req completionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pricingID, err := parseOptionalID(req.SelectedPricingID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid selected_pricing_id"})
		return
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hunt dates"})
		return
	}
	h.respond(c, func() (*service.TransitionResult, error) {
		return h.workflow.CompleteBooking(c.Request.Context(), principal, id, service.CompletionInput{
			SelectedPricingID: pricingID,
			AddOns:            req.AddOns,
			StartDate:         start,
			EndDate:           end,
		})
	})
}

func (h *Handler) sendForSignature(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.respond(c, func() (*service.TransitionResult, error) {
		return h.workflow.SendForSignature(c.Request.Context(), principal, id)
	})
}

func (h *Handler) recordSignature(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req signatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var signedAt time.Time
	if req.SignedAt != "" {
		parsed, err := parseDate(req.SignedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signed_at"})
			return
		}
		signedAt = parsed
	}
	h.respond(c, func() (*service.TransitionResult, error) {
		return h.workflow.RecordSignature(c.Request.Context(), principal, id, model.SignatureParty(req.Party), signedAt)
	})
}

func (h *Handler) retrySideEffects(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	h.respond(c, func() (*service.TransitionResult, error) {
		return h.workflow.RetrySideEffects(c.Request.Context(), principal, id)
	})
}

func (h *Handler) exportContractPDF(c *gin.Context) {
	principal, ok := h.principal(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	doc, err := h.workflow.ContractDocument(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	content, err := h.pdf.Generate(*doc)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := fmt.Sprintf("hunt-contract-%s.pdf", doc.Contract.ID)
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

func (h *Handler) respond(c *gin.Context, fn func() (*service.TransitionResult, error)) {
	result, err := fn()
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
