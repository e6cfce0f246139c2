package comparisons

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"offertanalys/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/compare", h.compare)
	rg.GET("/comparisons", h.latest)
	rg.POST("/comparisons", h.save)
	rg.DELETE("/comparisons", h.delete)
}

type compareRequest struct {
	CategoryID        string   `json:"categoryId" binding:"required"`
	QuoteIDs          []string `json:"quoteIds" binding:"required,min=2"`
	SpecificationID   string   `json:"specificationId"`
	SpecificationText string   `json:"specificationText"`
}

func (h *Handler) compare(c *gin.Context) {
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, "VALIDATION_ERROR", "categoryId and at least two quoteIds are required", err)
		return
	}
	c.Set("categoryId", req.CategoryID)
	c.Set("batchSize", len(req.QuoteIDs))

	out, err := h.Svc.CompareCategory(c.Request.Context(), CompareInput{
		CategoryID:        req.CategoryID,
		QuoteIDs:          req.QuoteIDs,
		SpecificationID:   req.SpecificationID,
		SpecificationText: req.SpecificationText,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) latest(c *gin.Context) {
	categoryID := strings.TrimSpace(c.Query("categoryId"))
	c.Set("categoryId", categoryID)
	out, err := h.Svc.Latest(c.Request.Context(), categoryID)
	if errors.Is(err, ErrNotFound) {
		respond.OK(c, nil)
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

type saveRequest struct {
	CategoryID      string           `json:"categoryId" binding:"required"`
	SpecificationID string           `json:"specificationId"`
	QuoteIDs        []string         `json:"quoteIds" binding:"required,min=1"`
	Result          ComparisonResult `json:"result"`
}

func (h *Handler) save(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, "VALIDATION_ERROR", "categoryId, quoteIds and result are required", err)
		return
	}
	c.Set("categoryId", req.CategoryID)
	out, err := h.Svc.Save(c.Request.Context(), Comparison{
		CategoryID:      req.CategoryID,
		SpecificationID: req.SpecificationID,
		QuoteIDs:        req.QuoteIDs,
		Result:          req.Result,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func (h *Handler) delete(c *gin.Context) {
	categoryID := strings.TrimSpace(c.Query("categoryId"))
	c.Set("categoryId", categoryID)
	if err := h.Svc.Delete(c.Request.Context(), categoryID); err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "category not found", nil)
	case errors.Is(err, ErrComparisonFailed):
		respond.Error(c, http.StatusBadGateway, "COMPARISON_FAILED", "could not compare quotes", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", nil)
	}
}
