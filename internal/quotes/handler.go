package quotes

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"offertanalys/internal/extract"
	"offertanalys/internal/shared/server/respond"
)

const maxUploadSize = 25 << 20 // 25MB

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches quote routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/quotes/analyze", h.analyze)
	rg.POST("/quotes/analyze-batch", h.analyzeBatch)
	rg.POST("/quotes/upload", h.upload)
	rg.GET("/quotes", h.list)
	rg.GET("/quotes/:id", h.get)
	rg.PATCH("/quotes/:id/status", h.setStatus)
}

type analyzeRequest struct {
	Text string `json:"text" binding:"required"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "text is required", nil)
		return
	}
	data, err := h.Svc.NormalizeOne(c.Request.Context(), req.Text)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"success": true, "data": data})
}

type analyzeBatchRequest struct {
	QuoteIDs  []string `json:"quoteIds" binding:"required,min=1,dive,required"`
	Reanalyze bool     `json:"reanalyze"`
}

func (h *Handler) analyzeBatch(c *gin.Context) {
	var req analyzeBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, ErrorCodeValidation, "quoteIds must be a non-empty list", err)
		return
	}
	c.Set("batchSize", len(req.QuoteIDs))
	res := h.Svc.AnalyzeBatch(c.Request.Context(), req.QuoteIDs, req.Reanalyze)
	respond.OK(c, res)
}

func (h *Handler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unable to read file", nil)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, "unable to read file", nil)
		return
	}

	categoryID := strings.TrimSpace(c.PostForm("categoryId"))
	c.Set("categoryId", categoryID)
	analyze, _ := strconv.ParseBool(c.DefaultPostForm("analyze", "false"))

	res, err := h.Svc.Upload(c.Request.Context(), UploadInput{
		CategoryID:   categoryID,
		SupplierName: c.PostForm("supplierName"),
		FileName:     fileHeader.Filename,
		Data:         data,
		Analyze:      analyze,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.Set("quoteId", res.Quote.ID)
	respond.JSON(c, http.StatusCreated, res)
}

func (h *Handler) list(c *gin.Context) {
	categoryID := strings.TrimSpace(c.Query("categoryId"))
	c.Set("categoryId", categoryID)
	out, err := h.Svc.List(c.Request.Context(), categoryID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"items": out})
}

func (h *Handler) get(c *gin.Context) {
	id := c.Param("id")
	c.Set("quoteId", id)
	q, err := h.Svc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, q)
}

type statusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending analyzed received reviewing selected rejected"`
}

func (h *Handler) setStatus(c *gin.Context) {
	id := c.Param("id")
	c.Set("quoteId", id)
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, ErrorCodeValidation, "invalid status", err)
		return
	}
	q, err := h.Svc.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, q)
}

func writeError(c *gin.Context, err error) {
	var ae *AnalysisError
	switch {
	case errors.As(err, &ae):
		var details gin.H
		if ae.Snippet != "" {
			details = gin.H{"snippet": ae.Snippet}
		}
		status := http.StatusBadGateway
		if ae.Code == ErrorCodeValidation {
			status = http.StatusBadRequest
		}
		respond.Error(c, status, ae.Code, ae.UserMessage(), details)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, ErrorCodeValidation, err.Error(), nil)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusUnsupportedMediaType, ErrorCodeValidation, err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "quote not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, ErrorCodeInternal, "internal error", nil)
	}
}
