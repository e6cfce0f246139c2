package files

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"offertanalys/internal/categories"
	"offertanalys/internal/extract"
	"offertanalys/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/files/process", h.process)
}

type processRequest struct {
	FilePath        string `json:"filePath" binding:"required"`
	FileName        string `json:"fileName" binding:"required"`
	SpecificationID string `json:"specificationId"`
}

func (h *Handler) process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BindError(c, "VALIDATION_ERROR", "filePath and fileName are required", err)
		return
	}
	out, err := h.Svc.Process(c.Request.Context(), ProcessInput{
		FilePath:        req.FilePath,
		FileName:        req.FileName,
		SpecificationID: req.SpecificationID,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, out)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, extract.ErrUnsupportedFormat):
		respond.Error(c, http.StatusUnsupportedMediaType, "VALIDATION_ERROR", "unsupported file type, upload a PDF or Excel file", nil)
	case errors.Is(err, extract.ErrExtractionFailed):
		respond.Error(c, http.StatusUnprocessableEntity, "EXTRACTION_FAILED", "could not extract text, check that the file is valid", nil)
	case errors.Is(err, extract.ErrSourceUnavailable):
		respond.Error(c, http.StatusBadGateway, "STORAGE_ERROR", "could not fetch the file from storage", nil)
	case errors.Is(err, categories.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "specification not found", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error", nil)
	}
}
