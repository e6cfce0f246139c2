package suppliers

import (
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
	rg.GET("/suppliers", h.list)
}

// list accepts tags as a comma separated list or as repeated query params.
func (h *Handler) list(c *gin.Context) {
	var tags []string
	for _, raw := range c.QueryArray("tags") {
		tags = append(tags, strings.Split(raw, ",")...)
	}
	out, err := h.Svc.List(c.Request.Context(), tags, c.Query("search"))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list suppliers", nil)
		return
	}
	respond.OK(c, gin.H{"items": out})
}
