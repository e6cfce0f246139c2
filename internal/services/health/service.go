package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"offertanalys/internal/shared/server/respond"
	"offertanalys/internal/shared/telemetry"
)

const defaultTimeout = 2 * time.Second

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service reports whether the process can reach its database.
type Service struct {
	// DB is nil when the process runs on in-memory repositories.
	DB      Pinger
	Env     string
	Timeout time.Duration
}

func NewService(db Pinger, env string) *Service {
	return &Service{DB: db, Env: env, Timeout: defaultTimeout}
}

type Status struct {
	OK       bool   `json:"ok"`
	Env      string `json:"env,omitempty"`
	Database string `json:"database"`
}

func (s *Service) Check(ctx context.Context) Status {
	st := Status{OK: true, Env: s.Env, Database: "memory"}
	if s.DB == nil {
		return st
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		telemetry.Warn("health.database_unreachable", map[string]any{"error": err})
		st.OK = false
		st.Database = "unreachable"
		return st
	}
	st.Database = "ok"
	return st
}

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
}

func (h *Handler) health(c *gin.Context) {
	st := h.Svc.Check(c.Request.Context())
	status := http.StatusOK
	if !st.OK {
		status = http.StatusServiceUnavailable
	}
	respond.JSON(c, status, st)
}
