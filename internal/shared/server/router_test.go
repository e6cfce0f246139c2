package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"offertanalys/internal/shared/config"
)

type pingHandler struct{}

func (pingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
}

func TestNewRouterRegistersRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterDeps{
		Config:   config.Config{Env: "test"},
		Handlers: []RouteRegistrar{pingHandler{}, nil},
	})

	cases := []struct {
		path string
		code int
		body string
	}{
		{"/api/v1/ping", http.StatusOK, "pong"},
		{"/metrics", http.StatusOK, "offertanalys_"},
		{"/api/v1/missing", http.StatusNotFound, `"not_found"`},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if resp.Code != tc.code || !strings.Contains(resp.Body.String(), tc.body) {
			t.Fatalf("%s: got %d %s", tc.path, resp.Code, resp.Body.String())
		}
		if resp.Header().Get("X-Request-Id") == "" {
			t.Fatalf("%s: missing request id", tc.path)
		}
	}
}

func TestAddr(t *testing.T) {
	for in, want := range map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"} {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
