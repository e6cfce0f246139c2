package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(ctx context.Context) error { return f.err }

func TestCheck(t *testing.T) {
	cases := []struct {
		name   string
		db     Pinger
		ok     bool
		status string
	}{
		{"memory", nil, true, "memory"},
		{"reachable", fakePinger{}, true, "ok"},
		{"unreachable", fakePinger{err: errors.New("connection refused")}, false, "unreachable"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st := NewService(tc.db, "test").Check(context.Background())
			if st.OK != tc.ok || st.Database != tc.status {
				t.Fatalf("unexpected status %+v", st)
			}
		})
	}
}

func TestHandlerReturns503WhenDatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(NewService(fakePinger{err: errors.New("down")}, "test")).RegisterRoutes(r.Group("/api/v1"))

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if resp.Code != http.StatusServiceUnavailable || !strings.Contains(resp.Body.String(), `"unreachable"`) {
		t.Fatalf("got %d %s", resp.Code, resp.Body.String())
	}
}
