package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"offertanalys/internal/shared/telemetry"
)

func TestLoggingIncludesRequiredFields(t *testing.T) {
	gin.SetMode(gin.TestMode)

	core, logs := observer.New(zapcore.InfoLevel)
	prev := telemetry.L()
	telemetry.SetLogger(zap.New(core))
	t.Cleanup(func() { telemetry.SetLogger(prev) })

	router := gin.New()
	router.Use(RequestID(), Logging())
	router.POST("/quotes/:id/status", func(c *gin.Context) {
		c.Set("quoteId", c.Param("id"))
		c.Set("categoryId", "cat-1")
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	req := httptest.NewRequest(http.MethodPost, "/quotes/q-1/status", nil)
	req.Header.Set("X-Request-Id", "req-42")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	entries := logs.FilterMessage("request.complete").All()
	if len(entries) != 1 {
		t.Fatalf("expected one request log, got %d", len(entries))
	}
	payload := entries[0].ContextMap()

	required := []string{"request_id", "method", "path", "route", "status", "duration_ms", "quote_id", "category_id"}
	for _, key := range required {
		if _, ok := payload[key]; !ok {
			t.Fatalf("missing log field: %s", key)
		}
	}
	if payload["request_id"] != "req-42" {
		t.Fatalf("unexpected request_id: %v", payload["request_id"])
	}
	if payload["quote_id"] != "q-1" {
		t.Fatalf("unexpected quote_id: %v", payload["quote_id"])
	}
	if payload["route"] != "/quotes/:id/status" {
		t.Fatalf("unexpected route: %v", payload["route"])
	}
}

func TestToSnake(t *testing.T) {
	if got := toSnake("batchSize"); got != "batch_size" {
		t.Fatalf("toSnake(batchSize) = %q", got)
	}
}
