package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(quotesAnalyzedTotal.WithLabelValues("failed"))
	IncQuoteFailed()
	after := testutil.ToFloat64(quotesAnalyzedTotal.WithLabelValues("failed"))
	if after != before+1 {
		t.Fatalf("expected failed counter to increase by 1, got %v -> %v", before, after)
	}

	before = testutil.ToFloat64(extractionTotal.WithLabelValues("pdftotext", "usable"))
	IncExtraction("pdftotext", "usable")
	if got := testutil.ToFloat64(extractionTotal.WithLabelValues("pdftotext", "usable")); got != before+1 {
		t.Fatalf("expected extraction counter to increase, got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	IncComparison("success")

	router := gin.New()
	router.GET("/metrics", Handler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "offertanalys_comparisons_total") {
		t.Fatalf("expected comparisons counter in output")
	}
}
