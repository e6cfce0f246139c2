package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"offertanalys/internal/shared/config"
)

type stubModel struct{ reply string }

func (s stubModel) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return s.reply, nil
}

func (s stubModel) ReadDocument(ctx context.Context, data []byte, fileName, prompt string, maxTokens int) (string, error) {
	return "", nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Env:             "test",
		ObjectStoreType: "local",
		LocalStoreDir:   t.TempDir(),
		LLMProvider:     "openai",
		LLMMaxTokens:    4000,
		QuoteTimeoutSec: 30,
	}
}

func TestBuildWiresInMemoryApp(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reply := `{"supplier":{"name":"Ahlsell AB"},"quote_info":{},"terms":{},"items":[{"description":"Radiator","total":1200}],"totals":{}}`
	app, err := Build(context.Background(), testConfig(t), Options{LLM: stubModel{reply: reply}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(func() { _ = app.Close() })

	if app.DB != nil {
		t.Fatalf("expected in-memory repositories without DATABASE_URL")
	}

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/quotes/analyze", strings.NewReader(`{"text":"Offert Ahlsell"}`))
	req.Header.Set("Content-Type", "application/json")
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"total":1200`) {
		t.Fatalf("analyze: %d %s", resp.Code, resp.Body.String())
	}

	for _, path := range []string{"/api/v1/health", "/api/v1/suppliers", "/api/v1/comparisons?categoryId=cat-1"} {
		resp := httptest.NewRecorder()
		app.Router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}

	resp = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/files/process", strings.NewReader(`{"filePath":"uploads/saknas.pdf","fileName":"saknas.pdf"}`))
	req.Header.Set("Content-Type", "application/json")
	app.Router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("files/process: expected 502 for a missing file, got %d", resp.Code)
	}
}

func TestBuildWithoutKeyUsesPlaceholder(t *testing.T) {
	app, err := Build(context.Background(), testConfig(t), Options{SkipRouter: true})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if app.Router != nil {
		t.Fatalf("expected no router")
	}
	if _, err := app.Quotes.NormalizeOne(context.Background(), "text"); err == nil {
		t.Fatalf("expected placeholder model to fail")
	}
}

func TestBuildRequiresDatabaseOutsideDev(t *testing.T) {
	cfg := testConfig(t)
	cfg.Env = "production"
	if _, err := Build(context.Background(), cfg, Options{}); err == nil {
		t.Fatalf("expected error without DATABASE_URL in production")
	}
}

func TestBuildStoreRequiresBucket(t *testing.T) {
	for _, storeType := range []string{"s3", "gcs"} {
		cfg := testConfig(t)
		cfg.ObjectStoreType = storeType
		if _, err := buildStore(context.Background(), cfg); err == nil {
			t.Fatalf("%s: expected error without bucket", storeType)
		}
	}
}
