package respond

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

type bindTarget struct {
	CategoryID string   `json:"categoryId" binding:"required"`
	QuoteIDs   []string `json:"quoteIds" binding:"required,min=2"`
}

func TestBindErrorListsFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", func(c *gin.Context) {
		var req bindTarget
		if err := c.ShouldBindJSON(&req); err != nil {
			BindError(c, "VALIDATION_ERROR", "invalid request", err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	resp := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", strings.NewReader(`{"quoteIds":["a"]}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var body struct {
		Error struct {
			Details struct {
				Fields map[string]string `json:"fields"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	fields := body.Error.Details.Fields
	if fields["CategoryID"] != "required" || fields["QuoteIDs"] != "min" {
		t.Fatalf("unexpected fields %v", fields)
	}
}

func TestValidationDetailsIgnoresOtherErrors(t *testing.T) {
	if ValidationDetails(errors.New("unexpected EOF")) != nil {
		t.Fatalf("expected nil details")
	}
}
