package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestSupportsTemperature(t *testing.T) {
	cases := map[string]bool{
		"gpt-4o":     true,
		"gpt-4.1":    true,
		"gpt-5-mini": false,
		"o3":         false,
		"o4-mini":    false,
		"omni":       true,
	}
	for model, want := range cases {
		if got := supportsTemperature(model); got != want {
			t.Fatalf("supportsTemperature(%q) = %v, want %v", model, got, want)
		}
	}
}

func TestCompleteSendsJSONModeAndTokenLimit(t *testing.T) {
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	var lastBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&lastBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" {\"summary\":\"ok\"} "},"finish_reason":"stop"}],"usage":{"prompt_tokens":10,"completion_tokens":4}}`))
	}))
	defer server.Close()
	apiURL = server.URL

	client, err := NewClient("test-key", "gpt-4o")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Complete(context.Background(), "Analysera offerten", 32000)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"summary":"ok"}` {
		t.Fatalf("unexpected content %q", out)
	}
	if lastBody["max_completion_tokens"] != float64(32000) {
		t.Fatalf("expected max_completion_tokens 32000, got %v", lastBody["max_completion_tokens"])
	}
	if _, ok := lastBody["temperature"]; !ok {
		t.Fatalf("expected temperature for gpt-4o")
	}
	format, _ := lastBody["response_format"].(map[string]any)
	if format["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", lastBody["response_format"])
	}
}

func TestCompleteOmitsTemperatureForGPT5(t *testing.T) {
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	var lastBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&lastBody)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	}))
	defer server.Close()
	apiURL = server.URL

	client, err := NewClient("test-key", "gpt-5-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), "p", 100); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok := lastBody["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted for gpt-5")
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	oldURL := apiURL
	t.Cleanup(func() { apiURL = oldURL })

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	defer server.Close()
	apiURL = server.URL

	client, _ := NewClient("test-key", "gpt-4o")
	_, err := client.Complete(context.Background(), "p", 100)
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "Rate limit reached") {
		t.Fatalf("expected status and message in error, got %v", err)
	}
}

func TestReadDocumentSendsInlineFile(t *testing.T) {
	oldURL := responsesURL
	t.Cleanup(func() { responsesURL = oldURL })

	var lastBody responsesRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&lastBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"status":"completed","output":[{"type":"reasoning","content":[]},{"type":"message","content":[{"type":"output_text","text":"Offert 1234"},{"type":"output_text","text":"Summa 10 000"}]}]}`))
	}))
	defer server.Close()
	responsesURL = server.URL

	client, _ := NewClient("test-key", "gpt-4o")
	pdf := []byte("%PDF-1.4 scanned")
	out, err := client.ReadDocument(context.Background(), pdf, "uploads/offert.pdf", "Läs dokumentet", 8000)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if out != "Offert 1234\nSumma 10 000" {
		t.Fatalf("unexpected output %q", out)
	}
	if len(lastBody.Input) != 1 || len(lastBody.Input[0].Content) != 2 {
		t.Fatalf("unexpected input shape %+v", lastBody.Input)
	}
	file := lastBody.Input[0].Content[0]
	if file.Type != "input_file" || file.Filename != "offert.pdf" {
		t.Fatalf("unexpected file part %+v", file)
	}
	want := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString(pdf)
	if file.FileData != want {
		t.Fatalf("unexpected file data prefix %q", file.FileData[:40])
	}
	if lastBody.MaxOutputTokens != 8000 {
		t.Fatalf("expected max_output_tokens 8000, got %d", lastBody.MaxOutputTokens)
	}
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "gpt-4o"); err == nil {
		t.Fatalf("expected error without API key")
	}
	if _, err := NewClient("k", " "); err == nil {
		t.Fatalf("expected error without model")
	}
}
