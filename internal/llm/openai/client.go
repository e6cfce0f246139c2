package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"offertanalys/internal/llm"
	"offertanalys/internal/shared/telemetry"
)

var (
	apiURL       = "https://api.openai.com/v1/chat/completions"
	responsesURL = "https://api.openai.com/v1/responses"
)

// Client talks to OpenAI over plain HTTP. Complete uses chat completions in
// JSON mode; ReadDocument uses the responses API with an inline file part.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := 300 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  strings.TrimSpace(model),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model               string          `json:"model"`
	Messages            []chatMessage   `json:"messages"`
	Temperature         *float32        `json:"temperature,omitempty"`
	MaxCompletionTokens int             `json:"max_completion_tokens,omitempty"`
	ResponseFormat      *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	InputTokens      int `json:"input_tokens"`
	OutputTokens     int `json:"output_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *usage    `json:"usage,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

// Complete sends prompt as a single user message and returns the reply text.
func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := chatRequest{
		Model:               c.model,
		Messages:            []chatMessage{{Role: "user", Content: prompt}},
		MaxCompletionTokens: maxTokens,
		ResponseFormat:      &responseFormat{Type: "json_object"},
	}
	if supportsTemperature(c.model) {
		temp := float32(0)
		reqBody.Temperature = &temp
	}

	var parsed chatResponse
	if err := c.post(ctx, apiURL, reqBody, &parsed, func() *apiError { return parsed.Error }); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response missing choices")
	}
	logUsage("chat", c.model, parsed.Choices[0].FinishReason, parsed.Usage)

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("openai response empty content")
	}
	return content, nil
}

type responsesRequest struct {
	Model           string          `json:"model"`
	Input           []responseInput `json:"input"`
	MaxOutputTokens int             `json:"max_output_tokens,omitempty"`
}

type responseInput struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	Filename string `json:"filename,omitempty"`
	FileData string `json:"file_data,omitempty"`
}

type responsesResponse struct {
	Status string `json:"status"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
	Usage *usage    `json:"usage,omitempty"`
	Error *apiError `json:"error,omitempty"`
}

// ReadDocument uploads the document inline and returns the model's text output.
func (c *Client) ReadDocument(ctx context.Context, data []byte, fileName, prompt string, maxTokens int) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty document")
	}
	dataURL := "data:" + mimeTypeFor(fileName) + ";base64," + base64.StdEncoding.EncodeToString(data)
	reqBody := responsesRequest{
		Model: c.model,
		Input: []responseInput{{
			Role: "user",
			Content: []contentPart{
				{Type: "input_file", Filename: filepath.Base(fileName), FileData: dataURL},
				{Type: "input_text", Text: prompt},
			},
		}},
		MaxOutputTokens: maxTokens,
	}

	var parsed responsesResponse
	if err := c.post(ctx, responsesURL, reqBody, &parsed, func() *apiError { return parsed.Error }); err != nil {
		return "", err
	}
	logUsage("responses", c.model, parsed.Status, parsed.Usage)

	var b strings.Builder
	for _, out := range parsed.Output {
		for _, part := range out.Content {
			if part.Type != "output_text" {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", fmt.Errorf("openai response empty output")
	}
	return text, nil
}

func (c *Client) post(ctx context.Context, url string, body any, out any, errField func() *apiError) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return fmt.Errorf("openai request timeout: %w", err)
		}
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("openai http status %d: %s", resp.StatusCode, llm.Snippet(strings.TrimSpace(string(raw))))
		}
		return fmt.Errorf("openai response parse: %w", err)
	}
	if apiErr := errField(); apiErr != nil {
		return fmt.Errorf("openai http status %d: %s (%s)", resp.StatusCode, apiErr.Message, apiErr.Type)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("openai http status %d: %s", resp.StatusCode, llm.Snippet(strings.TrimSpace(string(raw))))
	}
	return nil
}

func logUsage(api, model, finish string, u *usage) {
	fields := map[string]any{
		"api":    api,
		"model":  model,
		"finish": finish,
	}
	if u != nil {
		fields["prompt_tokens"] = u.PromptTokens + u.InputTokens
		fields["completion_tokens"] = u.CompletionTokens + u.OutputTokens
	}
	telemetry.Info("llm.response", fields)
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

// Reasoning models reject an explicit temperature.
func supportsTemperature(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	if isGPT5(m) {
		return false
	}
	return !(len(m) > 1 && m[0] == 'o' && m[1] >= '0' && m[1] <= '9')
}

func mimeTypeFor(fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == ".pdf" {
		return "application/pdf"
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

var (
	_ llm.Completer      = (*Client)(nil)
	_ llm.DocumentReader = (*Client)(nil)
)
