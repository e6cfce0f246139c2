package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"offertanalys/internal/shared/telemetry"
)

const retryBaseDelay = 300 * time.Millisecond

type retryingCompleter struct {
	base   Completer
	fields map[string]any
	delay  time.Duration
}

// WithRetry retries a transient Complete failure once. fields are attached to the retry log line.
func WithRetry(base Completer, fields map[string]any) Completer {
	if base == nil {
		return nil
	}
	return retryingCompleter{base: base, fields: fields, delay: retryBaseDelay}
}

func (r retryingCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	out, err := r.base.Complete(ctx, prompt, maxTokens)
	if err == nil || !ShouldRetry(err) {
		return out, err
	}

	logFields := map[string]any{"attempt": 1, "error": err.Error()}
	for k, v := range r.fields {
		logFields[k] = v
	}
	telemetry.Warn("llm.retry", logFields)

	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	return r.base.Complete(ctx, prompt, maxTokens)
}

// ShouldRetry reports whether err looks like a transient provider or network failure.
func ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotImplemented) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "http status 5") || strings.Contains(msg, "http status 429") || strings.Contains(msg, "server_error") {
		return true
	}
	if strings.Contains(msg, "timeout") && (strings.Contains(msg, "openai") || strings.Contains(msg, "llm") || strings.Contains(msg, "client.timeout")) {
		return true
	}
	return strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection closed") ||
		strings.Contains(msg, "broken pipe") ||
		strings.Contains(msg, "tls handshake timeout") ||
		strings.Contains(msg, "eof")
}
