package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type scriptedCompleter struct {
	errs  []error
	calls int
}

func (s *scriptedCompleter) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return "{}", nil
}

func TestWithRetryRetriesTransientOnce(t *testing.T) {
	base := &scriptedCompleter{errs: []error{fmt.Errorf("openai http status 503: overloaded")}}
	c := WithRetry(base, map[string]any{"quote_id": "q-1"}).(retryingCompleter)
	c.delay = time.Millisecond

	out, err := c.Complete(context.Background(), "p", 10)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "{}" || base.calls != 2 {
		t.Fatalf("expected success on second call, got out=%q calls=%d", out, base.calls)
	}
}

func TestWithRetryDoesNotRetryPermanentErrors(t *testing.T) {
	permanent := errors.New("openai http status 400: bad request")
	base := &scriptedCompleter{errs: []error{permanent}}
	c := WithRetry(base, nil)

	if _, err := c.Complete(context.Background(), "p", 10); !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if base.calls != 1 {
		t.Fatalf("expected single call, got %d", base.calls)
	}
}

func TestShouldRetry(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: context.DeadlineExceeded, want: true},
		{err: fmt.Errorf("openai request timeout: %w", errors.New("Client.Timeout exceeded")), want: true},
		{err: errors.New("read: connection reset by peer"), want: true},
		{err: errors.New("openai http status 429: rate limit"), want: true},
		{err: ErrNotImplemented, want: false},
		{err: errors.New("invalid api key"), want: false},
	}
	for _, tc := range cases {
		if got := ShouldRetry(tc.err); got != tc.want {
			t.Fatalf("ShouldRetry(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
