package object

import (
	"regexp"
	"testing"
	"time"
)

func TestNewUploadPath(t *testing.T) {
	now := time.UnixMilli(1767225600000)
	got := NewUploadPath("Offert Rörab.PDF", now)
	pattern := regexp.MustCompile(`^uploads/1767225600000-[a-z0-9]{6}\.pdf$`)
	if !pattern.MatchString(got) {
		t.Fatalf("unexpected upload path %q", got)
	}
	if NewUploadPath("a.pdf", now) == NewUploadPath("a.pdf", now) {
		t.Fatalf("expected random suffix to differ")
	}
}

func TestCleanKey(t *testing.T) {
	tests := []struct {
		key     string
		want    string
		wantErr bool
	}{
		{key: "uploads/1-abc.pdf", want: "uploads/1-abc.pdf"},
		{key: "uploads//x/../1-abc.pdf", want: "uploads/1-abc.pdf"},
		{key: "uploads\\1.xlsx", want: "uploads/1.xlsx"},
		{key: "../secret", wantErr: true},
		{key: "/etc/passwd", wantErr: true},
		{key: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := CleanKey(tt.key)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("CleanKey(%q) expected error", tt.key)
			}
			continue
		}
		if err != nil {
			t.Fatalf("CleanKey(%q): %v", tt.key, err)
		}
		if got != tt.want {
			t.Fatalf("CleanKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
