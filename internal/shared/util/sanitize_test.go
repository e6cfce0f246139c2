package util

import "testing"

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "offert.pdf", want: "offert.pdf"},
		{name: "nested", in: "a/b\\c.xlsx", want: "a_b_c.xlsx"},
		{name: "traversal", in: "../etc/passwd", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizeFileName(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFileExt(t *testing.T) {
	if got := FileExt("Offert VVS.PDF"); got != "pdf" {
		t.Fatalf("FileExt = %q", got)
	}
	if got := FileExt("noext"); got != "" {
		t.Fatalf("FileExt(noext) = %q", got)
	}
}

func TestTruncateKeepsRunes(t *testing.T) {
	if got := Truncate("åäöåäö", 3); got != "åäö" {
		t.Fatalf("Truncate = %q", got)
	}
	if got := Truncate("kort", 10); got != "kort" {
		t.Fatalf("Truncate short = %q", got)
	}
}
