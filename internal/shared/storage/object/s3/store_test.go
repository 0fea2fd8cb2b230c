package s3

import (
	"io"
	"strings"
	"testing"
)

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "batch/cv.pdf", want: "batch/cv.pdf"},
		{name: "simple prefix", prefix: "cvs", key: "batch/cv.pdf", want: "cvs/batch/cv.pdf"},
		{name: "prefix trailing slash", prefix: "cvs/", key: "batch/cv.pdf", want: "cvs/batch/cv.pdf"},
		{name: "prefix and key slashes", prefix: "/cvs/", key: "/batch/cv.pdf", want: "cvs/batch/cv.pdf"},
		{name: "nested prefix", prefix: "cvs/sub", key: "batch/cv.pdf", want: "cvs/sub/batch/cv.pdf"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestNormalizePrefix(t *testing.T) {
	if got := normalizePrefix("  /cv-uploads/ "); got != "cv-uploads" {
		t.Fatalf("normalizePrefix = %q", got)
	}
}

func TestCountingReader(t *testing.T) {
	c := &countingReader{r: strings.NewReader("0123456789")}
	if _, err := io.ReadAll(c); err != nil {
		t.Fatalf("read: %v", err)
	}
	if c.n != 10 {
		t.Fatalf("expected 10 bytes counted, got %d", c.n)
	}
}
