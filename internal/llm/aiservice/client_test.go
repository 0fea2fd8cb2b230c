package aiservice

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recruit-analysis/internal/llm"
)

func TestAnalyzeSendsTextAndJobID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ai/analyze-cv" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("jobId"); got != "job 9" {
			t.Errorf("unexpected jobId %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "Jane Doe\nGo" {
			t.Errorf("unexpected body %q", string(body))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"firstName":"Jane","lastName":"Doe","skills":["Go"],"score":86,"yearsOfExperience":5}`))
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL + "/")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	res, err := client.Analyze(context.Background(), llm.AnalyzeInput{DocumentText: "Jane Doe\nGo", TargetID: "job 9"})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if res.Score != 86 || res.YearsOfExperience != 5 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAnalyzeServerErrorIsBadResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _ := NewClient(srv.URL)
	_, err := client.Analyze(context.Background(), llm.AnalyzeInput{DocumentText: "x", TargetID: "t"})
	if !errors.Is(err, llm.ErrBadResponse) {
		t.Fatalf("expected ErrBadResponse, got %v", err)
	}
}

func TestAnalyzeUnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	client, _ := NewClient(addr)
	_, err := client.Analyze(context.Background(), llm.AnalyzeInput{DocumentText: "x", TargetID: "t"})
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestAnalyzeTimeoutAtClientBoundary(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	base, _ := NewClient(srv.URL)
	client := llm.WithTimeout(base, 20*time.Millisecond)
	_, err := client.Analyze(context.Background(), llm.AnalyzeInput{DocumentText: "x", TargetID: "t"})
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewClientRequiresURL(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty url")
	}
}
