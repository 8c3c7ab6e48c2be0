package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dgallion1/layoutprobe/internal/config"
	"github.com/dgallion1/layoutprobe/internal/docintel"
	"github.com/dgallion1/layoutprobe/internal/harness"
	"github.com/dgallion1/layoutprobe/internal/results"
)

const testAPIKey = "test-token"

func testServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Config{
		Endpoint:       "https://example.cognitiveservices.azure.com",
		Key:            "k",
		APIKey:         testAPIKey,
		ModelID:        "prebuilt-layout",
		APIVersion:     "2024-11-30",
		OutputFormat:   "default",
		ResultsDir:     t.TempDir(),
		PollInterval:   time.Second,
		AnalyzeTimeout: time.Minute,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := docintel.NewClient(cfg.Endpoint, cfg.Key, cfg.APIVersion, cfg.PollInterval)
	t.Cleanup(client.Close)
	// The runner is never started: submitted jobs stay queued, which is
	// all these handler tests need.
	runner := harness.NewRunner(cfg, client, results.NewSink(cfg.ResultsDir), log)
	return NewServer(runner, log, cfg)
}

func uploadBody(t *testing.T, filename, format string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatal(err)
	}
	if format != "" {
		mw.WriteField("format", format)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHealthIsPublic(t *testing.T) {
	s := testServer(t, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	s := testServer(t, nil)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + testAPIKey, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/stats/analyze", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			s.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAnalyzeRejectsUnsupportedExtension(t *testing.T) {
	s := testServer(t, nil)
	body, contentType := uploadBody(t, "data.csv", "", []byte("a,b\n1,2\n"))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
}

func TestAnalyzeRejectsUnknownFormat(t *testing.T) {
	s := testServer(t, nil)
	body, contentType := uploadBody(t, "doc.pdf", "yaml", []byte("%PDF-1.7\n"))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body)
	}
}

func TestAnalyzeRejectsOversizedUpload(t *testing.T) {
	s := testServer(t, func(cfg *config.Config) {
		cfg.MaxUploadBytes = 16
	})
	body, contentType := uploadBody(t, "big.pdf", "", bytes.Repeat([]byte("x"), 64))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d: %s", rec.Code, rec.Body)
	}
}

func TestAnalyzeAcceptedAndStatus(t *testing.T) {
	s := testServer(t, nil)
	body, contentType := uploadBody(t, "notes.html", "markdown", []byte("<html><body>hi</body></html>"))

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body)
	}

	var resp struct {
		JobID   string `json:"job_id"`
		Status  string `json:"status"`
		PollURL string `json:"poll_url"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.JobID == "" {
		t.Fatal("expected a job_id")
	}
	if resp.Status != string(harness.StatusQueued) {
		t.Errorf("expected queued status, got %q", resp.Status)
	}
	if !strings.Contains(resp.PollURL, resp.JobID) {
		t.Errorf("poll_url %q does not reference job %q", resp.PollURL, resp.JobID)
	}

	statusReq := httptest.NewRequest(http.MethodGet, resp.PollURL, nil)
	statusReq.Header.Set("Authorization", "Bearer "+testAPIKey)
	statusRec := httptest.NewRecorder()
	s.ServeHTTP(statusRec, statusReq)

	if statusRec.Code != http.StatusOK {
		t.Fatalf("expected 200 from status, got %d", statusRec.Code)
	}
	var snap harness.JobSnapshot
	if err := json.NewDecoder(statusRec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.ID != resp.JobID {
		t.Errorf("snapshot job %q, want %q", snap.ID, resp.JobID)
	}
	if snap.RequestedFormat != "markdown" {
		t.Errorf("requested format %q, want markdown", snap.RequestedFormat)
	}
}

func TestAnalyzeStatusUnknownJob(t *testing.T) {
	s := testServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/analyze/no-such-job/status", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
