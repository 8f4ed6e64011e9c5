package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amine-mosbah/genesis-multimodal-ai/pkg/api"

	"github.com/spf13/viper"
)

func resetViper() {
	viper.Reset()
	viper.SetEnvPrefix("GENESIS")
	viper.AutomaticEnv()
}

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("command failed: %v", err)
	}
	return out.String()
}

func TestStatusCommand_CompletedJob(t *testing.T) {
	resetViper()

	started := time.Now().Add(-2 * time.Minute)
	completed := time.Now().Add(-1 * time.Minute)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/jobs/job-123") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		resp := api.JobRecord{
			JobID:    "job-123",
			Pipeline: "speech_to_image",
			Status:   "completed",
			Outputs: map[string]string{
				"text":      "a lighthouse at dawn",
				"image_url": "http://img.example.com/1.png",
			},
			Metadata: api.JobMetadata{
				CreatedAt:   time.Now().Add(-3 * time.Minute),
				StartedAt:   &started,
				CompletedAt: &completed,
				WorkerTrail: []string{"stt-worker", "llm-worker", "image-worker"},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	output := runCommand(t, "status", "job-123")

	if !strings.Contains(output, "job-123") {
		t.Errorf("expected job id in output, got: %s", output)
	}
	if !strings.Contains(output, "speech_to_image") {
		t.Errorf("expected pipeline in output, got: %s", output)
	}
	if !strings.Contains(output, "completed") {
		t.Errorf("expected status in output, got: %s", output)
	}
	if !strings.Contains(output, "http://img.example.com/1.png") {
		t.Errorf("expected image output, got: %s", output)
	}
	if !strings.Contains(output, "a lighthouse at dawn") {
		t.Errorf("expected transcript output, got: %s", output)
	}
	if !strings.Contains(output, "stt-worker") {
		t.Errorf("expected worker trail, got: %s", output)
	}
}

func TestStatusCommand_FailedJob(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := api.JobRecord{
			JobID:    "job-456",
			Pipeline: "text_to_image",
			Status:   "failed",
			Outputs:  map[string]string{},
			Metadata: api.JobMetadata{
				CreatedAt:    time.Now().Add(-time.Minute),
				ErrorMessage: "worker image: returned status 502",
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	output := runCommand(t, "status", "job-456")

	if !strings.Contains(output, "failed") {
		t.Errorf("expected failed status, got: %s", output)
	}
	if !strings.Contains(output, "worker image: returned status 502") {
		t.Errorf("expected error message, got: %s", output)
	}
}

func TestStatusCommand_NotFound(t *testing.T) {
	resetViper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Job not found", Code: "404"})
	}))
	defer server.Close()

	viper.Set("url", server.URL)

	output := runCommand(t, "status", "missing-id")

	if !strings.Contains(output, "Failed to get job") {
		t.Errorf("expected failure message, got: %s", output)
	}
}

func TestRelativeTime(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"seconds", time.Now().Add(-30 * time.Second), "30s"},
		{"minutes", time.Now().Add(-5 * time.Minute), "5m"},
		{"hours", time.Now().Add(-3 * time.Hour), "3h"},
		{"one day", time.Now().Add(-25 * time.Hour), "1 day"},
		{"days", time.Now().Add(-72 * time.Hour), "3 days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := relativeTime(tt.t); got != tt.want {
				t.Errorf("got %q want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{500 * time.Millisecond, "500ms"},
		{2500 * time.Millisecond, "2.5s"},
		{90 * time.Second, "1m 30s"},
		{90 * time.Minute, "1h 30m"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
