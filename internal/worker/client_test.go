package worker

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestInvokeSuccess(t *testing.T) {
	var gotPath string
	var gotBody string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "generated", "worker": "llm-worker"}`))
	}))
	defer srv.Close()

	c := NewClient(map[string]string{"llm": srv.URL}, 5*time.Second)

	result, err := c.Invoke(context.Background(), "llm", map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/generate" {
		t.Errorf("got path %q want /generate", gotPath)
	}
	if !strings.Contains(gotBody, `"text":"hello"`) {
		t.Errorf("payload not sent: %q", gotBody)
	}
	if result["text"] != "generated" {
		t.Errorf("got result %v", result)
	}
}

func TestInvokeTrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate" {
			t.Errorf("got path %q", r.URL.Path)
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(map[string]string{"llm": srv.URL + "/"}, 5*time.Second)
	if _, err := c.Invoke(context.Background(), "llm", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInvokeFailures(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		inMessage string
	}{
		{
			name: "non-2xx response",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "model unavailable", http.StatusBadGateway)
			},
			inMessage: "returned status 502",
		},
		{
			name: "malformed response body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
			inMessage: "failed to parse response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(map[string]string{"image": srv.URL}, 5*time.Second)

			_, err := c.Invoke(context.Background(), "image", map[string]any{"prompt": "x"})
			if err == nil {
				t.Fatal("expected error")
			}

			var failure *Failure
			if !errors.As(err, &failure) {
				t.Fatalf("expected *Failure, got %T", err)
			}
			if failure.Capability != "image" {
				t.Errorf("got capability %q", failure.Capability)
			}
			if !strings.Contains(failure.Message, tt.inMessage) {
				t.Errorf("got message %q want substring %q", failure.Message, tt.inMessage)
			}
		})
	}
}

func TestInvokeTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := NewClient(map[string]string{"stt": srv.URL}, 20*time.Millisecond)

	_, err := c.Invoke(context.Background(), "stt", nil)
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
}

func TestInvokeUnknownCapability(t *testing.T) {
	c := NewClient(map[string]string{}, time.Second)

	_, err := c.Invoke(context.Background(), "video", nil)
	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if failure.Message != "no endpoint configured" {
		t.Errorf("got message %q", failure.Message)
	}
}

func TestHealth(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("got path %q", r.URL.Path)
		}
		w.Write([]byte(`{"status": "healthy", "worker": "tts"}`))
	}))
	defer healthy.Close()

	unhealthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer unhealthy.Close()

	c := NewClient(map[string]string{"tts": healthy.URL, "stt": unhealthy.URL}, time.Second)

	if err := c.Health(context.Background(), "tts"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := c.Health(context.Background(), "stt"); err == nil {
		t.Error("expected error for unhealthy worker")
	}
}
