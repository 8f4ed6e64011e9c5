package job

import (
	"testing"
	"time"
)

func TestStatusTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusQueued, false},
		{StatusRunning, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("%s.Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestInputsField(t *testing.T) {
	in := Inputs{Text: "hello", ImageURL: "http://example.com/i.png", AudioURL: "http://example.com/a.wav"}

	if got := in.Field(FieldText); got != "hello" {
		t.Errorf("Field(text) = %q", got)
	}
	if got := in.Field(FieldImageURL); got != "http://example.com/i.png" {
		t.Errorf("Field(image_url) = %q", got)
	}
	if got := in.Field(FieldAudioURL); got != "http://example.com/a.wav" {
		t.Errorf("Field(audio_url) = %q", got)
	}
	if got := in.Field("prompt"); got != "" {
		t.Errorf("Field(prompt) = %q, want empty", got)
	}
}

func TestNewDefaults(t *testing.T) {
	j := New("text_to_text", Inputs{Text: "hi"}, nil)

	if j.ID == "" {
		t.Error("no id assigned")
	}
	if j.Status != StatusQueued {
		t.Errorf("status = %q, want queued", j.Status)
	}
	if j.Options == nil || j.Outputs == nil {
		t.Error("options/outputs maps not initialized")
	}
	if j.Metadata.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestCloneSharesNoMutableState(t *testing.T) {
	started := time.Now().UTC()
	j := New("speech_to_image", Inputs{AudioURL: "http://example.com/a.wav"}, Options{"style": "noir"})
	j.Outputs["text"] = "a lighthouse"
	j.Metadata.StartedAt = &started
	j.Metadata.WorkerTrail = []string{"stt"}

	c := j.Clone()

	// Mutations on the clone must not be visible through the original.
	c.Status = StatusCompleted
	c.Options["style"] = "cinematic"
	c.Outputs["image_url"] = "http://img.example.com/1.png"
	c.Metadata.WorkerTrail = append(c.Metadata.WorkerTrail, "image")
	*c.Metadata.StartedAt = started.Add(time.Hour)

	if j.Status != StatusQueued {
		t.Errorf("original status mutated: %q", j.Status)
	}
	if j.Options["style"] != "noir" {
		t.Errorf("original options mutated: %v", j.Options)
	}
	if _, ok := j.Outputs["image_url"]; ok {
		t.Errorf("original outputs mutated: %v", j.Outputs)
	}
	if len(j.Metadata.WorkerTrail) != 1 {
		t.Errorf("original worker trail mutated: %v", j.Metadata.WorkerTrail)
	}
	if !j.Metadata.StartedAt.Equal(started) {
		t.Errorf("original started_at mutated: %v", j.Metadata.StartedAt)
	}

	// And the clone carried the original values over.
	if c.Outputs["text"] != "a lighthouse" {
		t.Errorf("clone missing outputs: %v", c.Outputs)
	}
	if c.ID != j.ID || c.Pipeline != j.Pipeline || c.Inputs != j.Inputs {
		t.Errorf("clone diverged: %+v", c)
	}
}

func TestCloneNilTimestamps(t *testing.T) {
	j := New("text_to_text", Inputs{Text: "hi"}, nil)
	c := j.Clone()

	if c.Metadata.StartedAt != nil || c.Metadata.CompletedAt != nil {
		t.Errorf("clone invented timestamps: %+v", c.Metadata)
	}
}
