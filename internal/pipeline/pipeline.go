// Package pipeline defines pipeline definitions and the static
// registry mapping pipeline types to ordered capability steps.
package pipeline

import "github.com/amine-mosbah/genesis-multimodal-ai/internal/job"

// Capability identifies a single generation function exposed by one
// worker service.
type Capability string

const (
	CapabilityLLM      Capability = "llm"
	CapabilityImage    Capability = "image"
	CapabilitySTT      Capability = "stt"
	CapabilityTTS      Capability = "tts"
	CapabilityCycleGAN Capability = "cyclegan"
)

// StepOutput declares one field a step produces. Field names the key
// in the worker response; the value is stored in the working context
// (and in job outputs unless ContextOnly) under Key().
type StepOutput struct {
	Field       string `yaml:"field"`
	As          string `yaml:"as,omitempty"`
	ContextOnly bool   `yaml:"context_only,omitempty"`
}

// Key returns the context/output key the produced value is stored
// under. Defaults to the response field name.
func (o StepOutput) Key() string {
	if o.As != "" {
		return o.As
	}
	return o.Field
}

// Step is one capability invocation inside a pipeline. Inputs maps
// payload field names to working-context field names, so the
// data-threading contract is declared rather than inferred from the
// pipeline type.
type Step struct {
	Capability Capability        `yaml:"capability"`
	Inputs     map[string]string `yaml:"inputs"`

	// Template, when set, replaces the "text" payload field with the
	// template expanded against the working context ({field} syntax).
	Template string `yaml:"template,omitempty"`

	// RequiresOption skips the step unless the named job option is
	// set and non-empty.
	RequiresOption string `yaml:"requires_option,omitempty"`

	// Optional steps tolerate worker failure: the step result is
	// discarded and execution continues with the next step.
	Optional bool `yaml:"optional,omitempty"`

	Outputs []StepOutput `yaml:"outputs"`
}

// Definition is one registry entry: a named, ordered composition of
// capability steps. Immutable after registry construction.
type Definition struct {
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// jobInputFields are the context fields seeded from job inputs.
var jobInputFields = map[string]bool{
	job.FieldText:     true,
	job.FieldImageURL: true,
	job.FieldAudioURL: true,
}

// RequiredInputs returns the job input fields that must be non-empty
// at creation time: every field a mandatory step consumes that no
// earlier step produces.
func (d Definition) RequiredInputs() []string {
	produced := map[string]bool{}
	var required []string
	seen := map[string]bool{}

	for _, step := range d.Steps {
		mandatory := !step.Optional && step.RequiresOption == ""
		if mandatory {
			for _, ctxField := range step.Inputs {
				if jobInputFields[ctxField] && !produced[ctxField] && !seen[ctxField] {
					required = append(required, ctxField)
					seen[ctxField] = true
				}
			}
		}
		// Only mandatory steps are guaranteed to run, so only their
		// outputs satisfy later consumers.
		if mandatory {
			for _, out := range step.Outputs {
				produced[out.Key()] = true
			}
		}
	}
	return required
}

// Defaults returns the built-in pipeline definitions.
func Defaults() []Definition {
	return []Definition{
		{
			Type:        "text_to_text",
			Description: "Generate text from text input",
			Steps: []Step{
				{
					Capability: CapabilityLLM,
					Inputs:     map[string]string{"text": "text"},
					Outputs:    []StepOutput{{Field: "text"}},
				},
			},
		},
		{
			Type:        "text_to_image",
			Description: "Generate image from text prompt",
			Steps: []Step{
				{
					Capability:     CapabilityLLM,
					Inputs:         map[string]string{"text": "text"},
					Template:       "Rewrite this prompt in a {style} style: {text}",
					RequiresOption: "style",
					Optional:       true,
					Outputs:        []StepOutput{{Field: "text", ContextOnly: true}},
				},
				{
					Capability: CapabilityImage,
					Inputs:     map[string]string{"prompt": "text"},
					Outputs:    []StepOutput{{Field: "image_url"}},
				},
			},
		},
		{
			Type:        "text_to_speech",
			Description: "Generate speech audio from text",
			Steps: []Step{
				{
					Capability: CapabilityTTS,
					Inputs:     map[string]string{"text": "text"},
					Outputs:    []StepOutput{{Field: "audio_url"}},
				},
			},
		},
		{
			Type:        "speech_to_text",
			Description: "Transcribe speech audio to text",
			Steps: []Step{
				{
					Capability: CapabilitySTT,
					Inputs:     map[string]string{"audio_url": "audio_url"},
					Outputs:    []StepOutput{{Field: "text"}},
				},
			},
		},
		{
			Type:        "speech_to_image",
			Description: "Generate image from speech (transcribe, enhance, image)",
			Steps: []Step{
				{
					Capability: CapabilitySTT,
					Inputs:     map[string]string{"audio_url": "audio_url"},
					Outputs:    []StepOutput{{Field: "text"}},
				},
				{
					Capability: CapabilityLLM,
					Inputs:     map[string]string{"text": "text"},
					Template:   "Transform this transcription into a clear image generation prompt: {text}",
					Optional:   true,
					// The transcript stays in job outputs; the enhanced
					// prompt only feeds the next step.
					Outputs: []StepOutput{{Field: "text", ContextOnly: true}},
				},
				{
					Capability: CapabilityImage,
					Inputs:     map[string]string{"prompt": "text"},
					Outputs:    []StepOutput{{Field: "image_url"}},
				},
			},
		},
		{
			Type:        "image_to_image",
			Description: "Transform image style (CycleGAN)",
			Steps: []Step{
				{
					Capability: CapabilityCycleGAN,
					Inputs:     map[string]string{"image_url": "image_url"},
					Outputs:    []StepOutput{{Field: "image_url"}},
				},
			},
		},
	}
}
