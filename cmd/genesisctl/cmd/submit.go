package cmd

import (
	"fmt"
	"strings"

	"github.com/amine-mosbah/genesis-multimodal-ai/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	submitPipeline string
	submitText     string
	submitImageURL string
	submitAudioURL string
	submitOptions  []string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a new generation job",
	Long: `Submit a generation job to the gateway. The job is queued and
processed asynchronously; poll it with "genesisctl status <job-id>".

Options are passed through to the workers verbatim, e.g.:
  genesisctl submit --pipeline text_to_image --text "a red fox" --option style=cinematic --option quality=high`,
	Run: func(cmd *cobra.Command, args []string) {
		if submitPipeline == "" {
			cmd.Println("--pipeline is required")
			return
		}

		options, err := parseOptions(submitOptions)
		if err != nil {
			cmd.Printf("Invalid option: %v\n", err)
			return
		}

		req := api.CreateJobRequest{
			Pipeline: submitPipeline,
			Inputs: api.JobInputs{
				Text:     submitText,
				ImageURL: submitImageURL,
				AudioURL: submitAudioURL,
			},
			Options: options,
		}

		client := NewGatewayClient(viper.GetString("url"))
		job, err := client.SubmitJob(req)
		if err != nil {
			cmd.Printf("Failed to submit job: %v\n", err)
			return
		}

		cmd.Printf("Job submitted: %s\n", job.JobID)
		cmd.Printf("Pipeline:      %s\n", job.Pipeline)
		cmd.Printf("Status:        %s\n", job.Status)
		cmd.Printf("\nTrack it with: genesisctl status %s\n", job.JobID)
	},
}

// parseOptions turns repeated --option key=value flags into a map.
func parseOptions(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	options := make(map[string]any, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", kv)
		}
		options[key] = value
	}
	return options, nil
}

func init() {
	submitCmd.Flags().StringVarP(&submitPipeline, "pipeline", "p", "", "Pipeline type (e.g. text_to_image)")
	submitCmd.Flags().StringVar(&submitText, "text", "", "Text input / prompt")
	submitCmd.Flags().StringVar(&submitImageURL, "image-url", "", "Image input URL")
	submitCmd.Flags().StringVar(&submitAudioURL, "audio-url", "", "Audio input URL")
	submitCmd.Flags().StringArrayVarP(&submitOptions, "option", "o", nil, "Generation option as key=value (repeatable)")

	rootCmd.AddCommand(submitCmd)
}
