package cmd

import (
	"fmt"
	"time"

	"github.com/amine-mosbah/genesis-multimodal-ai/pkg/api"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statusCmd = &cobra.Command{
	Use:   "status [job_id]",
	Short: "Get status and outputs of a job",
	Long:  `Retrieve detailed status information for a job, including its current state (queued, running, completed, failed), outputs produced so far, the worker trail and timestamps.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewGatewayClient(viper.GetString("url"))

		job, err := client.GetJob(args[0])
		if err != nil {
			cmd.Printf("Failed to get job: %v\n", err)
			return
		}

		printJob(cmd, job)
	},
}

func printJob(cmd *cobra.Command, job *api.JobRecord) {
	icon := statusIcon(job.Status)
	cmd.Printf("%s %sJob Details%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")

	cmd.Printf("%sID:%s        %s\n", colorDim, colorReset, job.JobID)
	cmd.Printf("%sPipeline:%s  %s\n", colorDim, colorReset, job.Pipeline)
	cmd.Printf("%sStatus:%s    %s\n", colorDim, colorReset, colorizeStatus(job.Status))

	if job.Metadata.ErrorMessage != "" {
		cmd.Printf("%sError:%s     %s%s%s\n", colorDim, colorReset, colorRed, job.Metadata.ErrorMessage, colorReset)
	}

	if len(job.Metadata.WorkerTrail) > 0 {
		cmd.Printf("%sWorkers:%s   %v\n", colorDim, colorReset, job.Metadata.WorkerTrail)
	}

	if len(job.Outputs) > 0 {
		cmd.Printf("%sOutputs:%s\n", colorDim, colorReset)
		for _, key := range []string{"text", "image_url", "audio_url"} {
			if v, ok := job.Outputs[key]; ok {
				cmd.Printf("  %s%s:%s %s\n", colorDim, key, colorReset, v)
			}
		}
		for key, v := range job.Outputs {
			if key != "text" && key != "image_url" && key != "audio_url" {
				cmd.Printf("  %s%s:%s %s\n", colorDim, key, colorReset, v)
			}
		}
	}

	cmd.Printf("%sCreated:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(&job.Metadata.CreatedAt))
	cmd.Printf("%sStarted:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(job.Metadata.StartedAt))

	if job.Metadata.StartedAt != nil && job.Metadata.CompletedAt != nil {
		duration := job.Metadata.CompletedAt.Sub(*job.Metadata.StartedAt)
		cmd.Printf("%sFinished:%s  %s %s(%s)%s\n", colorDim, colorReset,
			formatTimeWithRelative(job.Metadata.CompletedAt),
			colorCyan, formatDuration(duration), colorReset)
	} else {
		cmd.Printf("%sFinished:%s  %s\n", colorDim, colorReset, formatTimeWithRelative(job.Metadata.CompletedAt))
	}
}

// ANSI color codes
const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorDim   = "\033[2m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorAmber = "\033[33m"
	colorCyan  = "\033[36m"
)

func statusIcon(status string) string {
	switch status {
	case "completed":
		return colorGreen + "✓" + colorReset
	case "failed":
		return colorRed + "✗" + colorReset
	case "running":
		return colorAmber + "⏳" + colorReset
	case "queued":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeStatus(status string) string {
	icon := statusIcon(status)
	switch status {
	case "completed":
		return icon + " " + colorGreen + status + colorReset
	case "failed":
		return icon + " " + colorRed + status + colorReset
	case "running":
		return icon + " " + colorAmber + status + colorReset
	case "queued":
		return icon + " " + colorCyan + status + colorReset
	default:
		return status
	}
}

func formatTimeWithRelative(t *time.Time) string {
	if t == nil {
		return "-"
	}
	relative := relativeTime(*t)
	return fmt.Sprintf("%s %s(%s ago)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relative, colorReset)
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	} else {
		days := int(duration.Hours() / 24)
		if days == 1 {
			return "1 day"
		}
		return fmt.Sprintf("%d days", days)
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	} else if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	} else if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
