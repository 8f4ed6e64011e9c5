package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	listLimit  int
	listOffset int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List jobs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewGatewayClient(viper.GetString("url"))

		jobs, err := client.ListJobs(listLimit, listOffset)
		if err != nil {
			cmd.Printf("Failed to list jobs: %v\n", err)
			return
		}

		if len(jobs) == 0 {
			cmd.Println("No jobs found")
			return
		}

		for _, job := range jobs {
			cmd.Printf("%s  %-16s %-10s %s\n",
				job.JobID,
				job.Pipeline,
				colorizeStatus(job.Status),
				job.Metadata.CreatedAt.Format("2006-01-02 15:04:05"),
			)
		}
	},
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 20, "Maximum number of jobs to return")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "Number of jobs to skip")

	rootCmd.AddCommand(listCmd)
}
