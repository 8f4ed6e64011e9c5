package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var pipelinesCmd = &cobra.Command{
	Use:   "pipelines",
	Short: "List supported pipeline types",
	Run: func(cmd *cobra.Command, args []string) {
		client := NewGatewayClient(viper.GetString("url"))

		pipelines, err := client.ListPipelines()
		if err != nil {
			cmd.Printf("Failed to list pipelines: %v\n", err)
			return
		}

		for _, p := range pipelines {
			cmd.Printf("%-18s %s\n", p.Type, p.Description)
		}
	},
}

func init() {
	rootCmd.AddCommand(pipelinesCmd)
}
