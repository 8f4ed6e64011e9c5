package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "genesisctl",
	Short: "genesisctl is a command line tool for the genesis multimodal gateway",
	Long: `genesisctl is the command-line interface for the genesis multimodal AI gateway.

The gateway accepts generation jobs (text, image, speech and
compositions of them), dispatches each job through its pipeline of
capability workers, and tracks asynchronous completion. Jobs are
processed in the background; poll with "genesisctl status" until the
job reaches a terminal state.

Common workflows:

  Submit a text-to-image job:
    genesisctl submit --pipeline text_to_image --text "a lighthouse at dawn" --option style=cinematic

  Submit a speech-to-image job:
    genesisctl submit --pipeline speech_to_image --audio-url "https://example.com/clip.wav"

  Check job status and outputs:
    genesisctl status <job-id>

  Browse job history:
    genesisctl list --limit 20

  Discover supported pipelines:
    genesisctl pipelines

Configuration:
  Set the API endpoint via flag, environment variable or config file:
    GENESIS_URL    Gateway endpoint (default: http://localhost:8000)`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".genesisctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".genesisctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "GENESIS_VARNAME"
	viper.SetEnvPrefix("GENESIS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.genesisctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:8000", "Genesis gateway URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
}
