package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/career-mentor-ai/pkg/config"
	_ "github.com/tanpawarit/career-mentor-ai/pkg/logger/autoload"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "mentor",
	Short:   "Career mentor assistant",
	Long:    `Routes career questions from a triage specialist to skill and job specialists and streams their replies.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		envFile, _ := cmd.Flags().GetString("env")
		configx.SetEnvFile(envFile)
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("env", "", "path to .env file (defaults to ./.env when present)")
	rootCmd.PersistentFlags().String("catalog", "", "specialist catalog YAML (defaults to the embedded catalog)")
}
