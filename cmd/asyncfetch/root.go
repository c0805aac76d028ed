package main

import (
	"fmt"
	"os"

	"github.com/aretw0/asyncfetch/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "asyncfetch",
	Short: "asyncfetch turns tagged actions into HTTP calls and lifecycle notifications",
	Long: `asyncfetch validates VERB_ENDPOINT_STEP actions, performs the matching HTTP call and
reports REQUEST, SUCCESS and FAILURE notifications. Endpoints are read from asyncfetch.yaml.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory searched for asyncfetch.yaml")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (overrides --dir discovery)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: off, fatal, error, warn, info, debug")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging and lifecycle tracing")
	rootCmd.PersistentFlags().String("stream", cli.DefaultStream, "Journal stream name")
}

// appOptions collects the persistent flags.
func appOptions(cmd *cobra.Command) cli.Options {
	dir, _ := cmd.Flags().GetString("dir")
	configPath, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	debug, _ := cmd.Flags().GetBool("debug")
	stream, _ := cmd.Flags().GetString("stream")

	return cli.Options{
		Dir:        dir,
		ConfigPath: configPath,
		LogLevel:   level,
		Debug:      debug,
		Stream:     stream,
	}
}
