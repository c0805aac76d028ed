package main

import (
	"fmt"
	"os"

	"github.com/aretw0/asyncfetch/internal/cli"
	"github.com/aretw0/asyncfetch/internal/presentation/tui"
	"github.com/aretw0/asyncfetch/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [TYPE...]",
	Short: "Check the configuration and action types",
	Long: `Loads the configuration and reports any problem. Each TYPE given is then checked against
the endpoint and verb tables as the middleware would.`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := cli.NewApp(appOptions(cmd))
		if err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		printer := tui.NewPrinter(os.Stdout)
		failed := false
		for _, typ := range args {
			msgs := app.Middleware.Validate(domain.Action{domain.KeyType: typ})
			if len(msgs) > 0 {
				failed = true
				printer.PrintErrors(msgs)
			}
		}
		if failed {
			os.Exit(1)
		}
		fmt.Println("Configuration is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
