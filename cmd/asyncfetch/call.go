package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aretw0/asyncfetch/internal/cli"
	"github.com/aretw0/asyncfetch/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:   "call TYPE",
	Short: "Perform a single call and print its notifications",
	Long: `Dispatches a call envelope whose inner action has the given type (e.g. LOAD_TODOS_REQUEST)
and prints every notification. Exits with status 1 when the call fails or is invalid.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		body, _ := cmd.Flags().GetString("body")
		params, _ := cmd.Flags().GetString("params")
		headers, _ := cmd.Flags().GetString("headers")
		fields, _ := cmd.Flags().GetString("fields")

		action, err := cli.BuildCallAction(args[0], body, params, headers, fields)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}

		opts := appOptions(cmd)
		opts.Output = os.Stdout
		app, err := cli.NewApp(opts)
		if err != nil {
			fmt.Printf("Error initializing asyncfetch: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if _, err := cli.RunCall(ctx, app, action); err != nil {
			var vErr *cli.ValidationError
			if errors.As(err, &vErr) {
				tui.NewPrinter(os.Stdout).PrintErrors(vErr.Messages)
			}
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().String("body", "", "JSON request body")
	callCmd.Flags().String("params", "", "JSON object of query parameters, or a raw query string")
	callCmd.Flags().String("headers", "", "JSON object of request headers")
	callCmd.Flags().String("fields", "", "JSON object of extra fields carried by the inner action")
}
