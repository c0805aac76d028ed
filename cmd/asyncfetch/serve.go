package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/asyncfetch"
	"github.com/aretw0/asyncfetch/internal/cli"
	"github.com/aretw0/asyncfetch/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	Long: `Starts a dispatch pipeline behind an HTTP gateway.

Routes:
- POST /dispatch  dispatch an action and wait for its notifications
- POST /validate  check a call envelope or inner action
- GET  /state     last status of every VERB_ENDPOINT pair
- GET  /journal   actions recorded on the journal stream
- GET  /events    call lifecycle events (SSE)
- GET  /metrics   Prometheus metrics`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := cli.NewApp(appOptions(cmd))
		if err != nil {
			fmt.Printf("Error initializing asyncfetch: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = app.Config.Server.Addr
		}

		tui.PrintBanner(os.Stdout, asyncfetch.Version)
		fmt.Printf("Starting asyncfetch gateway on %s\n", addr)

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if err := cli.RunServe(ctx, app, addr); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nGateway stopped gracefully (signal: %v)\n", ctx.Signal())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Address to listen on (defaults to server.addr)")
}
