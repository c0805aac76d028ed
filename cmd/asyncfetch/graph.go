package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/asyncfetch/internal/cli"
	"github.com/aretw0/asyncfetch/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the call lifecycle visualization",
	Long: `Outputs a Mermaid diagram (graph LR) of every call the endpoint and verb tables can route.
With --journal, actions recorded on the journal stream are highlighted.`,
	Run: func(cmd *cobra.Command, args []string) {
		app, err := cli.NewApp(appOptions(cmd))
		if err != nil {
			fmt.Printf("Error initializing asyncfetch: %v\n", err)
			os.Exit(1)
		}
		defer app.Close()

		var overlay *graph.GraphOverlay
		if withJournal, _ := cmd.Flags().GetBool("journal"); withJournal {
			entries, err := app.Journal.Entries(context.Background(), app.Stream)
			if err != nil {
				fmt.Printf("Error reading journal: %v\n", err)
				os.Exit(1)
			}
			overlay = graph.OverlayFromActions(entries)
		}

		fmt.Print(graph.GenerateMermaid(app.Middleware.Endpoints(), app.Middleware.Verbs(), overlay))
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("journal", false, "Highlight actions recorded on the journal stream")
}
