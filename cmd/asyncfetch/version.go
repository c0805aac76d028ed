package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/asyncfetch"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of asyncfetch",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("asyncfetch version %s\n", strings.TrimSpace(asyncfetch.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
