// Package main is the entry point for the rpg-tracker server and its test client
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/KirkDiggler/rpg-tracker/cmd/server/client"
)

var rootCmd = &cobra.Command{
	Use:   "rpg-tracker",
	Short: "RPG Tracker encounter server",
	Long: `RPG Tracker runs tabletop combat encounters: rosters, initiative order,
hit points and turn-by-turn combat, served over REST and gRPC.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(client.ClientCmd)
}
