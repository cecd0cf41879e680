package main

import (
	"os"

	"github.com/spf13/cobra"

	"tessera/internal/interfaces/cli/migrate"
	"tessera/internal/interfaces/cli/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tessera",
		Short: "Tessera - Telegram support relay bot",
		Long:  `Tessera relays private Telegram messages into a staff group and routes staff replies back to the original sender.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
