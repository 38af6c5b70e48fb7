package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/deskline/ticket-desk/internal/cli"
	"github.com/deskline/ticket-desk/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "ticketdesk",
		Short:   "Customer support ticket desk",
		Version: version.String(),
		Long: `ticketdesk tracks customer support tickets from creation to resolution:
numbering, assignment, status and priority changes, comments and search.`,
	}

	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.VersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
