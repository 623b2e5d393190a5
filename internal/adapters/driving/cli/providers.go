package cli

import (
	"github.com/spf13/cobra"

	"github.com/sdmx-tools/sdmx-cli/internal/writers/table"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List the configured data providers",
	Run: func(cmd *cobra.Command, _ []string) {
		listing := table.WriteProviders(providerStore.List())
		cmd.Println(renderListing(listing))
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
