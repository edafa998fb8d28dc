package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/roadclean/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		full, _ := cmd.Flags().GetBool("full")
		asJSON, _ := cmd.Flags().GetBool("json")

		switch {
		case asJSON:
			return writeJSON(cmd, version.Get())
		case full:
			fmt.Fprintln(cmd.OutOrStdout(), version.Full())
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "roadclean %s\n", version.String())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("full", false, "include commit, build date and platform")
	versionCmd.Flags().Bool("json", false, "print build information as JSON")
}
