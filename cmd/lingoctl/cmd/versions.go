package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List the versions in use, newest first",
	Args:  cobra.NoArgs,
	RunE:  runVersions,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	versions, err := newClient().Versions(cmd.Context())
	if err != nil {
		printError("list versions", err)
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), versions)
	}
	for _, v := range versions {
		fmt.Fprintln(cmd.OutOrStdout(), v)
	}
	return nil
}
