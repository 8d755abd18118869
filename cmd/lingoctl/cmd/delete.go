package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete features by id",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	c := newClient()
	for _, id := range args {
		if err := c.Delete(cmd.Context(), id); err != nil {
			printError("delete "+id, err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
	}
	return nil
}
