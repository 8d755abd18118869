package cmd

import (
	"fmt"
	"text/tabwriter"

	"lingoflow/internal/progress"

	"github.com/spf13/cobra"
)

var listVersion string

var listCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List features, optionally filtered by a search query",
	Long: `Lists features, most recently updated first.

Examples:
  lingoctl list
  lingoctl list login
  lingoctl list --version 1.2.0 checkout`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listVersion, "version", "", "only features with this exact version")
}

func runList(cmd *cobra.Command, args []string) error {
	query := ""
	if len(args) == 1 {
		query = args[0]
	}

	features, err := newClient().List(cmd.Context(), query, listVersion)
	if err != nil {
		printError("list features", err)
		return err
	}
	if asJSON {
		return printJSON(cmd.OutOrStdout(), features)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tVERSION\tDATE\tFIELDS\tPROGRESS")
	for _, f := range features {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d%%\n", f.ID, f.Name, f.Version, f.Date, len(f.Fields), progress.Feature(f.Fields))
	}
	return tw.Flush()
}
