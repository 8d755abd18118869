package cmd

import (
	"fmt"
	"strings"

	"lingoflow/pkg/lang"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a feature with all of its translations",
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	f, err := newClient().Get(cmd.Context(), args[0])
	if err != nil {
		printError("get feature", err)
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, f)
	}

	fmt.Fprintf(out, "%s %s (%s)\n", f.Name, f.Version, f.Date)
	fmt.Fprintf(out, "id: %s  updated: %s\n", f.ID, f.UpdatedAt.Format("2006-01-02 15:04:05"))
	for _, field := range f.Fields {
		fmt.Fprintf(out, "\n  %s  %s\n", field.Key, field.Name)
		for _, l := range lang.Languages {
			v := field.Translations[l.Code]
			if strings.TrimSpace(v) == "" {
				v = "-"
			}
			fmt.Fprintf(out, "    %s %-6s %s\n", l.Flag, l.Code, v)
		}
	}
	return nil
}
