package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress <id>",
	Short: "Show translation progress of a feature and its fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgress,
}

func init() {
	rootCmd.AddCommand(progressCmd)
}

func runProgress(cmd *cobra.Command, args []string) error {
	p, err := newClient().Progress(cmd.Context(), args[0])
	if err != nil {
		printError("fetch progress", err)
		return err
	}
	out := cmd.OutOrStdout()
	if asJSON {
		return printJSON(out, p)
	}

	fmt.Fprintf(out, "%s %3d%% (%d/%d)\n", bar(p.Progress), p.Progress, p.Filled, p.Total)
	for _, f := range p.Fields {
		fmt.Fprintf(out, "  %s %3d%%  %s\n", bar(f.Progress), f.Progress, f.Key)
	}
	return nil
}

func bar(percent int) string {
	const width = 20
	n := percent * width / 100
	return "[" + strings.Repeat("#", n) + strings.Repeat(".", width-n) + "]"
}
