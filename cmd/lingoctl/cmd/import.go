package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var importDryRun bool

var importCmd = &cobra.Command{
	Use:   "import <features.json>",
	Short: "Import features from a data store document",
	Long: `Imports every feature of a {"features": [...]} document, as written by
the file backend. Features whose name and version already exist on the server
are skipped, so the command can be re-run safely.

Examples:
  lingoctl import data/features.json
  lingoctl import --dry-run backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "report what would be imported without writing")
}

// importTarget is the part of the client that import needs.
type importTarget interface {
	List(ctx context.Context, query, version string) ([]v1.Feature, error)
	Create(ctx context.Context, in v1.CreateFeatureInput) (*v1.Feature, error)
}

type importResult struct {
	Created int
	Skipped int
}

func runImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		printError("read document", err)
		return err
	}
	var doc v1.DataStore
	if err := json.Unmarshal(raw, &doc); err != nil {
		printError("parse document", err)
		return err
	}

	res, err := importFeatures(cmd.Context(), newClient(), doc, importDryRun, cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "created %d, skipped %d\n", res.Created, res.Skipped)
	return err
}

func importFeatures(ctx context.Context, target importTarget, doc v1.DataStore, dryRun bool, out io.Writer) (importResult, error) {
	var res importResult

	existing, err := target.List(ctx, "", "")
	if err != nil {
		return res, fmt.Errorf("list existing features: %w", err)
	}
	seen := make(map[[2]string]struct{}, len(existing))
	for _, f := range existing {
		seen[[2]string{f.Name, f.Version}] = struct{}{}
	}

	for _, f := range doc.Features {
		key := [2]string{f.Name, f.Version}
		if _, ok := seen[key]; ok {
			fmt.Fprintf(out, "skip   %s %s (exists)\n", f.Name, f.Version)
			res.Skipped++
			continue
		}
		if dryRun {
			fmt.Fprintf(out, "would  %s %s (%d fields)\n", f.Name, f.Version, len(f.Fields))
			res.Created++
			seen[key] = struct{}{}
			continue
		}

		created, err := target.Create(ctx, v1.CreateFeatureInput{
			Name:    f.Name,
			Version: f.Version,
			Date:    f.Date,
			Fields:  f.Fields,
		})
		if err != nil {
			logger.Error("import failed", zap.String("name", f.Name), zap.String("version", f.Version), zap.Error(err))
			return res, fmt.Errorf("create %s %s: %w", f.Name, f.Version, err)
		}
		fmt.Fprintf(out, "create %s %s -> %s\n", f.Name, f.Version, created.ID)
		res.Created++
		seen[key] = struct{}{}
	}
	return res, nil
}
