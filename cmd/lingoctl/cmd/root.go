package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"lingoflow/client"
	"lingoflow/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	serverAddr string
	timeout    time.Duration
	asJSON     bool
)

var rootCmd = &cobra.Command{
	Use:   "lingoctl",
	Short: "Command line client for a lingoflow server",
	Long: `lingoctl talks to a running lingoflow server over its HTTP API.

Commands:
  list      - list or search features
  get       - show one feature
  import    - bulk import a features.json document
  export    - download a feature or field export
  progress  - show translation progress
  versions  - list versions in use
  delete    - delete a feature`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.InitLogger("cli")
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultAddr := os.Getenv("LINGO_ADDR")
	if defaultAddr == "" {
		defaultAddr = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverAddr, "addr", defaultAddr, "server address (env LINGO_ADDR)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print raw JSON")
}

func newClient() *client.LingoClient {
	return client.NewLingoClient(serverAddr, timeout)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
}
