package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/probelab/probectl/internal/logging"
)

// errQueryFailed marks an answered query whose outcome was a failure
// variant. The agent did reply, so exit code 2 separates it from transport
// trouble.
var errQueryFailed = errors.New("query failed")

var rootCmd = &cobra.Command{
	Use:   "probectl",
	Short: "Inspect probe agents from the management host",
	Long: `probectl talks to probed agents over their datagram control port.

Usage
	probectl query seqregs --target 10.0.0.7:9301
	probectl history --db probectl.db --target 10.0.0.7:9301
`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadDotenv()
		logging.ConfigureRuntime()
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func loadDotenv() {
	for _, name := range []string{".env.local", ".env"} {
		if err := godotenv.Load(name); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "probectl: dotenv %s: %v\n", name, err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "probectl: %v\n", err)
		if errors.Is(err, errQueryFailed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
