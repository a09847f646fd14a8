package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "serptes-cli",
		Short:        "Inspect and simulate the SERP-TES elastic-supply controller",
		SilenceUsage: true,
	}
	root.AddCommand(newEvaluateCmd())
	root.AddCommand(newSimulateCmd())
	root.AddCommand(newConfigCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "serptes-cli: %v\n", err)
		os.Exit(1)
	}
}
