package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/settmint/serp-tes/internal/registry"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Registry configuration helpers",
	}

	var regPath string
	validate := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate a registry TOML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := registry.Load(regPath)
			if err != nil {
				return err
			}
			fmt.Printf("ok: %d currencies, staleness limit %d blocks, history %d\n",
				reg.Len(), reg.Engine().StalenessLimit, reg.Engine().History)
			for _, cur := range reg.Currencies() {
				fmt.Printf("  %s peg=%s tolerance=%s cap=%d floor=%d freq=%d\n",
					cur.ID, cur.Peg, cur.Tolerance, cur.MaxChangeCap, cur.MinimumFloor, cur.Frequency)
			}
			return nil
		},
	}
	validate.Flags().StringVar(&regPath, "config", "registry.toml", "path to currency registry TOML")
	cmd.AddCommand(validate)
	return cmd
}
