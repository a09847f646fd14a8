package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/settmint/serp-tes/internal/elasticity"
	"github.com/settmint/serp-tes/internal/types"
)

// evaluate computes a single elasticity decision from flags, without any
// collaborator. Useful for checking what the controller would do at a
// given price before it happens on chain.
func newEvaluateCmd() *cobra.Command {
	var (
		id        string
		peg       string
		tolerance string
		price     string
		supply    uint64
		changeCap uint64
		floor     uint64
		quoteAge  uint64
		staleness uint64
		pretty    bool
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Compute one elasticity decision from explicit inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			pegD, err := decimal.NewFromString(peg)
			if err != nil {
				return fmt.Errorf("peg %q: %w", peg, err)
			}
			tolD, err := decimal.NewFromString(tolerance)
			if err != nil {
				return fmt.Errorf("tolerance %q: %w", tolerance, err)
			}
			priceD, err := decimal.NewFromString(price)
			if err != nil {
				return fmt.Errorf("price %q: %w", price, err)
			}

			cur := types.Currency{
				ID:           types.CurrencyID(id),
				Peg:          pegD,
				Tolerance:    tolD,
				MaxChangeCap: changeCap,
				MinimumFloor: floor,
				Frequency:    1,
			}
			// model quote age as quote height lagging the snapshot height
			snapHeight := quoteAge
			snap := types.SupplySnapshot{CurrencyID: cur.ID, Supply: supply, Height: snapHeight}
			quote := types.PriceQuote{CurrencyID: cur.ID, Price: priceD, Height: 0}

			calc := elasticity.NewCalculator(staleness)
			decision := calc.Compute(cur, snap, quote)

			enc := json.NewEncoder(os.Stdout)
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(decision)
		},
	}
	cmd.Flags().StringVar(&id, "currency", "SETT", "currency id")
	cmd.Flags().StringVar(&peg, "peg", "1.00", "target peg price")
	cmd.Flags().StringVar(&tolerance, "tolerance", "0.02", "tolerance band ratio")
	cmd.Flags().StringVar(&price, "price", "1.00", "observed market price")
	cmd.Flags().Uint64Var(&supply, "supply", 1_000_000, "circulating supply")
	cmd.Flags().Uint64Var(&changeCap, "cap", 50_000, "max per-period change")
	cmd.Flags().Uint64Var(&floor, "floor", 0, "minimum supply floor")
	cmd.Flags().Uint64Var(&quoteAge, "quote-age", 0, "quote age in blocks")
	cmd.Flags().Uint64Var(&staleness, "staleness-limit", 10, "max quote age before StalePrice")
	cmd.Flags().BoolVar(&pretty, "pretty", true, "pretty-print JSON output")
	return cmd
}
