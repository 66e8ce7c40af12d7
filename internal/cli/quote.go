package cli

import (
	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/market"
	"github.com/Harshitk-cp/ise/internal/validate"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type quoteResult struct {
	Before market.Prices `json:"prices_before"`
	Quote  *market.Quote `json:"quote"`
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, "must be a decimal number")
	}
	return d, nil
}

func newQuoteCmd(o *options) *cobra.Command {
	var yes, no, outcome, buy, sell string
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a trade against a pool's reserves",
		Long: `Quote prices a buy (amount to spend) or sell (shares to return) against
a constant-product pool with the given YES and NO reserves, without
executing it.

Example:
  ise quote --yes 100 --no 100 --outcome yes --buy 50
  ise quote --yes 66.666667 --no 150 --outcome yes --sell 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			y, err := parseDecimal("yes", yes)
			if err != nil {
				return err
			}
			n, err := parseDecimal("no", no)
			if err != nil {
				return err
			}
			pool := domain.LiquidityPool{
				BeliefID:    1,
				YesShares:   y,
				NoShares:    n,
				TotalVolume: decimal.Zero,
				Status:      domain.PoolActive,
			}
			if err := validate.Struct(&pool); err != nil {
				return err
			}

			var q *market.Quote
			if cmd.Flags().Changed("buy") {
				amount, err := parseDecimal("buy", buy)
				if err != nil {
					return err
				}
				q, err = market.QuoteBuy(pool, domain.Outcome(outcome), amount)
				if err != nil {
					return err
				}
			} else {
				qty, err := parseDecimal("sell", sell)
				if err != nil {
					return err
				}
				q, err = market.QuoteSell(pool, domain.Outcome(outcome), qty)
				if err != nil {
					return err
				}
			}
			return o.writeResult(cmd, quoteResult{Before: market.PriceOf(pool), Quote: q})
		},
	}
	cmd.Flags().StringVar(&yes, "yes", "100", "YES reserve")
	cmd.Flags().StringVar(&no, "no", "100", "NO reserve")
	cmd.Flags().StringVar(&outcome, "outcome", string(domain.OutcomeYes), "outcome to trade (yes, no)")
	cmd.Flags().StringVar(&buy, "buy", "", "amount to spend")
	cmd.Flags().StringVar(&sell, "sell", "", "shares to sell")
	cmd.MarkFlagsMutuallyExclusive("buy", "sell")
	cmd.MarkFlagsOneRequired("buy", "sell")
	return cmd
}
