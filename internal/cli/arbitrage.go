package cli

import (
	"context"
	"time"

	"github.com/Harshitk-cp/ise/internal/arbitrage"
	"github.com/Harshitk-cp/ise/internal/config"
	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/market"
	"github.com/Harshitk-cp/ise/internal/validate"
	"github.com/spf13/cobra"
)

type arbitrageSnapshot struct {
	Candidates []arbitrage.Candidate `yaml:"candidates"`
}

func (s *arbitrageSnapshot) normalize() {
	for i := range s.Candidates {
		c := &s.Candidates[i]
		if c.Pool.BeliefID == 0 {
			c.Pool.BeliefID = c.BeliefID
		}
		if c.Pool.Status == "" {
			c.Pool.Status = domain.PoolActive
		}
	}
}

func (s *arbitrageSnapshot) validate() error {
	for i := range s.Candidates {
		c := &s.Candidates[i]
		if err := validate.Probability("candidates.truth_score", c.TruthScore); err != nil {
			return err
		}
		if err := validate.Struct(&c.Pool); err != nil {
			return err
		}
	}
	return nil
}

func newArbitrageCmd(o *options) *cobra.Command {
	var (
		file  string
		min   float64
		limit int
	)
	cmd := &cobra.Command{
		Use:   "arbitrage",
		Short: "Find markets whose price diverges from the truth score",
		Long: `Arbitrage compares every active market's YES price with its belief's
truth score and lists the largest divergences first. A truth score above
the price is UNDERVALUED, below it OVERVALUED.

With -f the markets come from a snapshot; otherwise every active pool in
the database is scanned.

Example:
  ise arbitrage -f markets.yaml --min 0.1 --limit 5
  ise arbitrage`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("min") {
				min = config.ArbitrageMinDivergence()
			}
			if min < 0 || min > 1 {
				return domain.NewValidationError("min", "must be between 0 and 1")
			}
			if file != "" {
				var snap arbitrageSnapshot
				if err := readSnapshot(cmd, file, &snap); err != nil {
					return err
				}
				snap.normalize()
				if err := snap.validate(); err != nil {
					return err
				}
				return o.writeResult(cmd, arbitrage.FindArbitrage(snap.Candidates, min, limit))
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			app, closeApp, err := openApp(ctx, o.logger)
			if err != nil {
				return err
			}
			defer closeApp()
			opps, err := app.Arbitrage.Scan(ctx, min, limit)
			if err != nil {
				return err
			}
			return o.writeResult(cmd, opps)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "market snapshot (YAML or JSON, - for stdin)")
	cmd.Flags().Float64Var(&min, "min", 0.05, "minimum divergence magnitude (default ARBITRAGE_MIN_DIVERGENCE)")
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum opportunities to list (0 for all)")
	return cmd
}

type portfolioSnapshot struct {
	Balance  domain.UserBalance     `yaml:"balance"`
	Holdings []domain.Share         `yaml:"holdings"`
	Pools    []domain.LiquidityPool `yaml:"pools"`
}

func (s *portfolioSnapshot) normalize() {
	for i := range s.Holdings {
		if s.Holdings[i].UserID == 0 {
			s.Holdings[i].UserID = s.Balance.UserID
		}
	}
	for i := range s.Pools {
		if s.Pools[i].Status == "" {
			s.Pools[i].Status = domain.PoolActive
		}
	}
}

func (s *portfolioSnapshot) validate() error {
	if err := validate.Struct(&s.Balance); err != nil {
		return err
	}
	if err := validate.All("holdings", s.Holdings); err != nil {
		return err
	}
	return validate.All("pools", s.Pools)
}

func newPortfolioCmd(o *options) *cobra.Command {
	var (
		file   string
		userID int64
	)
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Value a user's holdings at current market prices",
		Long: `Portfolio marks every holding to its market's current price and reports
invested capital, unrealized value, realized profit, cash and ROI.

With -f the balance, holdings and pools come from a snapshot; with --user
they are read from the database.

Example:
  ise portfolio -f portfolio.yaml
  ise portfolio --user 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file != "" {
				var snap portfolioSnapshot
				if err := readSnapshot(cmd, file, &snap); err != nil {
					return err
				}
				snap.normalize()
				if err := snap.validate(); err != nil {
					return err
				}
				prices := make(map[int64]market.Prices, len(snap.Pools))
				for _, p := range snap.Pools {
					prices[p.BeliefID] = market.PriceOf(p)
				}
				p, err := arbitrage.ValuePortfolio(snap.Holdings, prices, snap.Balance)
				if err != nil {
					return err
				}
				return o.writeResult(cmd, p)
			}

			if userID <= 0 {
				return domain.NewValidationError("user", "a snapshot (-f) or a positive user id (--user) is required")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			app, closeApp, err := openApp(ctx, o.logger)
			if err != nil {
				return err
			}
			defer closeApp()
			p, err := app.Markets.Portfolio(ctx, userID)
			if err != nil {
				return err
			}
			return o.writeResult(cmd, p)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "portfolio snapshot (YAML or JSON, - for stdin)")
	cmd.Flags().Int64Var(&userID, "user", 0, "user id to value from the database")
	cmd.MarkFlagsMutuallyExclusive("file", "user")
	return cmd
}
