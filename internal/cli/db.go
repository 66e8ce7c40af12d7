package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/market"
	"github.com/spf13/cobra"
)

const dbTimeout = 2 * time.Minute

// withApp runs fn against the database-backed services.
func withApp(cmd *cobra.Command, o *options, fn func(ctx context.Context, app *App) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), dbTimeout)
	defer cancel()
	app, closeApp, err := openApp(ctx, o.logger)
	if err != nil {
		return err
	}
	defer closeApp()
	return fn(ctx, app)
}

type recomputed struct {
	BeliefID int64 `json:"belief_id"`
	domain.BeliefScores
}

func newRecomputeCmd(o *options) *cobra.Command {
	var ids []int64
	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Recompute stored beliefs from their persisted children",
		Long: `Recompute re-resolves each belief's argument tree from the database and
writes back its truth score, confidence interval and volatility. With no
--belief every stored belief is recomputed, RECOMPUTE_CONCURRENCY at a time.

Example:
  ise recompute --belief 12 --belief 13
  ise recompute`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, app *App) error {
				results, err := app.Trees.RecomputeAll(ctx, ids)
				if err != nil {
					return err
				}
				out := make([]recomputed, 0, len(results))
				for id, r := range results {
					out = append(out, recomputed{BeliefID: id, BeliefScores: r.Scores()})
				}
				sort.Slice(out, func(i, j int) bool { return out[i].BeliefID < out[j].BeliefID })
				return o.writeResult(cmd, out)
			})
		},
	}
	cmd.Flags().Int64SliceVar(&ids, "belief", nil, "belief id to recompute (repeatable)")
	return cmd
}

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(name, "must be a positive integer")
	}
	return id, nil
}

func newCompareCmd(o *options) *cobra.Command {
	var index bool
	cmd := &cobra.Command{
		Use:   "compare <belief-a> <belief-b>",
		Short: "Compare two stored beliefs for equivalency",
		Long: `Compare scores two stored beliefs. Stored statement embeddings supply
the semantic layer; --index embeds both statements first.

Example:
  ise compare 12 40 --index`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseID("belief-a", args[0])
			if err != nil {
				return err
			}
			b, err := parseID("belief-b", args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, o, func(ctx context.Context, app *App) error {
				if index {
					for _, id := range []int64{a, b} {
						if err := app.Equivalency.IndexBelief(ctx, id); err != nil {
							return err
						}
					}
				}
				res, err := app.Equivalency.CompareBeliefs(ctx, a, b)
				if err != nil {
					return err
				}
				return o.writeResult(cmd, res)
			})
		},
	}
	cmd.Flags().BoolVar(&index, "index", false, "embed and store both statements before comparing")
	return cmd
}

func newLikelihoodCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "likelihood <likelihood-belief-id>",
		Short: "Re-resolve a stored likelihood belief",
		Long: `Likelihood re-scores the competing estimates of a stored likelihood
belief, marks the strongest active, and pushes the new likelihood into the
owning line item and its CBA totals.

Example:
  ise likelihood 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("likelihood-belief-id", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, o, func(ctx context.Context, app *App) error {
				res, err := app.CBA.Resolve(ctx, id)
				if err != nil {
					return err
				}
				return o.writeResult(cmd, res)
			})
		},
	}
}

func newMarketCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Open, trade and settle stored belief markets",
	}
	cmd.AddCommand(
		newMarketShowCmd(o),
		newMarketOpenCmd(o),
		newMarketTradeCmd(o, domain.TradeBuy),
		newMarketTradeCmd(o, domain.TradeSell),
		newMarketResolveCmd(o),
	)
	return cmd
}

type poolView struct {
	Pool   *domain.LiquidityPool `json:"pool"`
	Prices market.Prices         `json:"prices"`
}

func newMarketShowCmd(o *options) *cobra.Command {
	var beliefID int64
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a belief's pool and prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, app *App) error {
				p, err := app.Markets.GetPool(ctx, beliefID)
				if err != nil {
					return err
				}
				return o.writeResult(cmd, poolView{Pool: p, Prices: market.PriceOf(*p)})
			})
		},
	}
	cmd.Flags().Int64Var(&beliefID, "belief", 0, "belief id")
	_ = cmd.MarkFlagRequired("belief")
	return cmd
}

func newMarketOpenCmd(o *options) *cobra.Command {
	var (
		beliefID  int64
		liquidity string
		expiresIn time.Duration
	)
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a market on a belief with equal YES and NO reserves",
		Long: `Example:
  ise market open --belief 12 --liquidity 1000 --expires-in 720h`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := parseDecimal("liquidity", liquidity)
			if err != nil {
				return err
			}
			var expiresAt *time.Time
			if expiresIn > 0 {
				t := time.Now().Add(expiresIn)
				expiresAt = &t
			}
			return withApp(cmd, o, func(ctx context.Context, app *App) error {
				p, err := app.Markets.OpenPool(ctx, beliefID, l, expiresAt)
				if err != nil {
					return err
				}
				return o.writeResult(cmd, poolView{Pool: p, Prices: market.PriceOf(*p)})
			})
		},
	}
	cmd.Flags().Int64Var(&beliefID, "belief", 0, "belief id")
	cmd.Flags().StringVar(&liquidity, "liquidity", "1000", "initial reserve of each outcome")
	cmd.Flags().DurationVar(&expiresIn, "expires-in", 0, "expire the market after this long (0 never)")
	_ = cmd.MarkFlagRequired("belief")
	return cmd
}

func newMarketTradeCmd(o *options, side domain.TradeSide) *cobra.Command {
	var (
		userID, beliefID int64
		outcome, qty     string
	)
	qtyFlag, qtyHelp := "amount", "amount to spend"
	if side == domain.TradeSell {
		qtyFlag, qtyHelp = "shares", "shares to sell"
	}
	cmd := &cobra.Command{
		Use:   string(side),
		Short: fmt.Sprintf("Execute a %s against a belief's pool", side),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := parseDecimal(qtyFlag, qty)
			if err != nil {
				return err
			}
			return withApp(cmd, o, func(ctx context.Context, app *App) error {
				var exec *market.Execution
				if side == domain.TradeBuy {
					exec, err = app.Markets.Buy(ctx, userID, beliefID, domain.Outcome(outcome), d)
				} else {
					exec, err = app.Markets.Sell(ctx, userID, beliefID, domain.Outcome(outcome), d)
				}
				if err != nil {
					return err
				}
				return o.writeResult(cmd, exec)
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "trading user id")
	cmd.Flags().Int64Var(&beliefID, "belief", 0, "belief id")
	cmd.Flags().StringVar(&outcome, "outcome", string(domain.OutcomeYes), "outcome (yes, no)")
	cmd.Flags().StringVar(&qty, qtyFlag, "", qtyHelp)
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("belief")
	_ = cmd.MarkFlagRequired(qtyFlag)
	return cmd
}

func newMarketResolveCmd(o *options) *cobra.Command {
	var (
		beliefID int64
		outcome  string
	)
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Settle a market on the winning outcome and pay every holder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, o, func(ctx context.Context, app *App) error {
				st, err := app.Markets.Resolve(ctx, beliefID, domain.Outcome(outcome))
				if err != nil {
					return err
				}
				return o.writeResult(cmd, st)
			})
		},
	}
	cmd.Flags().Int64Var(&beliefID, "belief", 0, "belief id")
	cmd.Flags().StringVar(&outcome, "outcome", "", "winning outcome (yes, no)")
	_ = cmd.MarkFlagRequired("belief")
	_ = cmd.MarkFlagRequired("outcome")
	return cmd
}

type expireResult struct {
	Expired int `json:"expired"`
}

func newExpireCmd(o *options) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "expire",
		Short: "Expire markets whose expiry has passed",
		Long: `Expire freezes every active market past its expiry and refunds each
holder's cost basis. It runs every EXPIRER_INTERVAL until SIGINT or
SIGTERM, or a single pass with --once.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if once {
				return withApp(cmd, o, func(ctx context.Context, app *App) error {
					n, err := app.Expirer.RunOnce(ctx)
					if err != nil {
						return err
					}
					return o.writeResult(cmd, expireResult{Expired: n})
				})
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			app, closeApp, err := openApp(ctx, o.logger)
			cancel()
			if err != nil {
				return err
			}
			defer closeApp()

			app.Expirer.Start()
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit
			o.logger.Info("shutting down expirer")
			app.Expirer.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run a single pass and exit")
	return cmd
}
