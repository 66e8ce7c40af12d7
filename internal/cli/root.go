// Package cli drives the scoring and market engine from snapshot files or,
// for the commands that need one, the database.
package cli

import (
	"fmt"

	"github.com/Harshitk-cp/ise/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
)

// options are shared by every command of one invocation.
type options struct {
	output string
	logger *zap.Logger
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	o := &options{logger: zap.NewNop()}

	root := &cobra.Command{
		Use:   "ise",
		Short: "ise - argument-tree scoring and belief markets",
		Long: `ise resolves debate trees into truth scores, compares claims for
equivalency, rolls likelihood estimates into cost-benefit totals, and runs
a constant-product market on every belief.

Snapshot commands (resolve, linkage, cba, quote, arbitrage -f, portfolio -f)
read YAML or JSON and need no database. Commands that touch stored beliefs
or markets read DATABASE_URL.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.output != outputJSON && o.output != outputYAML {
				return fmt.Errorf("unknown output format %q (valid options: json, yaml)", o.output)
			}
			if err := config.Load(); err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := newLogger(config.LogLevel())
			if err != nil {
				return err
			}
			o.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = o.logger.Sync()
		},
	}

	root.PersistentFlags().StringVarP(&o.output, "output", "o", outputJSON, "output format (json, yaml)")

	root.AddCommand(
		newResolveCmd(o),
		newLinkageCmd(o),
		newEquivalencyCmd(o),
		newUniquenessCmd(o),
		newCompareCmd(o),
		newCBACmd(o),
		newQuoteCmd(o),
		newArbitrageCmd(o),
		newPortfolioCmd(o),
		newRecomputeCmd(o),
		newLikelihoodCmd(o),
		newMarketCmd(o),
		newExpireCmd(o),
		newVersionCmd(o),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// newLogger builds a production JSON logger on stderr at the given level.
func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	return cfg.Build()
}
