package cli

import (
	"context"
	"time"

	"github.com/Harshitk-cp/ise/internal/config"
	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/embedding"
	"github.com/Harshitk-cp/ise/internal/scoring"
	"github.com/Harshitk-cp/ise/internal/service"
	"github.com/Harshitk-cp/ise/internal/validate"
	"github.com/spf13/cobra"
)

func newEquivalencyCmd(o *options) *cobra.Command {
	var (
		semantic float64
		embed    bool
	)
	cmd := &cobra.Command{
		Use:   "equivalency <statement-a> <statement-b>",
		Short: "Decide whether two statements make the same claim",
		Long: `Equivalency blends a lexical comparison (synonyms, negated antonyms,
Jaccard overlap) with an optional semantic similarity and classifies the
pair as identical, similar, related or distinct.

The semantic layer comes from --semantic, or from the configured embedding
provider with --embed. Without either only the lexical layer runs.

Example:
  ise equivalency "Taxes should rise" "Taxes should increase"
  ise equivalency "A" "B" --semantic 0.82
  ise equivalency "A" "B" --embed`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, b := args[0], args[1]
			if cmd.Flags().Changed("semantic") {
				if err := validate.Probability("semantic", semantic); err != nil {
					return err
				}
				return o.writeResult(cmd, scoring.ScoreEquivalency(a, b, &semantic))
			}
			if !embed {
				return o.writeResult(cmd, scoring.ScoreEquivalency(a, b, nil))
			}

			ec, err := embedding.NewClient(config.EmbeddingProvider(), config.EmbeddingAPIKey(),
				embedding.WithModel(config.EmbeddingModel()))
			if err != nil {
				return err
			}
			svc := service.NewEquivalencyService(nil, ec, config.EmbeddingCacheTTL(), o.logger)
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			return o.writeResult(cmd, svc.Compare(ctx, a, b))
		},
	}
	cmd.Flags().Float64Var(&semantic, "semantic", 0, "semantic similarity in [0,1] for the second layer")
	cmd.Flags().BoolVar(&embed, "embed", false, "compute the semantic layer with the configured embedding provider")
	cmd.MarkFlagsMutuallyExclusive("semantic", "embed")
	return cmd
}

type uniquenessResult struct {
	Uniqueness        float64 `json:"uniqueness"`
	NoveltyMultiplier float64 `json:"novelty_multiplier"`
}

func newUniquenessCmd(o *options) *cobra.Command {
	var (
		prior []string
		age   time.Duration
	)
	cmd := &cobra.Command{
		Use:   "uniqueness <statement>",
		Short: "Score how novel a statement is against earlier ones",
		Long: `Uniqueness is one minus the highest lexical similarity between the
statement and any prior statement. The novelty multiplier rewards unique
statements and decays toward 1 as the statement ages.

Example:
  ise uniqueness "Solar is cheaper than coal" --prior "Coal costs more than solar" --age 6h`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if age < 0 {
				return domain.NewValidationError("age", "must not be negative")
			}
			u := scoring.StatementUniqueness(args[0], prior)
			return o.writeResult(cmd, uniquenessResult{
				Uniqueness:        u,
				NoveltyMultiplier: scoring.NoveltyMultiplier(u, age),
			})
		},
	}
	cmd.Flags().StringArrayVar(&prior, "prior", nil, "earlier statement (repeatable)")
	cmd.Flags().DurationVar(&age, "age", 0, "age of the statement")
	return cmd
}
