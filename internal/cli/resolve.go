package cli

import (
	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/scoring"
	"github.com/Harshitk-cp/ise/internal/validate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// treeSnapshot is a belief with its full debate tree.
type treeSnapshot struct {
	Belief    domain.Belief       `yaml:"belief"`
	Arguments []domain.Argument   `yaml:"arguments"`
	Evidence  []domain.Evidence   `yaml:"evidence"`
	History   []domain.ScorePoint `yaml:"history"`
}

// normalize fills the belief references the file may leave implicit.
func (s *treeSnapshot) normalize() {
	if s.Belief.Status == "" {
		s.Belief.Status = domain.BeliefEmerging
	}
	for i := range s.Arguments {
		if s.Arguments[i].BeliefID == 0 {
			s.Arguments[i].BeliefID = s.Belief.ID
		}
	}
	for i := range s.Evidence {
		if s.Evidence[i].BeliefID == 0 {
			s.Evidence[i].BeliefID = s.Belief.ID
		}
	}
}

func (s *treeSnapshot) validate() error {
	if err := validate.Struct(&s.Belief); err != nil {
		return err
	}
	if err := validate.All("arguments", s.Arguments); err != nil {
		return err
	}
	return validate.All("evidence", s.Evidence)
}

func newResolveCmd(o *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a belief's argument tree into a truth score",
		Long: `Resolve reads a belief with its arguments, linkage debates, evidence
and score history and prints the truth score, confidence interval,
volatility and a per-argument breakdown.

Example:
  ise resolve -f tree.yaml
  ise resolve -f tree.json -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var snap treeSnapshot
			if err := readSnapshot(cmd, file, &snap); err != nil {
				return err
			}
			snap.normalize()
			if err := snap.validate(); err != nil {
				return err
			}

			res, err := newResolver().ResolveArgumentTree(snap.Belief, snap.Arguments, snap.Evidence, snap.History)
			if err != nil {
				return err
			}
			o.logger.Debug("tree resolved",
				zap.Int64("belief_id", snap.Belief.ID),
				zap.Int("arguments", len(snap.Arguments)),
				zap.Float64("truth_score", res.TruthScore))
			return o.writeResult(cmd, res)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "tree snapshot (YAML or JSON, - for stdin)")
	return cmd
}

type linkageSnapshot struct {
	Links []domain.LinkageArgument `yaml:"links"`
}

func newLinkageCmd(o *options) *cobra.Command {
	var (
		file  string
		depth int
	)
	cmd := &cobra.Command{
		Use:   "linkage",
		Short: "Score an argument's agree/disagree linkage debate",
		Long: `Linkage decides whether an argument actually supports its parent claim.
The score is (agree - disagree) / (agree + disagree) over the debate's
strengths, attenuated by half for every level of nesting.

Example:
  ise linkage -f links.yaml --depth 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var snap linkageSnapshot
			if err := readSnapshot(cmd, file, &snap); err != nil {
				return err
			}
			if depth < 0 {
				return domain.NewValidationError("depth", "must not be negative")
			}
			if err := validate.All("links", snap.Links); err != nil {
				return err
			}
			return o.writeResult(cmd, scoring.ResolveLinkage(snap.Links, depth))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "linkage snapshot (YAML or JSON, - for stdin)")
	cmd.Flags().IntVar(&depth, "depth", 0, "depth of the argument in its tree")
	return cmd
}
