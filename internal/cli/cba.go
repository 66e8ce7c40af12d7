package cli

import (
	"github.com/Harshitk-cp/ise/internal/cba"
	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/validate"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// normalizeCBA fills the parent references nested estimates may leave implicit.
func normalizeCBA(c *domain.CBA) {
	for i := range c.Items {
		it := &c.Items[i]
		if it.CBAID == 0 {
			it.CBAID = c.ID
		}
		for j := range it.Likelihood.Estimates {
			e := &it.Likelihood.Estimates[j]
			if e.LikelihoodBeliefID == 0 {
				e.LikelihoodBeliefID = it.Likelihood.ID
			}
			for k := range e.Arguments {
				if e.Arguments[k].BeliefID == 0 {
					e.Arguments[k].BeliefID = e.ID
				}
			}
			for k := range e.Evidence {
				if e.Evidence[k].BeliefID == 0 {
					e.Evidence[k].BeliefID = e.ID
				}
			}
		}
	}
}

func newCBACmd(o *options) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "cba",
		Short: "Resolve likelihoods and total a cost-benefit analysis",
		Long: `CBA resolves every line item's competing likelihood estimates with the
argument-tree resolver, takes the strongest estimate as the item's
likelihood, and rolls impact x likelihood up into expected benefits,
costs and net value. Costs carry negative impact.

Example:
  ise cba -f analysis.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var c domain.CBA
			if err := readSnapshot(cmd, file, &c); err != nil {
				return err
			}
			normalizeCBA(&c)
			if err := validate.Struct(&c); err != nil {
				return err
			}

			out, err := cba.Recompute(newResolver(), c)
			if err != nil {
				return err
			}
			o.logger.Debug("cba resolved",
				zap.Int64("cba_id", out.ID),
				zap.Int("items", len(out.Items)),
				zap.String("net", out.NetExpectedValue.String()))
			return o.writeResult(cmd, out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "cost-benefit snapshot (YAML or JSON, - for stdin)")
	return cmd
}
