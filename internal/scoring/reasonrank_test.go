package scoring

import (
	"math"
	"testing"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func arg(id, parent int64, side domain.Side, truth float64) domain.Argument {
	return domain.Argument{ID: id, BeliefID: 1, ParentID: parent, Side: side, TruthScore: truth}
}

func TestResolve_NestedSubArguments(t *testing.T) {
	r := NewResolver(DefaultConfig())
	args := []domain.Argument{
		arg(1, 0, domain.SidePro, 0.8),
		arg(2, 1, domain.SidePro, 0.6),
		arg(3, 1, domain.SideCon, 0.2),
	}

	res, err := r.ResolveArgumentTree(domain.Belief{ID: 1}, args, nil, nil)
	require.NoError(t, err)

	top, ok := res.Argument(1)
	require.True(t, ok)
	assert.InDelta(t, 0.6, top.Rank, 1e-9)
	assert.InDelta(t, 0.6, top.ProSubRank, 1e-9)
	assert.InDelta(t, 0.2, top.ConSubRank, 1e-9)
	assert.InDelta(t, 0.6, top.ImpactScore, 1e-9)

	con, _ := res.Argument(3)
	assert.Equal(t, 1, con.Depth)
	assert.InDelta(t, -0.2, con.ImpactScore, 1e-9)

	assert.InDelta(t, 0.6, res.Breakdown.ProRank, 1e-9)
	assert.Equal(t, 0.0, res.Breakdown.ConRank)
	assert.InDelta(t, 1.0, res.TruthScore, 1e-9)
	assert.Equal(t, int64(1), res.Breakdown.Arguments[0].ArgumentID)
}

func TestResolve_ClampHoldsForExtremeGaps(t *testing.T) {
	r := NewResolver(DefaultConfig())

	strong := []domain.Argument{arg(1, 0, domain.SidePro, 1.0)}
	weak := []domain.Argument{arg(1, 0, domain.SidePro, 0.1)}
	for i := int64(2); i < 12; i++ {
		strong = append(strong, arg(i, 1, domain.SidePro, 1.0))
		weak = append(weak, arg(i, 1, domain.SideCon, 1.0))
	}

	res, err := r.ResolveArgumentTree(domain.Belief{ID: 1}, strong, nil, nil)
	require.NoError(t, err)
	top, _ := res.Argument(1)
	assert.InDelta(t, 1.0, top.Rank, 1e-9)

	res, err = r.ResolveArgumentTree(domain.Belief{ID: 1}, weak, nil, nil)
	require.NoError(t, err)
	top, _ = res.Argument(1)
	assert.InDelta(t, 0.05, top.Rank, 1e-9)

	for _, a := range res.Breakdown.Arguments {
		assert.GreaterOrEqual(t, a.Rank, 0.0)
		assert.LessOrEqual(t, a.Rank, 1.0)
	}
}

func TestResolve_EmptyTreeIsEvidenceOnly(t *testing.T) {
	r := NewResolver(DefaultConfig())
	ev := []domain.Evidence{{
		BeliefID: 1, Side: domain.EvidenceSupporting, SourceIndependenceWeight: 1,
		ReplicationQuantity: 3, ConclusionRelevance: 1, ReplicationPercentage: 1, QualityTier: domain.TierT1,
	}}

	res, err := r.ResolveArgumentTree(domain.Belief{ID: 1}, nil, ev, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.25*math.Tanh(1), res.TruthScore, 1e-9)
	assert.InDelta(t, 2.0, res.Breakdown.NetEvidence, 1e-9)

	res, err = r.ResolveArgumentTree(domain.Belief{ID: 1}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.TruthScore)

	ev[0].Side = domain.EvidenceWeakening
	res, err = r.ResolveArgumentTree(domain.Belief{ID: 1}, nil, ev, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.TruthScore)
}

func TestResolve_ProConRatio(t *testing.T) {
	r := NewResolver(DefaultConfig())
	args := []domain.Argument{
		arg(1, 0, domain.SidePro, 0.6),
		arg(2, 0, domain.SideCon, 0.2),
	}
	res, err := r.ResolveArgumentTree(domain.Belief{ID: 1}, args, nil, nil)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, res.TruthScore, 1e-9)
}

func TestResolve_FallacyPenalties(t *testing.T) {
	r := NewResolver(DefaultConfig())
	a := arg(1, 0, domain.SidePro, 0.5)
	a.Fallacies = []domain.FallacyType{domain.FallacyAdHominem, domain.FallacyStrawMan}
	b := arg(2, 0, domain.SideCon, 0.1)
	b.Fallacies = []domain.FallacyType{domain.FallacyCircularReasoning}

	res, err := r.ResolveArgumentTree(domain.Belief{ID: 1}, []domain.Argument{a, b}, nil, nil)
	require.NoError(t, err)

	sa, _ := res.Argument(1)
	assert.InDelta(t, 0.2, sa.SelfTruth, 1e-9)
	assert.InDelta(t, 0.3, sa.FallacyPenalty, 1e-9)

	sb, _ := res.Argument(2)
	assert.Equal(t, 0.0, sb.SelfTruth)
	assert.True(t, sb.Debunked)
	assert.InDelta(t, 1.0, res.TruthScore, 1e-9)
}

func TestResolve_NegativeLinkageScalesRank(t *testing.T) {
	r := NewResolver(DefaultConfig())
	a := arg(1, 0, domain.SidePro, 0.8)
	a.Linkage = []domain.LinkageArgument{
		{Side: domain.LinkageAgree, Strength: 0.2},
		{Side: domain.LinkageDisagree, Strength: 0.6},
	}
	b := arg(2, 0, domain.SidePro, 0.8)
	b.Linkage = []domain.LinkageArgument{{Side: domain.LinkageAgree, Strength: 0.9}}

	res, err := r.ResolveArgumentTree(domain.Belief{ID: 1}, []domain.Argument{a, b}, nil, nil)
	require.NoError(t, err)

	sa, _ := res.Argument(1)
	assert.InDelta(t, -0.5, sa.LinkageScore, 1e-9)
	assert.InDelta(t, 0.4, sa.Rank, 1e-9)

	sb, _ := res.Argument(2)
	assert.InDelta(t, 1.0, sb.LinkageScore, 1e-9)
	assert.InDelta(t, 0.8, sb.Rank, 1e-9)
}

func TestResolve_ArgumentScopedEvidence(t *testing.T) {
	r := NewResolver(DefaultConfig())
	ev := []domain.Evidence{{
		BeliefID: 1, ArgumentID: 1, Side: domain.EvidenceSupporting, SourceIndependenceWeight: 1,
		ReplicationQuantity: 3, ConclusionRelevance: 1, ReplicationPercentage: 1, QualityTier: domain.TierT1,
	}}
	args := []domain.Argument{arg(1, 0, domain.SidePro, 0.5), arg(2, 0, domain.SideCon, 0.5)}

	res, err := r.ResolveArgumentTree(domain.Belief{ID: 1}, args, ev, nil)
	require.NoError(t, err)

	sa, _ := res.Argument(1)
	assert.InDelta(t, 0.5+0.25*math.Tanh(1), sa.SelfTruth, 1e-9)
	assert.Equal(t, 0.0, res.Breakdown.EvidenceContribution)
	assert.Greater(t, res.TruthScore, 0.5)
}

func TestResolve_Deterministic(t *testing.T) {
	r := NewResolver(DefaultConfig())
	args := []domain.Argument{
		arg(1, 0, domain.SidePro, 0.7),
		arg(2, 1, domain.SideCon, 0.4),
		arg(3, 2, domain.SidePro, 0.9),
		arg(4, 0, domain.SideCon, 0.3),
	}
	first, err := r.ResolveArgumentTree(domain.Belief{ID: 1}, args, nil, nil)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := r.ResolveArgumentTree(domain.Belief{ID: 1}, args, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolve_RejectsMalformedTree(t *testing.T) {
	r := NewResolver(DefaultConfig())
	_, err := r.ResolveArgumentTree(domain.Belief{ID: 1}, []domain.Argument{
		arg(1, 2, domain.SidePro, 0.5),
		arg(2, 1, domain.SidePro, 0.5),
	}, nil, nil)
	assert.ErrorIs(t, err, ErrCycle)
}

func TestNewResolver_NormalizesConfig(t *testing.T) {
	r := NewResolver(Config{Damping: 3, MaxDepth: -1, EvidenceScale: 0})
	cfg := r.Config()
	assert.Equal(t, DefaultDamping, cfg.Damping)
	assert.Equal(t, DefaultMaxDepth, cfg.MaxDepth)
	assert.Equal(t, DefaultEvidenceScale, cfg.EvidenceScale)
}
