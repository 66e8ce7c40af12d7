package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type treeFixture struct {
	svc      *TreeService
	beliefs  *fakeBeliefStore
	args     *fakeArgumentStore
	links    *fakeLinkageStore
	evidence *fakeEvidenceStore
	history  *fakeHistoryStore
}

func newTreeFixture() *treeFixture {
	f := &treeFixture{
		beliefs:  newFakeBeliefStore(),
		args:     newFakeArgumentStore(),
		evidence: &fakeEvidenceStore{},
		history:  &fakeHistoryStore{},
	}
	f.links = &fakeLinkageStore{args: f.args}
	f.svc = NewTreeService(f.beliefs, f.args, f.links, f.evidence, f.history,
		scoring.NewResolver(scoring.DefaultConfig()), zap.NewNop())
	return f
}

func (f *treeFixture) belief(t *testing.T, statement string) *domain.Belief {
	t.Helper()
	b := &domain.Belief{Statement: statement}
	require.NoError(t, f.svc.CreateBelief(context.Background(), b))
	return b
}

func (f *treeFixture) argue(t *testing.T, beliefID, parentID int64, side domain.Side, truth float64, statement string) (*domain.Argument, *scoring.Result) {
	t.Helper()
	a := &domain.Argument{BeliefID: beliefID, ParentID: parentID, Side: side, TruthScore: truth, Statement: statement}
	res, err := f.svc.AddArgument(context.Background(), a)
	require.NoError(t, err)
	return a, res
}

func TestTreeService_CreateBelief(t *testing.T) {
	f := newTreeFixture()
	b := f.belief(t, "  Remote work boosts productivity  ")
	assert.Equal(t, "Remote work boosts productivity", b.Statement)
	assert.Equal(t, domain.BeliefEmerging, b.Status)

	err := f.svc.CreateBelief(context.Background(), &domain.Belief{Statement: "   "})
	assert.ErrorIs(t, err, ErrBeliefStatementEmpty)

	err = f.svc.CreateBelief(context.Background(), &domain.Belief{Statement: "x", Status: "bogus"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTreeService_AddArgumentRecomputes(t *testing.T) {
	f := newTreeFixture()
	b := f.belief(t, "Remote work boosts productivity")

	_, res := f.argue(t, b.ID, 0, domain.SidePro, 0.8, "Fewer interruptions")
	assert.InDelta(t, 1.0, res.TruthScore, 1e-9)

	con, res := f.argue(t, b.ID, 0, domain.SideCon, 0.4, "Collaboration suffers")
	assert.InDelta(t, 0.8/1.2, res.TruthScore, 1e-9)
	assert.Equal(t, 0, con.Depth)

	stored, err := f.beliefs.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.8/1.2, stored.TruthScore, 1e-9)
	assert.Equal(t, res.ConfidenceInterval, stored.ConfidenceInterval)
	// Both arguments pushed against the leaning at the time they arrived.
	assert.Equal(t, 2, stored.AdversarialCycles)

	storedCon, err := f.args.GetByID(context.Background(), con.ID)
	require.NoError(t, err)
	assert.InDelta(t, -0.4, storedCon.ImpactScore, 1e-9)

	assert.Equal(t, 2, f.history.count(b.ID))
}

func TestTreeService_NestedArgument(t *testing.T) {
	f := newTreeFixture()
	b := f.belief(t, "Remote work boosts productivity")
	pro, _ := f.argue(t, b.ID, 0, domain.SidePro, 0.8, "Fewer interruptions")

	child, res := f.argue(t, b.ID, pro.ID, domain.SideCon, 0.6, "Slack pings replace hallway chats")
	assert.Equal(t, 1, child.Depth)

	as, ok := res.Argument(pro.ID)
	require.True(t, ok)
	// (1-d)*0.8 + d*clamp(0-0.6) with d = 0.5
	assert.InDelta(t, 0.4, as.Rank, 1e-9)
	assert.InDelta(t, 0.6, as.ConSubRank, 1e-9)
}

func TestTreeService_AddArgumentRejects(t *testing.T) {
	f := newTreeFixture()
	ctx := context.Background()
	b := f.belief(t, "Remote work boosts productivity")

	tests := []struct {
		name string
		arg  domain.Argument
		want error
	}{
		{"empty statement", domain.Argument{BeliefID: b.ID, Side: domain.SidePro, TruthScore: 0.5}, ErrArgumentStatementEmpty},
		{"bad side", domain.Argument{BeliefID: b.ID, Side: "maybe", TruthScore: 0.5, Statement: "x"}, domain.ErrValidation},
		{"truth out of range", domain.Argument{BeliefID: b.ID, Side: domain.SidePro, TruthScore: 1.5, Statement: "x"}, domain.ErrValidation},
		{"linkage out of range", domain.Argument{BeliefID: b.ID, Side: domain.SidePro, TruthScore: 0.5, LinkageScore: -2, Statement: "x"}, domain.ErrValidation},
		{"unknown fallacy", domain.Argument{BeliefID: b.ID, Side: domain.SidePro, TruthScore: 0.5, Statement: "x", Fallacies: []domain.FallacyType{"vibes"}}, domain.ErrValidation},
		{"missing belief", domain.Argument{BeliefID: 99, Side: domain.SidePro, TruthScore: 0.5, Statement: "x"}, ErrBeliefNotFound},
		{"orphan parent", domain.Argument{BeliefID: b.ID, ParentID: 42, Side: domain.SidePro, TruthScore: 0.5, Statement: "x"}, scoring.ErrOrphanArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.arg
			_, err := f.svc.AddArgument(ctx, &a)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	args, err := f.args.ListByBelief(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, args)
}

func TestTreeService_FallacyDetection(t *testing.T) {
	f := newTreeFixture()
	detector := new(MockFallacyDetector)
	f.svc.SetFallacyDetector(detector)
	b := f.belief(t, "Remote work boosts productivity")

	detector.On("DetectFallacies", mock.Anything, "Only fools disagree", b.Statement).
		Return([]domain.FallacyType{domain.FallacyAdHominem}, nil)
	detector.On("DetectFallacies", mock.Anything, "Output per hour rose", b.Statement).
		Return(nil, errors.New("llm down"))

	flawed, res := f.argue(t, b.ID, 0, domain.SidePro, 0.8, "Only fools disagree")
	assert.Equal(t, []domain.FallacyType{domain.FallacyAdHominem}, flawed.Fallacies)
	as, ok := res.Argument(flawed.ID)
	require.True(t, ok)
	assert.InDelta(t, 0.15, as.FallacyPenalty, 1e-9)
	assert.InDelta(t, 0.65, as.SelfTruth, 1e-9)

	clean, res := f.argue(t, b.ID, 0, domain.SidePro, 0.5, "Output per hour rose")
	assert.Empty(t, clean.Fallacies)
	as, ok = res.Argument(clean.ID)
	require.True(t, ok)
	assert.InDelta(t, 0.5, as.SelfTruth, 1e-9)

	// Caller-supplied fallacies skip detection.
	a := &domain.Argument{BeliefID: b.ID, Side: domain.SideCon, TruthScore: 0.5, Statement: "Skipped",
		Fallacies: []domain.FallacyType{domain.FallacyStrawMan}}
	_, err := f.svc.AddArgument(context.Background(), a)
	require.NoError(t, err)

	detector.AssertExpectations(t)
	detector.AssertNumberOfCalls(t, "DetectFallacies", 2)
}

func TestTreeService_AddLinkageArgument(t *testing.T) {
	f := newTreeFixture()
	ctx := context.Background()
	b := f.belief(t, "Remote work boosts productivity")
	pro, _ := f.argue(t, b.ID, 0, domain.SidePro, 0.8, "Fewer interruptions")

	res, err := f.svc.AddLinkageArgument(ctx, &domain.LinkageArgument{ArgumentID: pro.ID, Side: domain.LinkageDisagree, Strength: 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, res.TruthScore, 1e-9)
	stored, err := f.args.GetByID(ctx, pro.ID)
	require.NoError(t, err)
	assert.InDelta(t, -1.0, stored.LinkageScore, 1e-9)

	res, err = f.svc.AddLinkageArgument(ctx, &domain.LinkageArgument{ArgumentID: pro.ID, Side: domain.LinkageAgree, Strength: 1})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.TruthScore, 1e-9)

	_, err = f.svc.AddLinkageArgument(ctx, &domain.LinkageArgument{ArgumentID: 99, Side: domain.LinkageAgree, Strength: 1})
	assert.ErrorIs(t, err, ErrArgumentNotFound)

	_, err = f.svc.AddLinkageArgument(ctx, &domain.LinkageArgument{ArgumentID: pro.ID, Side: domain.LinkageAgree, Strength: 2})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTreeService_AddEvidence(t *testing.T) {
	f := newTreeFixture()
	ctx := context.Background()
	b := f.belief(t, "Remote work boosts productivity")
	f.argue(t, b.ID, 0, domain.SidePro, 0.5, "Fewer interruptions")
	_, res := f.argue(t, b.ID, 0, domain.SideCon, 0.5, "Collaboration suffers")
	assert.InDelta(t, 0.5, res.TruthScore, 1e-9)

	study := domain.Evidence{
		BeliefID:                 b.ID,
		Side:                     domain.EvidenceSupporting,
		SourceIndependenceWeight: 1,
		ReplicationQuantity:      3,
		ConclusionRelevance:      1,
		ReplicationPercentage:    1,
		QualityTier:              domain.TierT1,
	}
	res, err := f.svc.AddEvidence(ctx, &study)
	require.NoError(t, err)
	// EVS 2 at tier weight 1 contributes 0.25 * tanh(2/2).
	assert.InDelta(t, 0.5+0.25*0.7615941559557649, res.TruthScore, 1e-9)
	assert.InDelta(t, 2.0, res.Breakdown.NetEvidence, 1e-9)

	other := f.belief(t, "Offices are obsolete")
	otherArg, _ := f.argue(t, other.ID, 0, domain.SidePro, 0.5, "Leases are falling")
	scoped := study
	scoped.ArgumentID = otherArg.ID
	_, err = f.svc.AddEvidence(ctx, &scoped)
	assert.ErrorIs(t, err, ErrArgumentWrongBelief)

	bad := study
	bad.ConclusionRelevance = 2
	_, err = f.svc.AddEvidence(ctx, &bad)
	assert.ErrorIs(t, err, domain.ErrValidation)

	missing := study
	missing.BeliefID = 99
	_, err = f.svc.AddEvidence(ctx, &missing)
	assert.ErrorIs(t, err, ErrBeliefNotFound)
}

func TestTreeService_RecomputeAll(t *testing.T) {
	f := newTreeFixture()
	ctx := context.Background()
	a := f.belief(t, "Remote work boosts productivity")
	b := f.belief(t, "Offices are obsolete")
	f.argue(t, a.ID, 0, domain.SidePro, 0.9, "Fewer interruptions")

	results, err := f.svc.RecomputeAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.InDelta(t, 1.0, results[a.ID].TruthScore, 1e-9)
	assert.InDelta(t, 0.0, results[b.ID].TruthScore, 1e-9)

	_, err = f.svc.RecomputeAll(ctx, []int64{a.ID, 99})
	assert.ErrorIs(t, err, ErrBeliefNotFound)

	_, err = f.svc.Recompute(ctx, 99)
	assert.ErrorIs(t, err, ErrBeliefNotFound)
}

func TestOpposes(t *testing.T) {
	tests := []struct {
		side  domain.Side
		truth float64
		want  bool
	}{
		{domain.SideCon, 0.8, true},
		{domain.SidePro, 0.8, false},
		{domain.SidePro, 0.2, true},
		{domain.SideCon, 0.2, false},
		{domain.SidePro, 0.5, false},
		{domain.SideCon, 0.5, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, opposes(tt.side, tt.truth), "%s at %v", tt.side, tt.truth)
	}
}

func TestTreeService_SerializesPerBelief(t *testing.T) {
	f := newTreeFixture()
	f.args.listDelay = 2 * time.Millisecond
	b := f.belief(t, "Remote work boosts productivity")

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			side := domain.SidePro
			if i%2 == 1 {
				side = domain.SideCon
			}
			a := &domain.Argument{BeliefID: b.ID, Side: side, TruthScore: 0.5, Statement: "concurrent"}
			_, err := f.svc.AddArgument(context.Background(), a)
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Equal(t, 1, f.args.maxConcurrentLists(b.ID))
	args, err := f.args.ListByBelief(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Len(t, args, n)
	assert.Equal(t, n, f.history.count(b.ID))

	stored, err := f.beliefs.GetByID(context.Background(), b.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, stored.TruthScore, 1e-9)
}
