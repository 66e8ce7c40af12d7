package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/scoring"
	"github.com/Harshitk-cp/ise/internal/validate"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBeliefNotFound         = errors.New("belief not found")
	ErrArgumentNotFound       = errors.New("argument not found")
	ErrBeliefStatementEmpty   = errors.New("statement is required")
	ErrArgumentStatementEmpty = errors.New("argument statement is required")
	ErrArgumentWrongBelief    = errors.New("argument belongs to a different belief")
)

const (
	// historyWindow is how far back score points are read for volatility.
	historyWindow = 24 * time.Hour
	// defaultRecomputeConcurrency bounds RecomputeAll when unset.
	defaultRecomputeConcurrency = 4
)

// TreeService owns belief argument trees. Every mutation and recompute of a
// belief runs under that belief's lock, so no reader sees a half-updated tree.
type TreeService struct {
	beliefStore   domain.BeliefStore
	argumentStore domain.ArgumentStore
	linkageStore  domain.LinkageStore
	evidenceStore domain.EvidenceStore
	historyStore  domain.ScoreHistoryStore
	detector      domain.FallacyDetector
	resolver      *scoring.Resolver
	logger        *zap.Logger

	locks       *keyedMutex
	concurrency int
	now         func() time.Time
}

func NewTreeService(bs domain.BeliefStore, as domain.ArgumentStore, ls domain.LinkageStore, es domain.EvidenceStore, hs domain.ScoreHistoryStore, resolver *scoring.Resolver, logger *zap.Logger) *TreeService {
	return &TreeService{
		beliefStore:   bs,
		argumentStore: as,
		linkageStore:  ls,
		evidenceStore: es,
		historyStore:  hs,
		resolver:      resolver,
		logger:        logger,
		locks:         newKeyedMutex(),
		concurrency:   defaultRecomputeConcurrency,
		now:           time.Now,
	}
}

// SetFallacyDetector enables fallacy detection for new arguments.
func (s *TreeService) SetFallacyDetector(d domain.FallacyDetector) {
	s.detector = d
}

func (s *TreeService) SetConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

func (s *TreeService) CreateBelief(ctx context.Context, b *domain.Belief) error {
	b.Statement = strings.TrimSpace(b.Statement)
	if b.Statement == "" {
		return ErrBeliefStatementEmpty
	}
	if b.Status == "" {
		b.Status = domain.BeliefEmerging
	}
	if !domain.ValidBeliefStatus(string(b.Status)) {
		return domain.NewValidationError("status", "must be one of active contested emerging archived")
	}
	if err := validate.Probability("truth_score", b.TruthScore); err != nil {
		return err
	}
	if err := s.beliefStore.Create(ctx, b); err != nil {
		return fmt.Errorf("create belief: %w", err)
	}
	s.logger.Info("belief created", zap.Int64("belief_id", b.ID))
	return nil
}

// Recompute re-resolves a belief's tree and persists the derived scores.
func (s *TreeService) Recompute(ctx context.Context, beliefID int64) (*scoring.Result, error) {
	unlock := s.locks.Lock(beliefID)
	defer unlock()
	return s.recomputeLocked(ctx, beliefID, 0)
}

// RecomputeAll recomputes independent beliefs concurrently. An empty list
// means every stored belief.
func (s *TreeService) RecomputeAll(ctx context.Context, beliefIDs []int64) (map[int64]*scoring.Result, error) {
	if len(beliefIDs) == 0 {
		ids, err := s.beliefStore.ListIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list beliefs: %w", err)
		}
		beliefIDs = ids
	}

	results := make([]*scoring.Result, len(beliefIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, id := range beliefIDs {
		g.Go(func() error {
			res, err := s.Recompute(gctx, id)
			if err != nil {
				return fmt.Errorf("belief %d: %w", id, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[int64]*scoring.Result, len(beliefIDs))
	for i, id := range beliefIDs {
		out[id] = results[i]
	}
	s.logger.Info("beliefs recomputed", zap.Int("count", len(out)))
	return out, nil
}

// AddArgument validates the insertion against the current tree, records
// detected fallacies, persists the argument and recomputes its belief.
func (s *TreeService) AddArgument(ctx context.Context, a *domain.Argument) (*scoring.Result, error) {
	if err := checkArgument(a); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(a.BeliefID)
	defer unlock()

	belief, err := s.getBelief(ctx, a.BeliefID)
	if err != nil {
		return nil, err
	}
	args, err := s.argumentStore.ListByBelief(ctx, a.BeliefID)
	if err != nil {
		return nil, fmt.Errorf("list arguments: %w", err)
	}
	tree, err := scoring.BuildTree(belief.ID, args, s.resolver.Config().MaxDepth)
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}
	if err := tree.CheckInsertion(a.ParentID, a.ID); err != nil {
		return nil, err
	}
	a.Depth = tree.NextDepth(a.ParentID)

	parentStatement := belief.Statement
	if p, ok := tree.Argument(a.ParentID); ok {
		parentStatement = p.Statement
	}
	s.detectFallacies(ctx, a, parentStatement)

	if err := s.argumentStore.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create argument: %w", err)
	}
	s.logger.Info("argument added",
		zap.Int64("belief_id", a.BeliefID),
		zap.Int64("argument_id", a.ID),
		zap.String("side", string(a.Side)),
		zap.Int("depth", a.Depth),
		zap.Int("fallacies", len(a.Fallacies)))

	cycles := 0
	if a.ParentID == 0 && opposes(a.Side, belief.TruthScore) {
		cycles = 1
	}
	return s.recomputeLocked(ctx, belief.ID, cycles)
}

// AddLinkageArgument records a position in an argument's linkage
// sub-debate and recomputes the owning belief.
func (s *TreeService) AddLinkageArgument(ctx context.Context, l *domain.LinkageArgument) (*scoring.Result, error) {
	if err := validate.Struct(l); err != nil {
		return nil, err
	}
	arg, err := s.argumentStore.GetByID(ctx, l.ArgumentID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrArgumentNotFound
		}
		return nil, err
	}

	unlock := s.locks.Lock(arg.BeliefID)
	defer unlock()

	if err := s.linkageStore.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create linkage argument: %w", err)
	}
	s.logger.Info("linkage argument added",
		zap.Int64("belief_id", arg.BeliefID),
		zap.Int64("argument_id", arg.ID),
		zap.String("side", string(l.Side)),
		zap.Float64("strength", l.Strength))
	return s.recomputeLocked(ctx, arg.BeliefID, 0)
}

// AddEvidence attaches evidence to a belief, or to one of its arguments,
// and recomputes the belief.
func (s *TreeService) AddEvidence(ctx context.Context, e *domain.Evidence) (*scoring.Result, error) {
	if err := validate.Struct(e); err != nil {
		return nil, err
	}
	if e.ArgumentID != 0 {
		arg, err := s.argumentStore.GetByID(ctx, e.ArgumentID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return nil, ErrArgumentNotFound
			}
			return nil, err
		}
		if arg.BeliefID != e.BeliefID {
			return nil, ErrArgumentWrongBelief
		}
	}

	unlock := s.locks.Lock(e.BeliefID)
	defer unlock()

	if _, err := s.getBelief(ctx, e.BeliefID); err != nil {
		return nil, err
	}
	if err := s.evidenceStore.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create evidence: %w", err)
	}
	s.logger.Info("evidence added",
		zap.Int64("belief_id", e.BeliefID),
		zap.Int64("argument_id", e.ArgumentID),
		zap.Float64("evs", scoring.ScoreEvidence(*e)))
	return s.recomputeLocked(ctx, e.BeliefID, 0)
}

func (s *TreeService) recomputeLocked(ctx context.Context, beliefID int64, cycleDelta int) (*scoring.Result, error) {
	start := time.Now()
	res, err := s.resolveAndPersist(ctx, beliefID, cycleDelta)
	recomputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		recomputeTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	recomputeTotal.WithLabelValues("ok").Inc()
	return res, nil
}

func (s *TreeService) resolveAndPersist(ctx context.Context, beliefID int64, cycleDelta int) (*scoring.Result, error) {
	belief, err := s.getBelief(ctx, beliefID)
	if err != nil {
		return nil, err
	}
	args, err := s.argumentStore.ListByBelief(ctx, beliefID)
	if err != nil {
		return nil, fmt.Errorf("list arguments: %w", err)
	}
	links, err := s.linkageStore.ListByBelief(ctx, beliefID)
	if err != nil {
		return nil, fmt.Errorf("list linkage arguments: %w", err)
	}
	attachLinkage(args, links)

	evidence, err := s.evidenceStore.ListByBelief(ctx, beliefID)
	if err != nil {
		return nil, fmt.Errorf("list evidence: %w", err)
	}
	now := s.now()
	history, err := s.historyStore.ListSince(ctx, beliefID, now.Add(-historyWindow))
	if err != nil {
		return nil, fmt.Errorf("list score history: %w", err)
	}

	belief.AdversarialCycles += cycleDelta
	res, err := s.resolver.ResolveArgumentTree(*belief, args, evidence, history)
	if err != nil {
		return nil, fmt.Errorf("resolve belief %d: %w", beliefID, err)
	}

	point := domain.ScorePoint{BeliefID: beliefID, TruthScore: res.TruthScore, RecordedAt: now}
	res.Volatility = scoring.ComputeVolatility(append(history, point), belief.AdversarialCycles)

	for _, as := range res.Breakdown.Arguments {
		if err := s.argumentStore.UpdateDerived(ctx, as.ArgumentID, as.LinkageScore, as.ImpactScore); err != nil {
			return nil, fmt.Errorf("update argument %d: %w", as.ArgumentID, err)
		}
	}
	if err := s.beliefStore.UpdateScores(ctx, beliefID, res.Scores(), belief.AdversarialCycles); err != nil {
		return nil, fmt.Errorf("update belief scores: %w", err)
	}
	if err := s.historyStore.Append(ctx, point); err != nil {
		s.logger.Warn("failed to append score history", zap.Int64("belief_id", beliefID), zap.Error(err))
	}

	s.logger.Debug("belief recomputed",
		zap.Int64("belief_id", beliefID),
		zap.Float64("truth_score", res.TruthScore),
		zap.Float64("confidence_interval", res.ConfidenceInterval),
		zap.String("volatility", string(res.Volatility)),
		zap.Int("arguments", len(args)))
	return res, nil
}

func (s *TreeService) getBelief(ctx context.Context, id int64) (*domain.Belief, error) {
	b, err := s.beliefStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrBeliefNotFound
		}
		return nil, err
	}
	return b, nil
}

// detectFallacies fills a.Fallacies when a detector is configured and the
// caller did not supply any. Detector failures leave the argument unpenalized.
func (s *TreeService) detectFallacies(ctx context.Context, a *domain.Argument, parentStatement string) {
	if s.detector == nil || len(a.Fallacies) > 0 {
		return
	}
	found, err := s.detector.DetectFallacies(ctx, a.Statement, parentStatement)
	if err != nil {
		s.logger.Warn("fallacy detection failed, continuing without penalties",
			zap.Int64("belief_id", a.BeliefID),
			zap.Error(err))
		return
	}
	a.Fallacies = found
}

func checkArgument(a *domain.Argument) error {
	a.Statement = strings.TrimSpace(a.Statement)
	if a.Statement == "" {
		return ErrArgumentStatementEmpty
	}
	if a.BeliefID <= 0 {
		return domain.NewValidationError("belief_id", "must be positive")
	}
	if a.ParentID < 0 {
		return domain.NewValidationError("parent_id", "must not be negative")
	}
	if !domain.ValidSide(string(a.Side)) {
		return domain.NewValidationError("side", "must be pro or con")
	}
	if err := validate.Probability("truth_score", a.TruthScore); err != nil {
		return err
	}
	if a.LinkageScore < -1 || a.LinkageScore > 1 {
		return domain.NewValidationError("linkage_score", "must be between -1 and 1")
	}
	for i, f := range a.Fallacies {
		if !domain.ValidFallacyType(string(f)) {
			return domain.NewValidationError(fmt.Sprintf("fallacies[%d]", i), "unknown fallacy type")
		}
	}
	return nil
}

// attachLinkage groups linkage arguments onto the arguments they judge.
func attachLinkage(args []domain.Argument, links []domain.LinkageArgument) {
	byArg := make(map[int64][]domain.LinkageArgument, len(args))
	for _, l := range links {
		byArg[l.ArgumentID] = append(byArg[l.ArgumentID], l)
	}
	for i := range args {
		args[i].Linkage = byArg[args[i].ID]
	}
}

// opposes reports whether a top-level argument pushes against the
// belief's current leaning. A belief at exactly 0.5 has no leaning.
func opposes(side domain.Side, truth float64) bool {
	switch {
	case truth > 0.5:
		return side == domain.SideCon
	case truth < 0.5:
		return side == domain.SidePro
	default:
		return false
	}
}
