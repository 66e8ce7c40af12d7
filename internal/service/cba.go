package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/ise/internal/cba"
	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/scoring"
	"github.com/Harshitk-cp/ise/internal/validate"
	"go.uber.org/zap"
)

var (
	ErrLikelihoodNotFound = errors.New("likelihood belief not found")
	ErrCBANotFound        = errors.New("cost-benefit analysis not found")
	ErrLineItemEmpty      = errors.New("line item description is required")
)

// CBAService keeps likelihood beliefs, line-item expected values and CBA
// totals consistent. A new estimate re-resolves its likelihood belief,
// which flows into the owning line item and then the CBA totals.
type CBAService struct {
	likelihoodStore domain.LikelihoodStore
	cbaStore        domain.CBAStore
	resolver        *scoring.Resolver
	logger          *zap.Logger

	likelihoodLocks *keyedMutex
	cbaLocks        *keyedMutex
	now             func() time.Time
}

func NewCBAService(ls domain.LikelihoodStore, cs domain.CBAStore, resolver *scoring.Resolver, logger *zap.Logger) *CBAService {
	return &CBAService{
		likelihoodStore: ls,
		cbaStore:        cs,
		resolver:        resolver,
		logger:          logger,
		likelihoodLocks: newKeyedMutex(),
		cbaLocks:        newKeyedMutex(),
		now:             time.Now,
	}
}

// Get returns a cost-benefit analysis with its stored aggregates.
func (s *CBAService) Get(ctx context.Context, id int64) (*domain.CBA, error) {
	c, err := s.cbaStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrCBANotFound
		}
		return nil, err
	}
	return c, nil
}

// AddLineItem persists a benefit or cost and refreshes the CBA totals.
// The item's expected value is derived from its likelihood's active estimate.
func (s *CBAService) AddLineItem(ctx context.Context, item *domain.CBALineItem) (*domain.CBA, error) {
	item.Description = strings.TrimSpace(item.Description)
	if item.Description == "" {
		return nil, ErrLineItemEmpty
	}
	if !domain.ValidLineItemType(string(item.Type)) {
		return nil, domain.NewValidationError("type", "must be benefit or cost")
	}
	if item.Type == domain.LineItemBenefit && item.PredictedImpact.IsNegative() {
		return nil, domain.NewValidationError("predicted_impact", "must not be negative for a benefit")
	}
	if item.Type == domain.LineItemCost && item.PredictedImpact.IsPositive() {
		return nil, domain.NewValidationError("predicted_impact", "must not be positive for a cost")
	}
	if err := validate.Probability("likelihood.active_likelihood", item.Likelihood.ActiveLikelihood); err != nil {
		return nil, err
	}

	unlock := s.cbaLocks.Lock(item.CBAID)
	defer unlock()

	if _, err := s.Get(ctx, item.CBAID); err != nil {
		return nil, err
	}
	item.ExpectedValue = cba.ComputeExpectedValue(item.PredictedImpact, item.Likelihood.ActiveLikelihood)
	item.UpdatedAt = s.now()
	if err := s.cbaStore.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create line item: %w", err)
	}
	s.logger.Info("line item added",
		zap.Int64("cba_id", item.CBAID),
		zap.Int64("item_id", item.ID),
		zap.String("type", string(item.Type)),
		zap.String("expected_value", item.ExpectedValue.String()))
	return s.refreshTotalsLocked(ctx, item.CBAID)
}

// SubmitEstimate adds a competing probability and re-resolves its
// likelihood belief.
func (s *CBAService) SubmitEstimate(ctx context.Context, e *domain.LikelihoodEstimate) (*cba.Resolution, error) {
	if err := validate.Probability("probability", e.Probability); err != nil {
		return nil, err
	}
	for i := range e.Arguments {
		a := e.Arguments[i]
		field := fmt.Sprintf("arguments[%d]", i)
		if !domain.ValidSide(string(a.Side)) {
			return nil, domain.NewValidationError(field+".side", "must be pro or con")
		}
		if err := validate.Probability(field+".truth_score", a.TruthScore); err != nil {
			return nil, err
		}
	}
	if _, err := scoring.BuildTree(0, e.Arguments, s.resolver.Config().MaxDepth); err != nil {
		return nil, fmt.Errorf("estimate arguments: %w", err)
	}

	unlock := s.likelihoodLocks.Lock(e.LikelihoodBeliefID)
	defer unlock()

	if _, err := s.getLikelihood(ctx, e.LikelihoodBeliefID); err != nil {
		return nil, err
	}
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = s.now()
	}
	if err := s.likelihoodStore.CreateEstimate(ctx, e); err != nil {
		return nil, fmt.Errorf("create estimate: %w", err)
	}
	s.logger.Info("likelihood estimate submitted",
		zap.Int64("likelihood_belief_id", e.LikelihoodBeliefID),
		zap.Int64("estimate_id", e.ID),
		zap.Float64("probability", e.Probability))
	return s.resolveLocked(ctx, e.LikelihoodBeliefID)
}

// Resolve re-scores every estimate of a likelihood belief.
func (s *CBAService) Resolve(ctx context.Context, likelihoodBeliefID int64) (*cba.Resolution, error) {
	unlock := s.likelihoodLocks.Lock(likelihoodBeliefID)
	defer unlock()
	return s.resolveLocked(ctx, likelihoodBeliefID)
}

func (s *CBAService) resolveLocked(ctx context.Context, likelihoodBeliefID int64) (*cba.Resolution, error) {
	lb, err := s.getLikelihood(ctx, likelihoodBeliefID)
	if err != nil {
		return nil, err
	}
	res, err := cba.ResolveLikelihood(s.resolver, lb.Estimates)
	if err != nil {
		return nil, fmt.Errorf("resolve likelihood %d: %w", likelihoodBeliefID, err)
	}
	if !res.Found {
		return res, nil
	}

	scores := make(map[int64]float64, len(res.Estimates))
	for _, e := range res.Estimates {
		scores[e.ID] = e.Score
	}
	if err := s.likelihoodStore.SetActive(ctx, likelihoodBeliefID, res.ActiveEstimateID, res.ActiveLikelihood, scores); err != nil {
		return nil, fmt.Errorf("set active estimate: %w", err)
	}
	if res.ActiveEstimateID != lb.ActiveEstimateID {
		s.logger.Info("active estimate changed",
			zap.Int64("likelihood_belief_id", likelihoodBeliefID),
			zap.Int64("previous_estimate_id", lb.ActiveEstimateID),
			zap.Int64("active_estimate_id", res.ActiveEstimateID),
			zap.Float64("active_likelihood", res.ActiveLikelihood))
	}

	if err := s.propagate(ctx, likelihoodBeliefID, res.ActiveLikelihood); err != nil {
		return nil, err
	}
	return res, nil
}

// propagate pushes a new active likelihood into the owning line item, if
// any, and refreshes that CBA's totals.
func (s *CBAService) propagate(ctx context.Context, likelihoodBeliefID int64, likelihood float64) error {
	item, err := s.cbaStore.GetItemByLikelihoodBelief(ctx, likelihoodBeliefID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("load line item: %w", err)
	}

	unlock := s.cbaLocks.Lock(item.CBAID)
	defer unlock()

	ev := cba.ComputeExpectedValue(item.PredictedImpact, likelihood)
	if err := s.cbaStore.UpdateItemExpectedValue(ctx, item.ID, ev); err != nil {
		return fmt.Errorf("update line item %d: %w", item.ID, err)
	}
	_, err = s.refreshTotalsLocked(ctx, item.CBAID)
	return err
}

func (s *CBAService) refreshTotalsLocked(ctx context.Context, cbaID int64) (*domain.CBA, error) {
	c, err := s.Get(ctx, cbaID)
	if err != nil {
		return nil, err
	}
	t := cba.ComputeTotals(c.Items)
	if err := s.cbaStore.UpdateTotals(ctx, cbaID, t.Benefits, t.Costs, t.Net); err != nil {
		return nil, fmt.Errorf("update totals: %w", err)
	}
	c.TotalExpectedBenefits = t.Benefits
	c.TotalExpectedCosts = t.Costs
	c.NetExpectedValue = t.Net

	s.logger.Debug("cba totals refreshed",
		zap.Int64("cba_id", cbaID),
		zap.String("benefits", t.Benefits.String()),
		zap.String("costs", t.Costs.String()),
		zap.String("net", t.Net.String()))
	return c, nil
}

func (s *CBAService) getLikelihood(ctx context.Context, id int64) (*domain.LikelihoodBelief, error) {
	lb, err := s.likelihoodStore.GetBelief(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrLikelihoodNotFound
		}
		return nil, err
	}
	return lb, nil
}
