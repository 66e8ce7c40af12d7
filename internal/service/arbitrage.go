package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Harshitk-cp/ise/internal/arbitrage"
	"github.com/Harshitk-cp/ise/internal/domain"
	"go.uber.org/zap"
)

// ArbitrageService compares stored truth scores with live pool prices.
type ArbitrageService struct {
	marketStore domain.MarketStore
	beliefStore domain.BeliefStore
	logger      *zap.Logger
}

func NewArbitrageService(ms domain.MarketStore, bs domain.BeliefStore, logger *zap.Logger) *ArbitrageService {
	return &ArbitrageService{
		marketStore: ms,
		beliefStore: bs,
		logger:      logger,
	}
}

// Scan ranks every active market by how far its YES price sits from the
// belief's truth score. Pools whose belief has gone missing are skipped.
func (s *ArbitrageService) Scan(ctx context.Context, minDivergence float64, limit int) ([]arbitrage.Opportunity, error) {
	pools, err := s.marketStore.ListActivePools(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active pools: %w", err)
	}

	candidates := make([]arbitrage.Candidate, 0, len(pools))
	for _, p := range pools {
		b, err := s.beliefStore.GetByID(ctx, p.BeliefID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("pool without belief", zap.Int64("belief_id", p.BeliefID))
				continue
			}
			return nil, fmt.Errorf("load belief %d: %w", p.BeliefID, err)
		}
		candidates = append(candidates, arbitrage.Candidate{
			BeliefID:   b.ID,
			Statement:  b.Statement,
			TruthScore: b.TruthScore,
			Pool:       p,
		})
	}

	opps := arbitrage.FindArbitrage(candidates, minDivergence, limit)
	arbitrageOpportunities.Add(float64(len(opps)))
	s.logger.Info("arbitrage scan complete",
		zap.Int("markets", len(candidates)),
		zap.Int("opportunities", len(opps)),
		zap.Float64("min_divergence", minDivergence))
	return opps, nil
}
