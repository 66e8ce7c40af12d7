package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshitk-cp/ise/internal/domain"
	"github.com/Harshitk-cp/ise/internal/embedding"
	"github.com/Harshitk-cp/ise/internal/scoring"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const defaultEmbeddingCacheTTL = time.Hour

// EquivalencyService compares belief statements. The lexical layer always
// runs; the semantic layer joins it whenever embeddings are available.
type EquivalencyService struct {
	beliefStore     domain.BeliefStore
	embeddingClient domain.EmbeddingClient
	cache           *gocache.Cache
	logger          *zap.Logger
}

func NewEquivalencyService(bs domain.BeliefStore, ec domain.EmbeddingClient, ttl time.Duration, logger *zap.Logger) *EquivalencyService {
	if ttl <= 0 {
		ttl = defaultEmbeddingCacheTTL
	}
	return &EquivalencyService{
		beliefStore:     bs,
		embeddingClient: ec,
		cache:           gocache.New(ttl, 2*ttl),
		logger:          logger,
	}
}

// Compare scores two statements, using Layer 2 when both embed.
func (s *EquivalencyService) Compare(ctx context.Context, a, b string) scoring.EquivalencyResult {
	semantic, err := s.semantic(ctx, a, b)
	if err != nil {
		s.logger.Warn("embedding failed, comparing lexically only", zap.Error(err))
		return scoring.ScoreEquivalency(a, b, nil)
	}
	return scoring.ScoreEquivalency(a, b, semantic)
}

// CompareBeliefs scores two stored beliefs. Stored embeddings are preferred;
// when either is missing the statements are embedded afresh.
func (s *EquivalencyService) CompareBeliefs(ctx context.Context, aID, bID int64) (scoring.EquivalencyResult, error) {
	a, err := s.getBelief(ctx, aID)
	if err != nil {
		return scoring.EquivalencyResult{}, err
	}
	b, err := s.getBelief(ctx, bID)
	if err != nil {
		return scoring.EquivalencyResult{}, err
	}

	sim, err := s.beliefStore.SemanticSimilarity(ctx, aID, bID)
	if err == nil {
		sim = clampUnit(sim)
		return scoring.ScoreEquivalency(a.Statement, b.Statement, &sim), nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		s.logger.Warn("stored similarity lookup failed",
			zap.Int64("belief_a", aID),
			zap.Int64("belief_b", bID),
			zap.Error(err))
	}
	return s.Compare(ctx, a.Statement, b.Statement), nil
}

// IndexBelief embeds a belief's statement and stores the vector.
func (s *EquivalencyService) IndexBelief(ctx context.Context, beliefID int64) error {
	b, err := s.getBelief(ctx, beliefID)
	if err != nil {
		return err
	}
	if s.embeddingClient == nil {
		return nil
	}
	vec, err := s.embed(ctx, b.Statement)
	if err != nil {
		s.logger.Warn("failed to embed belief, continuing without embedding",
			zap.Int64("belief_id", beliefID),
			zap.Error(err))
		return nil
	}
	if err := s.beliefStore.SetEmbedding(ctx, beliefID, vec); err != nil {
		return fmt.Errorf("store embedding: %w", err)
	}
	return nil
}

// Uniqueness is how different statement is from every prior statement,
// scored with the full equivalency pipeline.
func (s *EquivalencyService) Uniqueness(ctx context.Context, statement string, prior []string) float64 {
	sims := make([]float64, 0, len(prior))
	for _, p := range prior {
		sims = append(sims, s.Compare(ctx, statement, p).EquivalencyScore)
	}
	return scoring.Uniqueness(sims)
}

func (s *EquivalencyService) semantic(ctx context.Context, a, b string) (*float64, error) {
	if s.embeddingClient == nil {
		return nil, nil
	}
	va, err := s.embed(ctx, a)
	if err != nil {
		return nil, err
	}
	vb, err := s.embed(ctx, b)
	if err != nil {
		return nil, err
	}
	sim := embedding.Cosine(va, vb)
	return &sim, nil
}

func (s *EquivalencyService) embed(ctx context.Context, text string) ([]float32, error) {
	key := statementKey(text)
	if v, ok := s.cache.Get(key); ok {
		return v.([]float32), nil
	}
	vec, err := s.embeddingClient.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, vec, gocache.DefaultExpiration)
	return vec, nil
}

func (s *EquivalencyService) getBelief(ctx context.Context, id int64) (*domain.Belief, error) {
	b, err := s.beliefStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrBeliefNotFound
		}
		return nil, err
	}
	return b, nil
}

func statementKey(text string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(text))))
	return hex.EncodeToString(sum[:])
}

func clampUnit(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
