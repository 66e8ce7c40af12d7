package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type BeliefStore interface {
	Create(ctx context.Context, b *Belief) error
	GetByID(ctx context.Context, id int64) (*Belief, error)
	ListIDs(ctx context.Context) ([]int64, error)
	UpdateScores(ctx context.Context, id int64, scores BeliefScores, adversarialCycles int) error
	SetEmbedding(ctx context.Context, id int64, embedding []float32) error
	// SemanticSimilarity is the cosine similarity of two stored statement embeddings.
	SemanticSimilarity(ctx context.Context, a, b int64) (float64, error)
}

type ArgumentStore interface {
	Create(ctx context.Context, a *Argument) error
	GetByID(ctx context.Context, id int64) (*Argument, error)
	ListByBelief(ctx context.Context, beliefID int64) ([]Argument, error)
	UpdateDerived(ctx context.Context, id int64, linkageScore, impactScore float64) error
	SetFallacies(ctx context.Context, id int64, fallacies []FallacyType) error
}

type LinkageStore interface {
	Create(ctx context.Context, l *LinkageArgument) error
	ListByArgument(ctx context.Context, argumentID int64) ([]LinkageArgument, error)
	ListByBelief(ctx context.Context, beliefID int64) ([]LinkageArgument, error)
}

type EvidenceStore interface {
	Create(ctx context.Context, e *Evidence) error
	ListByBelief(ctx context.Context, beliefID int64) ([]Evidence, error)
}

type ScoreHistoryStore interface {
	Append(ctx context.Context, p ScorePoint) error
	ListSince(ctx context.Context, beliefID int64, since time.Time) ([]ScorePoint, error)
}

type LikelihoodStore interface {
	CreateEstimate(ctx context.Context, e *LikelihoodEstimate) error
	// GetBelief returns the likelihood belief with every estimate and its arguments and evidence.
	GetBelief(ctx context.Context, id int64) (*LikelihoodBelief, error)
	SetActive(ctx context.Context, beliefID, activeEstimateID int64, activeLikelihood float64, scores map[int64]float64) error
}

type CBAStore interface {
	GetByID(ctx context.Context, id int64) (*CBA, error)
	CreateItem(ctx context.Context, item *CBALineItem) error
	GetItemByLikelihoodBelief(ctx context.Context, likelihoodBeliefID int64) (*CBALineItem, error)
	UpdateItemExpectedValue(ctx context.Context, itemID int64, expectedValue decimal.Decimal) error
	UpdateTotals(ctx context.Context, cbaID int64, benefits, costs, net decimal.Decimal) error
}

type MarketStore interface {
	CreatePool(ctx context.Context, p *LiquidityPool) error
	GetPool(ctx context.Context, beliefID int64) (*LiquidityPool, error)
	ListActivePools(ctx context.Context) ([]LiquidityPool, error)
	ListExpirable(ctx context.Context, now time.Time) ([]LiquidityPool, error)
	GetBalance(ctx context.Context, userID int64) (*UserBalance, error)
	ListShares(ctx context.Context, userID int64) ([]Share, error)
	// WithTx runs fn in one transaction. Returning an error rolls back every write.
	WithTx(ctx context.Context, fn func(tx MarketTx) error) error
}

// MarketTx is the locked view of market state inside one transaction.
// Lock methods hold their rows until the transaction ends.
type MarketTx interface {
	LockPool(ctx context.Context, beliefID int64) (*LiquidityPool, error)
	LockBalance(ctx context.Context, userID int64) (*UserBalance, error)
	GetShare(ctx context.Context, userID, beliefID int64, outcome Outcome) (*Share, error)
	ListSharesByBelief(ctx context.Context, beliefID int64) ([]Share, error)
	SavePool(ctx context.Context, p LiquidityPool) error
	SaveBalance(ctx context.Context, b UserBalance) error
	SaveShare(ctx context.Context, s Share) error
	DeleteShare(ctx context.Context, userID, beliefID int64, outcome Outcome) error
	InsertTrade(ctx context.Context, t Trade) error
}

type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// FallacyDetector reports the reasoning flaws found in an argument made
// against its parent claim. Repeated types count as separate instances.
type FallacyDetector interface {
	DetectFallacies(ctx context.Context, statement, parentStatement string) ([]FallacyType, error)
}
