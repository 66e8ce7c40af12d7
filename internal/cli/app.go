package cli

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/ise/internal/config"
	"github.com/Harshitk-cp/ise/internal/embedding"
	"github.com/Harshitk-cp/ise/internal/llm"
	"github.com/Harshitk-cp/ise/internal/scoring"
	"github.com/Harshitk-cp/ise/internal/service"
	"github.com/Harshitk-cp/ise/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// App holds the database-backed services.
type App struct {
	Trees       *service.TreeService
	Equivalency *service.EquivalencyService
	CBA         *service.CBAService
	Markets     *service.MarketService
	Arbitrage   *service.ArbitrageService
	Expirer     *service.ExpirerService
}

func newResolver() *scoring.Resolver {
	return scoring.NewResolver(scoring.Config{
		Damping:           config.ReasonRankDamping(),
		MaxDepth:          config.ReasonRankMaxDepth(),
		EvidenceWeight:    config.EvidenceWeight(),
		EvidenceScale:     scoring.DefaultEvidenceScale,
		DebunkedThreshold: scoring.DefaultDebunkedThreshold,
	})
}

func NewApp(db *pgxpool.Pool, logger *zap.Logger) *App {
	// Stores
	beliefStore := store.NewBeliefStore(db)
	argumentStore := store.NewArgumentStore(db)
	linkageStore := store.NewLinkageStore(db)
	evidenceStore := store.NewEvidenceStore(db)
	historyStore := store.NewScoreHistoryStore(db)
	likelihoodStore := store.NewLikelihoodStore(db)
	cbaStore := store.NewCBAStore(db)
	marketStore := store.NewMarketStore(db)

	resolver := newResolver()

	// Services
	treeSvc := service.NewTreeService(beliefStore, argumentStore, linkageStore, evidenceStore, historyStore, resolver, logger)
	treeSvc.SetConcurrency(config.RecomputeConcurrency())

	llmProvider := config.LLMProvider()
	detector, err := llm.NewClient(llmProvider, config.LLMAPIKey(), llm.WithModel(config.LLMModel()))
	if err != nil {
		logger.Warn("LLM client initialization failed", zap.String("provider", llmProvider), zap.Error(err))
	} else {
		treeSvc.SetFallacyDetector(detector)
		logger.Info("LLM client initialized", zap.String("provider", llmProvider))
	}

	embeddingProvider := config.EmbeddingProvider()
	embeddingClient, err := embedding.NewClient(embeddingProvider, config.EmbeddingAPIKey(), embedding.WithModel(config.EmbeddingModel()))
	if err != nil {
		logger.Warn("Embedding client initialization failed", zap.String("provider", embeddingProvider), zap.Error(err))
	} else {
		logger.Info("Embedding client initialized", zap.String("provider", embeddingProvider))
	}

	marketSvc := service.NewMarketService(marketStore, beliefStore, logger)
	expirerSvc := service.NewExpirerService(marketSvc, logger)
	expirerSvc.SetInterval(config.ExpirerInterval())

	return &App{
		Trees:       treeSvc,
		Equivalency: service.NewEquivalencyService(beliefStore, embeddingClient, config.EmbeddingCacheTTL(), logger),
		CBA:         service.NewCBAService(likelihoodStore, cbaStore, resolver, logger),
		Markets:     marketSvc,
		Arbitrage:   service.NewArbitrageService(marketStore, beliefStore, logger),
		Expirer:     expirerSvc,
	}
}

// openApp connects to DATABASE_URL and wires the services. The returned
// func closes the pool.
func openApp(ctx context.Context, logger *zap.Logger) (*App, func(), error) {
	dbURL := config.DatabaseURL()
	if dbURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")
	return NewApp(pool, logger), pool.Close, nil
}
