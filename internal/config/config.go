package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by ISE_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("ISE_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

// LLMProvider returns the configured fallacy-detection provider.
// Defaults to "mock" if not set.
// Valid values: openai, anthropic, mock
func LLMProvider() string {
	return stringOr("LLM_PROVIDER", "mock")
}

// EmbeddingProvider returns the configured embedding provider.
// Defaults to "mock" if not set.
// Valid values: openai, mock
func EmbeddingProvider() string {
	return stringOr("EMBEDDING_PROVIDER", "mock")
}

// LLMModel overrides the provider's default fallacy-detection model.
func LLMModel() string {
	return os.Getenv("LLM_MODEL")
}

// EmbeddingModel overrides the provider's default embedding model. The
// model must produce vectors of embedding.Dimensions.
func EmbeddingModel() string {
	return os.Getenv("EMBEDDING_MODEL")
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "anthropic":
		return AnthropicAPIKey()
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// EmbeddingAPIKey returns the API key for the configured embedding provider.
func EmbeddingAPIKey() string {
	switch EmbeddingProvider() {
	case "mock":
		return ""
	default:
		return OpenAIAPIKey()
	}
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	return stringOr("LOG_LEVEL", "info")
}

// ReasonRankDamping is the weight of the sub-debate against an argument's own truth.
func ReasonRankDamping() float64 {
	return floatOr("REASONRANK_DAMPING", 0.5)
}

func ReasonRankMaxDepth() int {
	return intOr("REASONRANK_MAX_DEPTH", 32)
}

// EvidenceWeight bounds how far evidence can move a truth score.
func EvidenceWeight() float64 {
	return floatOr("EVIDENCE_WEIGHT", 0.25)
}

func RecomputeConcurrency() int {
	return intOr("RECOMPUTE_CONCURRENCY", 4)
}

func ExpirerInterval() time.Duration {
	return durationOr("EXPIRER_INTERVAL", time.Minute)
}

func ArbitrageMinDivergence() float64 {
	return floatOr("ARBITRAGE_MIN_DIVERGENCE", 0.05)
}

func EmbeddingCacheTTL() time.Duration {
	return durationOr("EMBEDDING_CACHE_TTL", time.Hour)
}

func stringOr(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func intOr(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func floatOr(key string, def float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func durationOr(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
