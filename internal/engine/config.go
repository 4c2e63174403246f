package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	// LLMProvider selects the chat backend: "openai" (OpenAI-compatible via go-kit),
	// "azure", "openai-sdk" or "gemini".
	LLMProvider        string
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMTimeout         time.Duration
	LLMRatePerSecond   float64
	LLMRateBurst       int

	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string
	AzureAPIVersion string

	GeminiAPIKey string
	GeminiModel  string

	RapidAPIKey  string
	RapidAPIHost string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	DatabaseURL   string // postgres; empty = sqlite history
	HistoryDBPath string

	S3Bucket   string
	S3Endpoint string // R2 / MinIO; empty = AWS
	S3Region   string

	AMQPURL string

	UniDocLicenseKey string
	ChromePath       string

	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient *http.Client
	Provider   Provider // nil = LLM features return ErrNoProvider
	Retry      RetryConfig
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (career).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.Retry.MaxRetries == 0 && c.Retry.InitialWait == 0 {
		c.Retry = DefaultRetryConfig
	}
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	cfg = c
	Cfg = &cfg
	initLimiter(c.LLMRatePerSecond, c.LLMRateBurst)
}

// SetProvider swaps the LLM provider. Used by main after Init and by tests.
func SetProvider(p Provider) {
	cfg.Provider = p
}
