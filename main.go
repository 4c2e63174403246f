// go_career: CareerPilot MCP server and HTTP API.
//
// Exposes résumé analysis, job recommendations, mock interviews and learning
// roadmaps as MCP tools and as a JSON API for the web frontend.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_career/internal/careerserver"
	"github.com/anatolykoptev/go_career/internal/engine"
	"github.com/anatolykoptev/go_career/internal/engine/career"
	"github.com/anatolykoptev/go_career/internal/httpapi"
)

var version = "dev"

func main() {
	_ = godotenv.Load()

	var (
		mcpPort  = env.Str("MCP_PORT", "8892")
		httpPort = env.Str("HTTP_PORT", "8080")
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := initEngine(ctx)
	infra := initCareer(ctx, c)
	defer infra.close()

	slog.Info("starting go_career",
		slog.String("mcp_port", mcpPort),
		slog.String("http_port", httpPort),
		slog.String("llm_provider", c.LLMProvider),
	)

	app := httpapi.New(httpapi.Options{
		Queue:       infra.queue,
		Objects:     infra.objects,
		ChromePath:  c.ChromePath,
		CORSOrigins: env.Str("CORS_ORIGINS", ""),
	})
	go func() {
		if err := app.Listen(":" + httpPort); err != nil {
			slog.Error("http api failed", slog.Any("error", err))
		}
	}()
	go func() {
		<-ctx.Done()
		_ = app.ShutdownWithTimeout(10 * time.Second)
	}()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_career",
		Version: version,
	}, nil)
	n := careerserver.RegisterTools(server)
	slog.Info("tools registered", slog.Int("count", n))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_career",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initEngine(ctx context.Context) engine.Config {
	c := loadConfig()

	p, err := newProvider(ctx, c)
	if err != nil {
		slog.Warn("llm provider disabled", slog.String("provider", c.LLMProvider), slog.Any("error", err))
	}
	c.Provider = p

	engine.Init(c)

	cacheTTL := env.Duration("CACHE_TTL", 15*time.Minute)
	engine.InitCache(env.Str("REDIS_URL", ""), cacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)
	return c
}

// loadConfig reads the engine settings from the environment.
func loadConfig() engine.Config {
	return engine.Config{
		LLMProvider:          env.Str("LLM_PROVIDER", "openai"),
		LLMAPIKey:            env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks:   env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:           env.Str("LLM_API_BASE", "https://api.openai.com/v1"),
		LLMModel:             env.Str("LLM_MODEL", "gpt-3.5-turbo"),
		LLMTemperature:       env.Float("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:         env.Int("LLM_MAX_TOKENS", 2048),
		LLMTimeout:           env.Duration("LLM_TIMEOUT", 60*time.Second),
		LLMRatePerSecond:     env.Float("LLM_RATE_PER_SECOND", 0),
		LLMRateBurst:         env.Int("LLM_RATE_BURST", 1),
		AzureEndpoint:        env.Str("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIKey:          env.Str("AZURE_OPENAI_API_KEY", ""),
		AzureDeployment:      env.Str("AZURE_OPENAI_DEPLOYMENT", ""),
		AzureAPIVersion:      env.Str("AZURE_OPENAI_API_VERSION", "2024-04-01-preview"),
		GeminiAPIKey:         env.Str("GEMINI_API_KEY", ""),
		GeminiModel:          env.Str("GEMINI_MODEL", "gemini-2.5-flash"),
		RapidAPIKey:          env.Str("RAPIDAPI_KEY", ""),
		RapidAPIHost:         env.Str("RAPIDAPI_HOST", "jsearch.p.rapidapi.com"),
		MongoURI:             env.Str("MONGODB_URI", ""),
		MongoDatabase:        env.Str("MONGODB_DATABASE", "careerpilot"),
		MongoCollection:      env.Str("MONGODB_COLLECTION", career.DefaultJobCollection),
		DatabaseURL:          env.Str("DATABASE_URL", ""),
		HistoryDBPath:        env.Str("HISTORY_DB_PATH", career.DefaultSQLitePath()),
		S3Bucket:             env.Str("S3_BUCKET", ""),
		S3Endpoint:           env.Str("S3_ENDPOINT", ""),
		S3Region:             env.Str("S3_REGION", ""),
		AMQPURL:              env.Str("AMQP_URL", ""),
		UniDocLicenseKey:     env.Str("UNIDOC_LICENSE_API_KEY", ""),
		ChromePath:           env.Str("CHROME_PATH", ""),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 1000),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

// newProvider builds the chat backend named by LLM_PROVIDER.
func newProvider(ctx context.Context, c engine.Config) (engine.Provider, error) {
	switch c.LLMProvider {
	case "azure":
		return engine.NewOpenAIProvider(engine.OpenAIOptions{
			APIKey:     c.AzureAPIKey,
			Endpoint:   c.AzureEndpoint,
			APIVersion: c.AzureAPIVersion,
			Model:      c.AzureDeployment,
			Timeout:    c.LLMTimeout,
		})
	case "openai-sdk":
		return engine.NewOpenAIProvider(engine.OpenAIOptions{
			APIKey:  c.LLMAPIKey,
			BaseURL: c.LLMAPIBase,
			Model:   c.LLMModel,
			Timeout: c.LLMTimeout,
		})
	case "gemini":
		return engine.NewGeminiProvider(ctx, c.GeminiAPIKey, c.GeminiModel)
	}
	if c.LLMAPIKey == "" {
		return nil, engine.ErrNoProvider
	}
	return engine.NewKitProvider(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel, c.LLMAPIKeyFallbacks,
		c.LLMMaxTokens, c.LLMTemperature, c.LLMTimeout), nil
}

type careerInfra struct {
	queue   *career.AnalysisQueue
	objects *career.ObjectStore
	closers []func()
}

func (i *careerInfra) close() {
	for j := len(i.closers) - 1; j >= 0; j-- {
		i.closers[j]()
	}
}

// initCareer wires the optional stores and services. Every dependency is
// optional; a failure logs a warning and disables that feature.
func initCareer(ctx context.Context, c engine.Config) *careerInfra {
	infra := &careerInfra{}

	if path := env.Str("CAREER_CONFIG", ""); path != "" {
		d, err := career.LoadDefaults(path)
		if err != nil {
			slog.Warn("career config ignored", slog.String("path", path), slog.Any("error", err))
		} else {
			career.SetDefaults(*d)
			slog.Info("career config loaded", slog.String("path", path))
		}
	}

	// History: PostgreSQL when configured, otherwise local SQLite.
	if c.DatabaseURL != "" {
		pg, err := career.ConnectPostgresStore(ctx, c.DatabaseURL)
		if err != nil {
			slog.Warn("postgres history init failed, falling back to sqlite", slog.Any("error", err))
		} else {
			career.SetStore(pg)
			infra.closers = append(infra.closers, func() { _ = pg.Close() })
			slog.Info("history store: postgres")
		}
	}
	if infra.closers == nil {
		lite, err := career.OpenSQLiteStore(c.HistoryDBPath)
		if err != nil {
			slog.Warn("sqlite history init failed", slog.Any("error", err))
		} else {
			career.SetStore(lite)
			infra.closers = append(infra.closers, func() { _ = lite.Close() })
			slog.Info("history store: sqlite", slog.String("path", c.HistoryDBPath))
		}
	}

	if c.MongoURI != "" {
		js, err := career.ConnectMongoJobStore(ctx, c.MongoURI, c.MongoDatabase, c.MongoCollection)
		if err != nil {
			slog.Warn("mongo job store init failed", slog.Any("error", err))
		} else {
			career.SetJobStore(js)
			infra.closers = append(infra.closers, func() { _ = js.Close(context.Background()) })
			slog.Info("job store: mongodb", slog.String("collection", c.MongoCollection))
		}
	}

	if c.RapidAPIKey != "" {
		rc, err := career.NewRapidAPIClient(c.RapidAPIKey, c.RapidAPIHost)
		if err != nil {
			slog.Warn("job search init failed", slog.Any("error", err))
		} else {
			career.SetJobSearcher(rc)
			slog.Info("job search: rapidapi", slog.String("host", c.RapidAPIHost))
		}
	}

	if c.S3Bucket != "" {
		objects, err := career.NewObjectStore(ctx, career.ObjectStoreConfig{
			Bucket:    c.S3Bucket,
			Endpoint:  c.S3Endpoint,
			Region:    c.S3Region,
			AccessKey: env.Str("S3_ACCESS_KEY_ID", ""),
			SecretKey: env.Str("S3_SECRET_ACCESS_KEY", ""),
		})
		if err != nil {
			slog.Warn("object store init failed", slog.Any("error", err))
		} else {
			infra.objects = objects
			slog.Info("resume archive: s3", slog.String("bucket", c.S3Bucket))
		}
	}

	if c.AMQPURL != "" {
		q, err := career.DialAnalysisQueue(c.AMQPURL, infra.objects)
		if err != nil {
			slog.Warn("analysis queue init failed", slog.Any("error", err))
		} else {
			infra.queue = q
			infra.closers = append(infra.closers, func() { _ = q.Close() })
			workers := env.Int("ANALYSIS_WORKERS", 2)
			go func() {
				if err := q.RunWorkers(ctx, workers); err != nil {
					slog.Error("analysis workers stopped", slog.Any("error", err))
				}
			}()
		}
	}

	if c.UniDocLicenseKey != "" {
		if err := career.SetDOCXLicense(c.UniDocLicenseKey); err != nil {
			slog.Warn("docx export disabled", slog.Any("error", err))
		}
	}
	return infra
}
