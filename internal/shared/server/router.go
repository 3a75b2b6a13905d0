package server

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"seo-backend/internal/audits"
	"seo-backend/internal/dataforseo"
	"seo-backend/internal/documents"
	"seo-backend/internal/insights"
	"seo-backend/internal/llm"
	"seo-backend/internal/llm/openai"
	"seo-backend/internal/pagetext"
	"seo-backend/internal/shared/config"
	"seo-backend/internal/shared/metrics"
	"seo-backend/internal/shared/server/middleware"
	"seo-backend/internal/shared/server/respond"
	"seo-backend/internal/shared/storage/db"
	"seo-backend/internal/shared/telemetry"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)

	// Dependencies
	seoClient, err := dataforseo.New(dataforseo.Config{
		Login:           cfg.DataForSEOLogin,
		Password:        cfg.DataForSEOPass,
		BaseURL:         cfg.DataForSEOBaseURL,
		PollMaxAttempts: cfg.PollMaxAttempts,
		PollInterval:    cfg.PollInterval,
	})
	if err != nil {
		return nil, err
	}

	llmClient := newLLMClient(cfg)
	fetcher := pagetext.NewFetcher(10 * time.Second)

	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		dbConn, err := db.Connect(context.Background(), cfg.DatabaseURL, opts)
		if err != nil {
			telemetry.Error("db.connect.failed", map[string]any{"err": err.Error()})
		} else if err := db.RunMigrations(context.Background(), dbConn); err != nil {
			telemetry.Error("db.migrate.failed", map[string]any{"err": err.Error()})
			dbConn.Close()
		} else {
			sqlDB = dbConn
		}
	}

	var auditRepo audits.Repo
	if sqlDB != nil {
		auditRepo = &audits.PGRepo{DB: sqlDB}
	} else {
		auditRepo = audits.NewMemoryRepo()
	}

	insightSvc, err := insights.NewService(seoClient, cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	insightHandler := insights.NewHandler(insightSvc)
	auditHandler := audits.NewHandler(audits.NewService(auditRepo, seoClient, fetcher, llmClient))
	docHandler := documents.NewHandler(documents.NewService(llmClient), cfg.Env)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})

	// Upstream SEO lookups are billed per call; keep them behind a limiter.
	limited := api.Group("")
	limited.Use(middleware.RateLimit(middleware.RateLimitConfig{
		Rules: map[string]middleware.RateLimitRule{
			"INSIGHTS": {Rate: 1, Burst: 5},
			"AUDITS":   {Rate: 0.2, Burst: 2},
		},
		GroupFor: func(c *gin.Context) string {
			switch {
			case strings.HasPrefix(c.FullPath(), "/api/v1/insights"):
				return "INSIGHTS"
			case c.Request.Method == http.MethodPost && strings.HasPrefix(c.FullPath(), "/api/v1/audits"):
				return "AUDITS"
			default:
				return ""
			}
		},
	}))
	insightHandler.RegisterRoutes(limited)
	auditHandler.RegisterRoutes(limited)
	docHandler.RegisterRoutes(api)

	return r, nil
}

func newLLMClient(cfg config.Config) llm.Client {
	if cfg.LLMProvider != "openai" {
		telemetry.Info("llm.provider.unsupported", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}
	}
	client, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.LLMModel)
	if err != nil {
		telemetry.Error("llm.init.failed", map[string]any{"err": err.Error()})
		return llm.PlaceholderClient{}
	}
	return client
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
