package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"offertanalys/internal/categories"
	"offertanalys/internal/comparisons"
	"offertanalys/internal/extract"
	"offertanalys/internal/files"
	"offertanalys/internal/llm"
	"offertanalys/internal/llm/openai"
	"offertanalys/internal/quotes"
	"offertanalys/internal/services/health"
	"offertanalys/internal/shared/config"
	"offertanalys/internal/shared/server"
	"offertanalys/internal/shared/storage/db"
	"offertanalys/internal/shared/storage/object"
	gcsstore "offertanalys/internal/shared/storage/object/gcs"
	localstore "offertanalys/internal/shared/storage/object/local"
	s3store "offertanalys/internal/shared/storage/object/s3"
	"offertanalys/internal/shared/telemetry"
	"offertanalys/internal/suppliers"
)

// App holds the wired dependencies of one process.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.BlobStore

	QuotesRepo      quotes.Repo
	SuppliersRepo   suppliers.Repo
	CategoriesRepo  categories.Repo
	ComparisonsRepo comparisons.Repo

	Quotes      *quotes.Service
	Suppliers   *suppliers.Service
	Comparisons *comparisons.Service
	Files       *files.Service
}

// Options tweak Build. The zero value connects to whatever cfg names.
type Options struct {
	// DBOptions defaults to db.DefaultServerOptions.
	DBOptions *db.Options
	// SkipRouter leaves App.Router nil, for the worker.
	SkipRouter bool
	// LLM overrides the model client, mainly for tests.
	LLM interface {
		llm.Completer
		llm.DocumentReader
	}
}

// Build connects storage and the model client and wires the services.
func Build(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg, opts)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}
	model, vision, err := buildLLM(cfg, opts)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB, Store: store}
	app.buildRepos()

	maxTokens := cfg.LLMMaxTokens
	reconciler := suppliers.NewReconciler(app.SuppliersRepo)
	extractor := extract.New(cfg.PdftotextPath, vision)
	app.Quotes = &quotes.Service{
		Repo:         app.QuotesRepo,
		Store:        store,
		Extractor:    extractor,
		LLM:          model,
		MaxTokens:    maxTokens,
		Suppliers:    reconciler,
		Categories:   app.CategoriesRepo,
		QuoteTimeout: time.Duration(cfg.QuoteTimeoutSec) * time.Second,
	}
	app.Suppliers = &suppliers.Service{Repo: app.SuppliersRepo}
	app.Files = &files.Service{Extractor: extractor, Store: store, Specs: app.CategoriesRepo}
	app.Comparisons = &comparisons.Service{
		Engine:     &comparisons.Engine{LLM: model, MaxTokens: maxTokens},
		Repo:       app.ComparisonsRepo,
		Quotes:     app.QuotesRepo,
		Categories: app.CategoriesRepo,
	}

	if !opts.SkipRouter {
		var pinger health.Pinger
		if sqlDB != nil {
			pinger = sqlDB
		}
		app.Router = server.NewRouter(server.RouterDeps{
			Config: cfg,
			Handlers: []server.RouteRegistrar{
				health.NewHandler(health.NewService(pinger, cfg.Env)),
				quotes.NewHandler(app.Quotes),
				comparisons.NewHandler(app.Comparisons),
				suppliers.NewHandler(app.Suppliers),
				files.NewHandler(app.Files),
			},
		})
	}

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"database":     sqlDB != nil,
		"object_store": cfg.ObjectStoreType,
		"llm_provider": cfg.LLMProvider,
		"llm_model":    cfg.LLMModel,
	})
	return app, nil
}

// Close releases the database pool and the object store client.
func (a *App) Close() error {
	var firstErr error
	if c, ok := a.Store.(io.Closer); ok {
		if err := c.Close(); err != nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (a *App) buildRepos() {
	if a.DB != nil {
		a.QuotesRepo = &quotes.PGRepo{DB: a.DB}
		a.SuppliersRepo = &suppliers.PGRepo{DB: a.DB}
		a.CategoriesRepo = &categories.PGRepo{DB: a.DB}
		a.ComparisonsRepo = &comparisons.PGRepo{DB: a.DB}
		return
	}
	a.QuotesRepo = quotes.NewMemoryRepo()
	a.SuppliersRepo = suppliers.NewMemoryRepo()
	a.CategoriesRepo = categories.NewMemoryRepo()
	a.ComparisonsRepo = comparisons.NewMemoryRepo()
}

func buildDB(ctx context.Context, cfg config.Config, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	dbOpts := db.OptionsFromEnv(db.DefaultServerOptions())
	if opts.DBOptions != nil {
		dbOpts = db.OptionsFromEnv(*opts.DBOptions)
	}
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, dbOpts)
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_repos", map[string]any{"reason": "connect failed", "error": err})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		closeDB(sqlDB)
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.BlobStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "gcs":
		if strings.TrimSpace(cfg.GCSBucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=gcs requires GCS_BUCKET")
		}
		return gcsstore.New(ctx, cfg.GCSBucket, cfg.GCSPrefix, cfg.GCSCredentialsJSON)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

// buildLLM returns the text client and the vision client. Without an OpenAI
// key the placeholder is used and every model call fails as not implemented.
func buildLLM(cfg config.Config, opts Options) (llm.Completer, llm.DocumentReader, error) {
	if opts.LLM != nil {
		return opts.LLM, opts.LLM, nil
	}
	if cfg.LLMProvider != "openai" || strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
		telemetry.Warn("bootstrap.llm_placeholder", map[string]any{"provider": cfg.LLMProvider})
		return llm.PlaceholderClient{}, llm.PlaceholderClient{}, nil
	}
	text, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel)
	if err != nil {
		return nil, nil, err
	}
	if cfg.LLMVisionModel == "" || cfg.LLMVisionModel == cfg.LLMModel {
		return text, text, nil
	}
	vision, err := openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMVisionModel)
	if err != nil {
		return nil, nil, err
	}
	return text, vision, nil
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}
