package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/analyses"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/analyzer"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/config"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/server"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/storage/db"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/storage/object"
	localstore "github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/storage/object/local"
	s3store "github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/shared/storage/object/s3"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/usage"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/vision"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/vision/anthropic"
	"github.com/Ahnhyeongkyu/orange-sweetness-ai/internal/vision/openai"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           object.ObjectStore
	Vision          vision.Client
	Analyzer        *analyzer.Analyzer
	AnalysesRepo    analyses.Repo
	AnalysesService *analyses.Service
	UsageService    *usage.Service
	AnalysisHandler *analyses.Handler
	UsageHandler    *usage.Handler
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	visionClient, err := buildVision(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Vision: visionClient,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AnalysisHandler: app.AnalysisHandler,
		UsageHandler:    app.UsageHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: migrations failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.AWSRegion) == "" || strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires AWS_REGION and S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildVision(cfg config.Config) (vision.Client, error) {
	var (
		client vision.Client
		err    error
	)
	switch cfg.VisionProvider {
	case "anthropic":
		client, err = anthropic.NewClient(os.Getenv("ANTHROPIC_API_KEY"), cfg.VisionModel)
	default:
		client, err = openai.NewClient(os.Getenv("OPENAI_API_KEY"), cfg.VisionModel)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: vision client unavailable, analyses will fail per-image: %v", err)
			return vision.Unconfigured{}, nil
		}
		return nil, err
	}
	return client, nil
}

func buildServices(app *App) {
	var analysisRepo analyses.Repo
	if app.DB != nil {
		analysisRepo = &analyses.PGRepo{DB: app.DB}
	} else {
		analysisRepo = analyses.NewMemoryRepo()
	}

	var usageSvc *usage.Service
	if app.DB != nil {
		usageSvc = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		usageSvc = usage.NewService()
	}

	orangeAnalyzer := analyzer.New(app.Vision)

	analysisSvc := &analyses.Service{
		Repo:            analysisRepo,
		Usage:           usageSvc,
		Store:           app.Store,
		Analyzer:        orangeAnalyzer,
		Provider:        app.Config.VisionProvider,
		Model:           app.Config.VisionModel,
		AnalysisVersion: app.Config.AnalysisVersion,
		MaxImages:       app.Config.MaxImages,
	}

	app.Analyzer = orangeAnalyzer
	app.AnalysesRepo = analysisRepo
	app.AnalysesService = analysisSvc
	app.UsageService = usageSvc
	app.AnalysisHandler = analyses.NewHandler(analysisSvc)
	app.UsageHandler = usage.NewHandler(usageSvc)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
