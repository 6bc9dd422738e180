package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/greenleaf/internal/app/auth"
	appControllers "github.com/yigit/greenleaf/internal/app/controllers"
	appMigrations "github.com/yigit/greenleaf/internal/app/migrations"
	appRepos "github.com/yigit/greenleaf/internal/app/repositories"
	"github.com/yigit/greenleaf/internal/app/repositories/memory"
	"github.com/yigit/greenleaf/internal/app/repositories/mongodb"
	"github.com/yigit/greenleaf/internal/app/repositories/postgres"
	appRoutes "github.com/yigit/greenleaf/internal/app/routes"
	appServices "github.com/yigit/greenleaf/internal/app/services"
	"github.com/yigit/greenleaf/internal/config"
	"github.com/yigit/greenleaf/internal/db"
	appMiddleware "github.com/yigit/greenleaf/internal/middleware"
	pkgAuth "github.com/yigit/greenleaf/internal/pkg/auth"
	"github.com/yigit/greenleaf/internal/pkg/filestorage"
	"github.com/yigit/greenleaf/internal/pkg/logger"
	"github.com/yigit/greenleaf/internal/pkg/metrics"
	"github.com/yigit/greenleaf/internal/pkg/validation"
	"github.com/yigit/greenleaf/internal/pkg/vision"
	"github.com/yigit/greenleaf/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	AuthService      *appServices.AuthService
	UserService      appServices.UserService
	CommunityService appServices.CommunityService
	PostService      appServices.PostService
	ReplyService     appServices.ReplyService
	AnalysisService  *appServices.AnalysisService
	Controllers      *appRoutes.Controllers
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Repos            *appRepos.Repositories
	JWTService       *pkgAuth.JWTService
	AuthzService     *appAuth.AuthorizationService
	FileStorage      filestorage.FileStorage
	Vision           vision.Client
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath, ".env")
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	lgr.Info().
		Str("logLevel", cfg.Logging.Level).
		Str("logFormat", cfg.Logging.Format).
		Str("mode", cfg.Server.Mode).
		Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase connects the configured driver and prepares its schema.
// Failing to reach the store is fatal for the caller.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*appRepos.Repositories, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")

	switch cfg.Database.Driver {
	case config.DriverMongo:
		database, err := db.NewMongoDB(cfg)
		if err != nil {
			return nil, err
		}
		if err := mongodb.EnsureIndexes(ctx, database.Database); err != nil {
			_ = database.Close(context.Background())
			return nil, fmt.Errorf("failed to create mongodb indexes: %w", err)
		}
		lgr.Info().Str("database", cfg.Database.DBName).Msg("MongoDB connection established")
		return mongodb.NewRepositories(database.Database), nil

	case config.DriverPostgres:
		database, err := db.NewPostgresDB(cfg, lgr)
		if err != nil {
			return nil, err
		}
		lgr.Info().Msg("Running database migrations...")
		migrator := appMigrations.NewMigrator(database, appMigrations.Files(), lgr)
		if err := migrator.Up(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
		lgr.Info().Msg("Database migrations successfully applied.")
		return postgres.NewRepositories(database), nil

	case config.DriverMemory:
		lgr.Warn().Msg("Using in-memory storage; data is lost on restart")
		return memory.NewRepositories(), nil
	}

	return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
}

// SetupFileStorage builds the object store for uploaded images
func SetupFileStorage(cfg *config.Config, lgr zerolog.Logger) (filestorage.FileStorage, error) {
	if cfg.Storage.Driver == config.StorageS3 {
		return filestorage.NewS3Storage(filestorage.S3Config{
			Bucket:         cfg.Storage.S3Bucket,
			Region:         cfg.Storage.S3Region,
			Endpoint:       cfg.Storage.S3Endpoint,
			ForcePathStyle: cfg.Storage.S3ForcePath,
			PublicURL:      cfg.Storage.S3PublicURL,
			ObjectACL:      cfg.Storage.S3ObjectACL,
			KeyPrefix:      cfg.Storage.S3KeyPrefix,
		}, lgr.With().Str("component", "s3storage").Logger())
	}
	return filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.PublicBaseURL()+"/uploads",
		lgr.With().Str("component", "localstorage").Logger())
}

// SetupVision creates the shared vision model client. Without an API key every
// analysis request fails with an external service error.
func SetupVision(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (vision.Client, error) {
	if cfg.Vision.APIKey == "" {
		lgr.Warn().Msg("GEMINI_API_KEY not set; plant analysis is disabled")
		return vision.DisabledClient{}, nil
	}
	client, err := vision.NewGeminiClient(ctx, cfg.Vision.APIKey, cfg.Vision.Model, cfg.VisionTimeout())
	if err != nil {
		return nil, err
	}
	lgr.Info().Str("model", cfg.Vision.Model).Msg("Vision model client ready")
	return client, nil
}

// BuildDependencies initializes application services and controllers.
func BuildDependencies(
	cfg *config.Config,
	repos *appRepos.Repositories,
	storage filestorage.FileStorage,
	visionClient vision.Client,
	lgr zerolog.Logger,
) (*Dependencies, error) {
	if err := validation.RegisterCustomRules(); err != nil {
		return nil, fmt.Errorf("failed to register validation rules: %w", err)
	}

	deps := &Dependencies{
		Repos:       repos,
		FileStorage: storage,
		Vision:      visionClient,
		Logger:      lgr,
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	deps.AuthzService = appAuth.NewAuthorizationService(cfg.Authorization.EnforceOwnerOnDelete, component(lgr, "authz"))

	deps.AuthService = appServices.NewAuthService(repos.UserRepository, deps.JWTService,
		cfg.Users.DefaultProfileImage, component(lgr, "auth"))
	deps.UserService = appServices.NewUserService(repos.UserRepository, cfg.Users.DefaultProfileImage, component(lgr, "users"))
	deps.CommunityService = appServices.NewCommunityService(repos, deps.AuthzService, component(lgr, "communities"))
	deps.PostService = appServices.NewPostService(repos, deps.AuthzService, component(lgr, "posts"))
	deps.ReplyService = appServices.NewReplyService(repos, deps.AuthzService, component(lgr, "replies"))
	deps.AnalysisService = appServices.NewAnalysisService(visionClient, component(lgr, "analysis"))

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	maxUpload := cfg.Server.MaxUploadMB << 20
	deps.Controllers = &appRoutes.Controllers{
		Auth:      appControllers.NewAuthController(deps.AuthService, lgr),
		User:      appControllers.NewUserController(deps.UserService, lgr),
		Community: appControllers.NewCommunityController(deps.CommunityService),
		Post:      appControllers.NewPostController(deps.PostService),
		Reply:     appControllers.NewReplyController(deps.ReplyService),
		Analysis:  appControllers.NewAnalysisController(deps.AnalysisService, maxUpload, lgr),
		Upload:    appControllers.NewUploadController(storage, cfg.Storage.UploadsSubdir, maxUpload, lgr),
	}

	if cfg.Seed.Enabled {
		err := seed.CreateDefaultData(context.Background(), repos, seed.Options{
			AdminEmail:          cfg.Seed.AdminEmail,
			AdminPassword:       cfg.Seed.AdminPassword,
			DefaultProfileImage: cfg.Users.DefaultProfileImage,
		}, lgr)
		if err != nil {
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return deps, nil
}

func component(lgr zerolog.Logger, name string) zerolog.Logger {
	return lgr.With().Str("component", name).Logger()
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(component(lgr, "http")))
	router.Use(metrics.GinMiddleware())
	router.Use(cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	router.MaxMultipartMemory = cfg.Server.MaxUploadMB << 20

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)

	if cfg.Storage.Driver == config.StorageLocal {
		router.Static("/uploads", cfg.Server.StoragePath)
		lgr.Info().Str("path", cfg.Server.StoragePath).Msg("Static file serving configured for uploads directory")
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(origins) == 0 || (len(origins) == 1 && strings.TrimSpace(origins[0]) == "*") {
		corsCfg.AllowAllOrigins = true
		return corsCfg
	}
	corsCfg.AllowOrigins = origins
	return corsCfg
}
