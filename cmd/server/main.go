package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/landonharris622-gif/Primal-live/internal/cache"
	"github.com/landonharris622-gif/Primal-live/internal/config"
	"github.com/landonharris622-gif/Primal-live/internal/domain"
	"github.com/landonharris622-gif/Primal-live/internal/handler"
	"github.com/landonharris622-gif/Primal-live/internal/hub"
	"github.com/landonharris622-gif/Primal-live/internal/ingest"
	"github.com/landonharris622-gif/Primal-live/internal/repository"
	"github.com/landonharris622-gif/Primal-live/internal/service"
	"github.com/landonharris622-gif/Primal-live/internal/store"
	"github.com/landonharris622-gif/Primal-live/pkg/database"
	"github.com/landonharris622-gif/Primal-live/pkg/jwt"
	pkglog "github.com/landonharris622-gif/Primal-live/pkg/log"
	"github.com/landonharris622-gif/Primal-live/pkg/middleware"
	"github.com/landonharris622-gif/Primal-live/pkg/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		bootLogger := pkglog.L()
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Initialize structured logger
	pkglog.Init(pkglog.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
	logger := pkglog.L()

	if cfg.JWT.Secret == "" {
		logger.Fatal().Msg("JWT_SECRET must be set")
	}

	logger.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting primal-live")

	// Connect to database using GORM
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	// Auto-migrate
	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.StreamModel{},
		&domain.ChatMessageModel{},
		&domain.VodModel{},
	); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}

	// Stream cache
	streamCache, err := cache.NewRedisStreamCache(cfg.Redis, cfg.Cache.Prefix)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer streamCache.Close()

	// Media storage
	files, localFiles, err := newStorage(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	// Token manager and auth middleware
	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessDuration, cfg.JWT.RefreshDuration, cfg.JWT.Issuer)
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// Relay hub
	registry := hub.NewRegistry()
	router := hub.NewRouter(registry)

	// Presence store
	presenceStore := store.NewMemoryStore()

	// RTMP ingest provisioner, optional
	var provisioner ingest.Provisioner
	mux := ingest.NewMuxProvisioner(ingest.MuxConfig{
		TokenID:     cfg.Mux.TokenID,
		TokenSecret: cfg.Mux.TokenSecret,
	})
	if mux.Configured() {
		provisioner = mux
	} else {
		logger.Warn().Msg("mux credentials not set, rtmp ingest disabled")
	}

	// Repositories
	userRepo := repository.NewGormUserRepository(db)
	streamRepo := repository.NewGormStreamRepository(db)
	chatRepo := repository.NewGormChatRepository(db)
	vodRepo := repository.NewGormVodRepository(db)

	// Services
	userService := service.NewUserService(userRepo, tokens)
	streamService := service.NewStreamService(streamRepo, streamCache, presenceStore, router, files, provisioner)
	presenceService := service.NewPresenceService(streamRepo, presenceStore, streamCache)
	chatService := service.NewChatService(chatRepo, streamRepo, router)
	vodService := service.NewVodService(vodRepo, files)

	// Handlers
	httpHandler := handler.NewHandler(userService, streamService, presenceService, chatService, vodService, authMiddleware)
	wsHandler := handler.NewWSHandler(router, cfg.Relay)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(pkglog.GinMiddleware(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/ws", wsHandler.HandleWebSocket)
	httpHandler.RegisterRoutes(engine)

	// Serve local uploads directly
	if localFiles != nil {
		engine.Static("/uploads", localFiles.BasePath())
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // uploads and websocket upgrades
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", addr).Msg("primal-live listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down primal-live")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
	logger.Info().Msg("primal-live stopped")
}

// newStorage builds the configured storage backend. The second return
// value is non-nil only for local storage so main can mount the static
// file route.
func newStorage(cfg *config.Config) (storage.Storage, *storage.LocalStorage, error) {
	switch cfg.Storage.Driver {
	case "s3":
		s3Store, err := storage.NewS3Storage(context.Background(), cfg.Storage.S3)
		if err != nil {
			return nil, nil, err
		}
		return s3Store, nil, nil
	case "local", "":
		local, err := storage.NewLocalStorage(cfg.Storage.Local)
		if err != nil {
			return nil, nil, err
		}
		return local, local, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}
}
