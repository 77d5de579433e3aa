package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HansenDafa/indostereoset-annotation/internal/auth"
	"github.com/HansenDafa/indostereoset-annotation/internal/config"
	"github.com/HansenDafa/indostereoset-annotation/internal/handler"
	"github.com/HansenDafa/indostereoset-annotation/internal/llm"
	"github.com/HansenDafa/indostereoset-annotation/internal/middleware"
	"github.com/HansenDafa/indostereoset-annotation/internal/repository"
	"github.com/HansenDafa/indostereoset-annotation/internal/service"
	"github.com/HansenDafa/indostereoset-annotation/internal/state"
)

var (
	configPath string
	envFile    string
	port       string
)

var rootCmd = &cobra.Command{
	Use:   "annotation-server",
	Short: "Serve the bias annotation API",
	Long: `Runs the HTTP API used by admins, generators and annotators to build a
stereotype / anti-stereotype / unrelated sentence dataset. State lives in memory
and is lost on restart; download annotations.json to keep it.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config.yml", "path to the YAML config file")
	rootCmd.Flags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the config is expanded")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides server.port)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Log.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	}
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	zapCfg.Level = level
	return zapCfg.Build()
}

func openArchive(cfg *config.Config, logger *zap.Logger) (repository.ExportRepository, error) {
	if cfg.Archive.Type == "sqlite" {
		if err := os.MkdirAll(filepath.Dir(cfg.Archive.Path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	db, err := repository.Open(cfg.Archive.Type, cfg.Archive.Path, logger)
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(db, cfg.Archive.Type, logger); err != nil {
		db.Close()
		return nil, err
	}
	return repository.NewExportRepository(db, logger), nil
}

func run(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadConfig(configPath, envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = port
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("Starting Annotation Server...")

	hasher, err := auth.NewHasher(cfg.Auth.PasswordHashing)
	if err != nil {
		return err
	}
	reducer := state.NewReducer(hasher)
	initial, err := reducer.Initial()
	if err != nil {
		return fmt.Errorf("failed to seed state: %w", err)
	}
	store := state.NewStore(initial)

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Warn("auth.jwt_secret not set, sessions end on restart")
	}

	var archive repository.ExportRepository
	if cfg.Archive.Enabled {
		archive, err = openArchive(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize export archive: %w", err)
		}
		defer archive.Close()
	}

	// Draft assistant is optional
	var drafter service.Drafter
	if len(cfg.Providers) > 0 {
		multiClient, err := llm.NewMultiProviderClient(llm.MultiProviderConfig{
			Providers:   cfg.Providers,
			MaxFailures: cfg.MaxFailuresBeforeSwitch,
		}, logger)
		if err != nil {
			logger.Warn("Failed to initialize draft providers, drafts disabled", zap.Error(err))
		} else {
			drafter = multiClient
			defer multiClient.Close()
			logger.Info("Draft assistant initialized",
				zap.Int("provider_count", len(cfg.Providers)))
		}
	}

	authService := auth.NewService(store, reducer, tokens, logger)
	apiHandler := handler.NewHandler(
		authService,
		service.NewAdminService(store, reducer, archive, logger),
		service.NewGeneratorService(store, reducer, drafter, logger),
		service.NewAnnotatorService(store, reducer, logger),
		logger,
	)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.Logger(logger), middleware.CORS())
	apiHandler.RegisterRoutes(router)

	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("address", serverAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("Annotation Server is running",
		zap.String("port", cfg.Server.Port),
		zap.Bool("archive", archive != nil),
		zap.Bool("drafts", drafter != nil))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("Server exited")
	return nil
}
