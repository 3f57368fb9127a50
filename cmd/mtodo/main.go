package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/xxxsen/mtodo/internal/config"
	"github.com/xxxsen/mtodo/internal/db"
	"github.com/xxxsen/mtodo/internal/handler"
	"github.com/xxxsen/mtodo/internal/middleware"
	"github.com/xxxsen/mtodo/internal/pkg/jwt"
	"github.com/xxxsen/mtodo/internal/pkg/password"
	"github.com/xxxsen/mtodo/internal/repo"
	"github.com/xxxsen/mtodo/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "mtodo",
		Short: "mtodo todo service",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.json (environment variables override it)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run mtodo server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := bootstrap(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			defer conn.Close()
			return runServer(cfg, conn)
		},
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := bootstrap(cmd.Context(), configPath)
			if err != nil {
				return err
			}
			return conn.Close()
		},
	}

	rootCmd.AddCommand(runCmd, migrateCmd, newUserCmd(&configPath))

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

// bootstrap loads config, initialises logging, opens the database and
// applies migrations.
func bootstrap(ctx context.Context, configPath string) (*config.Config, *sqlx.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Init(
		cfg.LogConfig.File,
		cfg.LogConfig.Level,
		int(cfg.LogConfig.FileCount),
		int(cfg.LogConfig.FileSize),
		int(cfg.LogConfig.KeepDays),
		cfg.LogConfig.Console,
	)
	logutil.GetLogger(ctx).Info("config loaded",
		zap.String("config", configPath),
		zap.String("db_driver", cfg.Database.Driver),
	)

	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.ApplyMigrations(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return cfg, conn, nil
}

func runServer(cfg *config.Config, conn *sqlx.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("jwt_algorithm", cfg.JWTAlgorithm),
		zap.Int("jwt_expires_min", cfg.JWTExpiresMin),
		zap.Int("hash_workers", cfg.HashWorkers),
	)

	issuer, err := jwt.NewIssuer([]byte(cfg.JWTSecret), cfg.JWTAlgorithm, time.Duration(cfg.JWTExpiresMin)*time.Minute)
	if err != nil {
		return fmt.Errorf("init token issuer: %w", err)
	}
	hasher := password.NewHasher(cfg.BcryptCost, cfg.HashWorkers)

	userRepo := repo.NewUserRepo(conn)
	todoRepo := repo.NewTodoRepo(conn)

	authService := service.NewAuthService(userRepo, hasher, issuer)
	todoService := service.NewTodoService(todoRepo)

	deps := handler.RouterDeps{
		Auth:     handler.NewAuthHandler(authService),
		Todos:    handler.NewTodoHandler(todoService),
		Resolver: authService,
	}

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	engine, err := webapi.NewEngine(
		"/api/v1",
		addr,
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", addr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}
