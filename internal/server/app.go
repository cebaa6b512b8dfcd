// Package server initializes and runs the Insight API server. It builds every
// collaborator (user store, password hasher, token service, logger) once at
// process start and injects them through constructors, so the core stays
// testable without global reset logic.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/insight/internal/common"
	"github.com/dmitrijs2005/insight/internal/logging"
	"github.com/dmitrijs2005/insight/internal/server/auth"
	"github.com/dmitrijs2005/insight/internal/server/config"
	"github.com/dmitrijs2005/insight/internal/server/httpserver"
	"github.com/dmitrijs2005/insight/internal/server/migrations"
	"github.com/dmitrijs2005/insight/internal/server/users"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
	httpServer  *httpserver.HTTPServer
}

func NewApp(cfg *config.Config) (*App, error) {
	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	repo, err := newUserRepository(cfg)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}

	hasher := auth.NewBcryptHasher(cfg.SecretKey)

	tokens, err := auth.NewJWTTokenService(cfg.SecretKey, cfg.TokenAlgorithm, cfg.AccessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("token service init error: %w", err)
	}

	us := users.NewService(repo, hasher, tokens)

	if err := seedDevUser(context.Background(), repo, hasher); err != nil {
		return nil, fmt.Errorf("seed error: %w", err)
	}

	srv := httpserver.NewHTTPServer(cfg.EndpointAddr, logger, us)

	return &App{config: cfg, logger: logger, userService: us, httpServer: srv}, nil
}

// newUserRepository selects the user store: Postgres when a DSN is
// configured (running the embedded goose migrations first), the in-memory
// map otherwise.
func newUserRepository(cfg *config.Config) (users.Repository, error) {
	if cfg.DatabaseDSN == "" {
		return users.NewInMemoryRepository(), nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("migration dialect error: %w", err)
	}
	if err := goose.UpContext(context.Background(), db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return users.NewPostgresRepository(db)
}

// seedDevUser creates the fixed development user when absent, so a fresh
// process always has a known account to authenticate with.
func seedDevUser(ctx context.Context, repo users.Repository, hasher auth.PasswordHasher) error {
	const username = "john_doe"

	if _, err := repo.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, common.ErrorNotFound) {
		return err
	}

	digest, err := hasher.Hash("qwerty123")
	if err != nil {
		return err
	}

	return repo.Add(ctx, &users.InternalUser{
		User:           users.User{Username: username, Email: "john@gmail.de", Age: 25},
		HashedPassword: digest,
		Role:           users.RoleUser,
	})
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
}
