package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/graphfold/graphfold/internal/queue"
	mid "github.com/graphfold/graphfold/internal/server/middleware"
	"github.com/graphfold/graphfold/internal/util"
	"github.com/graphfold/graphfold/pkg/logger"
	"github.com/graphfold/graphfold/pkg/query"
	graphstorage "github.com/graphfold/graphfold/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

func Init() {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbURL := util.GetEnv("DATABASE_URL")
	runMigrations(dbURL)

	conn, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer conn.Close()

	var key *keyfunc.Keyfunc
	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		jwksURL := authURL + "/jwks"
		k, err := keyfunc.NewDefault([]string{jwksURL})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		key = &k
	}

	que := queue.Init()
	defer que.Close()
	ch, err := que.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	if err := queue.SetupQueues(ch, []string{queue.IngestQueue}); err != nil {
		logger.Fatal("Failed to set up queues", "err", err)
	}

	engine := query.NewEngine(query.NewEngineParams{
		Store:        graphstorage.NewGraphDBStorage(conn),
		MaxDepth:     int(util.GetEnvNumeric("GRAPH_MAX_DEPTH", query.DefaultMaxDepth)),
		QueryTimeout: time.Duration(util.GetEnvNumeric("QUERY_TIMEOUT_MS", 15000)) * time.Millisecond,
	})

	app := &mid.App{
		DBConn:       conn,
		Queue:        ch,
		Key:          key,
		Engine:       engine,
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	RegisterRoutes(e)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}

func runMigrations(dbURL string) {
	dir := util.GetEnvString("MIGRATIONS_DIR", "migrations")
	m, err := migrate.New("file://"+dir, dbURL)
	if err != nil {
		logger.Fatal("Failed to init migrations", "err", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal("Failed to apply migrations", "err", err)
	}
	logger.Debug("[Server] Migrations up to date")
}
