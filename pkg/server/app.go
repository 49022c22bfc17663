package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/mikeboe/summit-buddy/pkg/chat"
	"github.com/mikeboe/summit-buddy/pkg/clients"
	"github.com/mikeboe/summit-buddy/pkg/config"
	"github.com/mikeboe/summit-buddy/pkg/database"
	"github.com/mikeboe/summit-buddy/pkg/dataset"
	"github.com/mikeboe/summit-buddy/pkg/entities"
	"github.com/mikeboe/summit-buddy/pkg/metrics"
	"github.com/mikeboe/summit-buddy/pkg/prompt"
	"github.com/mikeboe/summit-buddy/pkg/ratelimit"
	"github.com/mikeboe/summit-buddy/pkg/usage"
)

// Version is reported by the MCP endpoint.
var Version = "dev"

const shutdownTimeout = 15 * time.Second

// App is the fully wired HTTP service.
type App struct {
	Engine *gin.Engine
	Usage  *usage.Logger

	cfg     *config.Config
	sweeper *ratelimit.MemoryStore
	closers []func()
}

// NewApp loads the dataset and wires every component. Postgres and Redis are
// optional: when unset or unreachable the service runs without usage rows and
// with in-memory rate limiting.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	data, err := dataset.Load(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load dataset: %w", err)
	}
	index := entities.NewIndex(data.Cards())

	m := metrics.NewManager()
	for kind, n := range index.Size() {
		m.DatasetSize(string(kind), n)
	}

	model, err := clients.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create model client: %w", err)
	}

	app := &App{cfg: cfg}

	limiter := app.newLimiter(ctx)
	app.Usage = usage.NewLogger(app.newUsageSink(ctx), cfg.UsageTimeout)

	chatSvc := chat.NewService(data, index, model,
		chat.WithLimiter(limiter),
		chat.WithUsageLogger(app.Usage),
		chat.WithMetrics(m),
		chat.WithPromptMode(prompt.ParseMode(cfg.PromptMode)),
		chat.WithMaxHistory(cfg.MaxHistory),
		chat.WithMaxOutputTokens(cfg.MaxOutputTokens),
		chat.WithTimeout(cfg.ChatTimeout),
	)

	mcpServer := NewMCPServer(&SummitTools{Data: data, Index: index}, Version)
	handler := NewHandler(chatSvc, data, index, m, NewMCPHandler(mcpServer))

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Mcp-Session-Id", "Mcp-Protocol-Version"},
		ExposeHeaders:    []string{"Content-Length", "Retry-After", "Mcp-Session-Id"},
		AllowCredentials: true,
	}))
	handler.RegisterRoutes(r)
	app.Engine = r

	slog.Info("Summit Buddy ready",
		"sessions", len(data.Sessions),
		"speakers", len(data.Speakers),
		"exhibitors", len(data.Exhibitors),
		"model", model.Name(),
		"prompt_mode", cfg.PromptMode,
	)
	return app, nil
}

func (a *App) newLimiter(ctx context.Context) ratelimit.Limiter {
	opts := []ratelimit.Option{
		ratelimit.WithLimit(a.cfg.RateLimit),
		ratelimit.WithWindow(a.cfg.RateWindow),
		ratelimit.WithSweepInterval(a.cfg.RateSweepInterval),
	}

	if a.cfg.RedisURL != "" {
		client, err := ratelimit.NewRedisClient(ctx, a.cfg.RedisURL)
		if err == nil {
			a.closers = append(a.closers, func() { _ = client.Close() })
			slog.Info("Rate limiting backed by Redis")
			return ratelimit.NewRedisStore(client, opts...)
		}
		slog.Warn("Redis unavailable, falling back to in-memory rate limiting", "error", err)
	}

	store := ratelimit.NewMemoryStore(opts...)
	a.sweeper = store
	return store
}

func (a *App) newUsageSink(ctx context.Context) usage.Sink {
	if a.cfg.DatabaseURL == "" {
		slog.Info("DATABASE_URL not set, usage logging disabled")
		return nil
	}

	db, err := database.NewPostgresDB(ctx, a.cfg.DatabaseURL)
	if err != nil {
		slog.Warn("Database unavailable, usage logging disabled", "error", err)
		return nil
	}
	if err := db.InitSchema(ctx); err != nil {
		slog.Warn("Failed to initialize schema, usage logging disabled", "error", err)
		db.Close()
		return nil
	}

	a.closers = append(a.closers, db.Close)
	return usage.NewPostgresSink(db)
}

// Run serves until ctx is cancelled, then drains requests and pending usage
// writes before releasing connections.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	if a.sweeper != nil {
		go a.sweeper.Run(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "port", a.cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
	if err := a.Usage.Wait(shutdownCtx); err != nil {
		slog.Warn("Pending usage logs dropped", "error", err)
	}
	return nil
}

// Close releases the database and Redis connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
