package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/neumathe/kousuan/catalog"
	"github.com/neumathe/kousuan/engine"
	"github.com/neumathe/kousuan/internal/config"
	"github.com/neumathe/kousuan/internal/httpapi"
	"github.com/neumathe/kousuan/internal/platform/logger"
	"github.com/neumathe/kousuan/internal/worksheet"
)

type App struct {
	Log    *logger.Logger
	Config *config.Config

	store  worksheet.Store
	server *http.Server
}

// New 加载配置和题型表，组装引擎、存储与 HTTP 服务
func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return NewWithConfig(ctx, cfg, log)
}

func NewWithConfig(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	cat, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	eng, err := engine.New(cat,
		engine.WithLogger(log.Zap().Named("engine")),
		engine.WithMaxRetries(cfg.Engine.MaxRetries),
		engine.WithAttemptFactor(cfg.Engine.AttemptFactor),
	)
	if err != nil {
		return nil, err
	}
	store, err := worksheet.OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open worksheet store: %w", err)
	}
	svc := worksheet.NewService(eng, cat, store, log, worksheet.Options{
		SeedSalt: cfg.Engine.SeedSalt,
		MaxCount: cfg.Engine.MaxCount,
	})
	srv := httpapi.NewServer(cfg, log, httpapi.Deps{Engine: eng, Catalog: cat, Worksheets: svc})

	log.Info("app initialised", "grades", len(cat.Grades()), "store", cfg.Store.Driver, "addr", cfg.HTTP.Addr)
	return &App{Log: log, Config: cfg, store: store, server: srv}, nil
}

// Run 启动 HTTP 服务直到 ctx 取消，然后在 shutdown_timeout 内优雅退出
func (a *App) Run(ctx context.Context) error {
	defer a.Log.Sync()
	defer func() {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("close worksheet store", "error", err)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Log.Info("http listening", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		a.Log.Info("http shutting down")
		return a.server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
