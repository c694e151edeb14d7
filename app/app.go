// Package app wires the client together: storage backend, token store,
// gateway, session, route guard and resource API.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"

	"github.com/jrsteele09/go-sales-client/api"
	"github.com/jrsteele09/go-sales-client/gateway"
	"github.com/jrsteele09/go-sales-client/guard"
	"github.com/jrsteele09/go-sales-client/internal/config"
	apperrors "github.com/jrsteele09/go-sales-client/internal/errors"
	"github.com/jrsteele09/go-sales-client/internal/metrics"
	"github.com/jrsteele09/go-sales-client/session"
	"github.com/jrsteele09/go-sales-client/token"
	tokenfakerepo "github.com/jrsteele09/go-sales-client/token/repofake"
	"github.com/jrsteele09/go-sales-client/token/rediskv"
	"github.com/jrsteele09/go-sales-client/token/sqlitekv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type App struct {
	Config   config.Config
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics
	Store    *token.KVStore
	Gateway  *gateway.Client
	Session  *session.Session
	Router   *guard.Router
	API      *api.API

	logger      zerolog.Logger
	kv          token.KV
	transport   http.RoundTripper
	navigate    func(path string)
	closers     []io.Closer
	unsubscribe func()

	navMu          sync.Mutex
	lastNavigation string
}

type Option func(*App)

func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithKV bypasses the configured storage backend
func WithKV(kv token.KV) Option {
	return func(a *App) {
		a.kv = kv
	}
}

// WithTransport sets the base HTTP transport of the gateway
func WithTransport(rt http.RoundTripper) Option {
	return func(a *App) {
		a.transport = rt
	}
}

// WithNavigator receives forced navigations, e.g. to the login page after
// the backend rejected the token
func WithNavigator(fn func(path string)) Option {
	return func(a *App) {
		a.navigate = fn
	}
}

func New(cfg config.Config, opts ...Option) (*App, error) {
	a := &App{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
		logger:   log.Logger,
		navigate: func(string) {},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Metrics = metrics.New(a.Registry)

	if a.kv == nil {
		kv, closer, err := openKV(cfg)
		if err != nil {
			return nil, fmt.Errorf("[app New] %w", err)
		}
		a.kv = kv
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}
	a.Store = token.NewKVStore(a.kv, token.WithLogger(a.logger.With().Str("component", "token").Logger()))

	table, err := loadRoutes(cfg.GetRoutesFile())
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("[app New] %w", err)
	}

	gwOpts := []gateway.Option{
		gateway.WithBaseURL(cfg.GetAPIBaseURL()),
		gateway.WithTimeout(cfg.GetRequestTimeout()),
		gateway.WithLogger(a.logger.With().Str("component", "gateway").Logger()),
		gateway.WithMetrics(a.Metrics),
	}
	if a.transport != nil {
		gwOpts = append(gwOpts, gateway.WithTransport(a.transport))
	}
	a.Gateway = gateway.NewClient(a.Store, gwOpts...)

	a.Session = session.New(a.Store, a.Gateway,
		session.WithLogger(a.logger.With().Str("component", "session").Logger()),
		session.WithNavigator(a.forceNavigate),
		session.WithResolveTimeout(cfg.GetResolveTimeout()),
		session.WithMetrics(a.Metrics),
	)
	a.unsubscribe = a.Gateway.OnAuthFailure(a.Session.HandleAuthFailure)

	a.Router = guard.NewRouter(table, a.Session)
	a.API = api.New(a.Gateway)
	return a, nil
}

// Start begins session resolution in the background
func (a *App) Start(ctx context.Context) {
	a.Session.Start(ctx)
}

// Wait blocks until the session has resolved
func (a *App) Wait(ctx context.Context) (session.State, error) {
	return a.Session.Wait(ctx)
}

// LastNavigation returns the most recent forced navigation, or ""
func (a *App) LastNavigation() string {
	a.navMu.Lock()
	defer a.navMu.Unlock()
	return a.lastNavigation
}

func (a *App) forceNavigate(path string) {
	a.navMu.Lock()
	a.lastNavigation = path
	a.navMu.Unlock()
	a.navigate(path)
}

// Close detaches the session from the gateway and releases storage
func (a *App) Close() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return apperrors.Join(errs...)
}

func openKV(cfg config.Config) (token.KV, io.Closer, error) {
	switch backend := cfg.GetStorageBackend(); backend {
	case config.StorageMemory:
		return tokenfakerepo.NewFakeKV(), nil, nil
	case config.StorageSQLite:
		store, err := sqlitekv.Open(cfg.GetSQLitePath())
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.GetRedisAddr(),
			Password: cfg.GetRedisPassword(),
			DB:       cfg.GetRedisDB(),
		})
		store := rediskv.New(client, cfg.GetRedisPrefix())
		ctx, cancel := context.WithTimeout(context.Background(), cfg.GetRequestTimeout())
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, fmt.Errorf("redis %s: %w", cfg.GetRedisAddr(), err)
		}
		return store, store, nil
	default:
		return nil, nil, apperrors.Wrapf(apperrors.ErrUnsupported, "storage backend %q", backend)
	}
}

func loadRoutes(file string) (*guard.Table, error) {
	if file == "" {
		return guard.DefaultRoutes(), nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("routes file: %w", err)
	}
	defer f.Close()
	return guard.LoadRoutes(f)
}
