package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/go-course-client/auth"
	"github.com/jrsteele09/go-course-client/catalog"
	"github.com/jrsteele09/go-course-client/internal/config"
	"github.com/jrsteele09/go-course-client/internal/metrics"
	"github.com/jrsteele09/go-course-client/schedule"
	"github.com/jrsteele09/go-course-client/session"
	"github.com/jrsteele09/go-course-client/tokens"
	"github.com/jrsteele09/go-course-client/tokens/filerepo"
	"github.com/jrsteele09/go-course-client/tokens/redisrepo"
	"github.com/jrsteele09/go-course-client/tokens/repofake"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// app wires one CLI invocation: token store, session client and the services
// built on it.
type app struct {
	log      zerolog.Logger
	out      io.Writer
	session  *session.Client
	catalog  *catalog.Client
	auth     *auth.Service
	detector *schedule.Detector
	enroller *schedule.Enroller

	metricsServer *http.Server
	closers       []func() error
}

func newApp(ctx context.Context, c config.Config, logger zerolog.Logger, out io.Writer) (*app, error) {
	a := &app{log: logger, out: out}

	repo, closeRepo, err := newTokenRepo(ctx, c)
	if err != nil {
		return nil, err
	}
	if closeRepo != nil {
		a.closers = append(a.closers, closeRepo)
	}

	reg := metrics.NewRegistry()
	m := metrics.New(reg)

	options := []session.Option{
		session.WithHTTPClient(&http.Client{Timeout: c.GetRequestTimeout()}),
		session.WithLogger(logger),
		session.WithMetrics(m),
		session.WithRefreshTimeout(c.GetRefreshTimeout()),
	}
	if limit := c.GetRateLimit(); limit > 0 {
		options = append(options, session.WithRateLimiter(rate.NewLimiter(rate.Limit(limit), c.GetRateBurst())))
	}

	a.session, err = session.New(c.GetAPIBaseURL(), repo, options...)
	if err != nil {
		return nil, err
	}
	a.catalog = catalog.New(a.session)
	a.auth = auth.NewService(a.session, logger)
	a.detector = schedule.NewDetector(a.catalog,
		schedule.WithDetectorLogger(logger),
		schedule.WithDetectorMetrics(m),
	)
	a.enroller = schedule.NewEnroller(a.catalog, a.detector, logger)

	if addr := c.GetMetricsAddr(); addr != "" {
		a.metricsServer = &http.Server{Addr: addr, Handler: metrics.Handler(reg)}
		go a.listenAndServe()
	}
	return a, nil
}

func newTokenRepo(ctx context.Context, c config.TokenStoreConfig) (tokens.Repo, func() error, error) {
	switch kind := c.GetTokenStore(); kind {
	case config.TokenStoreFile:
		repo, err := filerepo.New(c.GetTokenFile(), filerepo.WithHexKey(c.GetTokenStoreKey()))
		return repo, nil, err
	case config.TokenStoreRedis:
		repo, err := redisrepo.NewFromURL(ctx, c.GetRedisURL(), c.GetRedisKeyPrefix())
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case config.TokenStoreMemory:
		return repofake.NewFakeTokenRepo(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown TOKEN_STORE %q", kind)
	}
}

func (a *app) listenAndServe() {
	a.log.Info().Str("addr", a.metricsServer.Addr).Msg("serving metrics")
	if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		a.log.Error().Err(err).Msg("metrics server")
	}
}

func (a *app) close() error {
	var firstErr error
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			firstErr = fmt.Errorf("metricsServer.Shutdown: %w", err)
		}
	}
	for _, c := range a.closers {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// termIndex loads every term so term status can be resolved for offerings
// that do not carry it.
func (a *app) termIndex(ctx context.Context) schedule.TermIndex {
	page, err := a.catalog.ListTerms(ctx, catalog.ListParams{Size: 1000})
	if err != nil {
		a.log.Debug().Err(err).Msg("terms unavailable, resolving status from offerings only")
		return schedule.NewTermIndex(nil)
	}
	return schedule.NewTermIndex(page.Items)
}
