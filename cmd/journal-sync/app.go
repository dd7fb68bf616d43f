package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/aggregator"
	"github.com/amurata/GoogleFitNotionIntegration/internal/config"
	"github.com/amurata/GoogleFitNotionIntegration/internal/credential"
	"github.com/amurata/GoogleFitNotionIntegration/internal/fitness"
	"github.com/amurata/GoogleFitNotionIntegration/internal/github"
	"github.com/amurata/GoogleFitNotionIntegration/internal/logger"
	"github.com/amurata/GoogleFitNotionIntegration/internal/notion"
	"github.com/amurata/GoogleFitNotionIntegration/internal/reconciler"
	"github.com/amurata/GoogleFitNotionIntegration/internal/service"
	"github.com/amurata/GoogleFitNotionIntegration/internal/store"
	"github.com/amurata/GoogleFitNotionIntegration/internal/weather"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const serviceName = "journal-sync"

// app 命令共享的依赖，按需创建
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	location *time.Location

	redisClient *redis.Client
	db          *sql.DB
}

func newApp(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return &app{cfg: cfg, logger: log, location: cfg.Location()}, nil
}

// Close 释放连接
func (a *app) Close() {
	if a.redisClient != nil {
		_ = a.redisClient.Close()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	_ = a.logger.Sync()
}

func (a *app) now() time.Time {
	return time.Now().In(a.location)
}

func (a *app) kv(ctx context.Context) (store.KV, error) {
	if a.redisClient == nil {
		client, err := store.NewRedisClient(ctx, &a.cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.redisClient = client
	}
	return store.NewRedisKV(a.redisClient), nil
}

func (a *app) credentialStore(ctx context.Context) (credential.Store, error) {
	switch a.cfg.Credential.Backend {
	case "postgres":
		if a.db == nil {
			db, err := store.NewPostgresDB(&a.cfg.Database)
			if err != nil {
				return nil, err
			}
			a.db = db
		}
		return credential.NewPostgresStore(a.db, a.cfg.Credential.Key), nil
	case "redis", "":
		kv, err := a.kv(ctx)
		if err != nil {
			return nil, err
		}
		return credential.NewRedisStore(kv, a.cfg.Credential.Key), nil
	default:
		return nil, fmt.Errorf("unknown credential backend: %s", a.cfg.Credential.Backend)
	}
}

func (a *app) credentialProvider(ctx context.Context) (*credential.Provider, error) {
	st, err := a.credentialStore(ctx)
	if err != nil {
		return nil, err
	}
	refresher := credential.NewOAuthRefresher(a.cfg.Fit.Timeout, a.logger)
	return credential.NewProvider(st, refresher, a.logger), nil
}

func (a *app) reconciler() (*reconciler.Reconciler, error) {
	if err := a.cfg.ValidateNotion(); err != nil {
		return nil, err
	}
	client := notion.NewClient(notion.Options{
		BaseURL:            a.cfg.Notion.BaseURL,
		Secret:             a.cfg.Notion.Secret,
		Version:            a.cfg.Notion.Version,
		DatabaseID:         a.cfg.Notion.DatabaseID,
		DateProperty:       a.cfg.Notion.DateProperty,
		ReflectionProperty: a.cfg.Notion.ReflectionProperty,
		Timeout:            a.cfg.Notion.Timeout,
	}, a.logger)
	return reconciler.NewReconciler(client, a.cfg.Notion.TitlePrefix, a.logger), nil
}

func (a *app) fitService(ctx context.Context) (*service.FitSyncService, error) {
	rec, err := a.reconciler()
	if err != nil {
		return nil, err
	}
	provider, err := a.credentialProvider(ctx)
	if err != nil {
		return nil, err
	}

	fit := fitness.NewClient(a.cfg.Fit.BaseURL, a.cfg.Fit.Timeout, a.cfg.Fit.Resolution, a.location, provider, a.logger)
	agg := aggregator.NewDailyAggregator(fit, a.location, a.cfg.Fit.AuthoritativeSources, a.cfg.Fit.Concurrency, a.logger)

	return service.NewFitSyncService(provider, agg, rec, service.FitSyncOptions{
		DateProperty:       a.cfg.Notion.DateProperty,
		ExtendedProperties: a.cfg.Notion.ExtendedProperties,
	}, a.logger), nil
}

// weatherService persist 为 false 时不需要 Notion 配置
func (a *app) weatherService(persist bool) (*weather.Service, error) {
	var rec weather.Reconciler
	if persist {
		r, err := a.reconciler()
		if err != nil {
			return nil, err
		}
		rec = r
	}
	fetcher := weather.NewClient(a.cfg.Weather.BaseURL, a.cfg.Weather.PrecNo, a.cfg.Weather.BlockNo, a.cfg.Fit.Timeout, a.logger)
	return weather.NewService(fetcher, rec, a.cfg.Notion.DateProperty, a.logger), nil
}

func (a *app) githubService() (*github.Service, error) {
	if err := a.cfg.ValidateGitHub(); err != nil {
		return nil, err
	}
	rec, err := a.reconciler()
	if err != nil {
		return nil, err
	}
	client := github.NewClient(a.cfg.GitHub.BaseURL, a.cfg.GitHub.Token, a.cfg.Fit.Timeout, a.logger)
	return github.NewService(client, rec, a.location, a.cfg.GitHub.RepoLimit, a.cfg.GitHub.Property, a.logger), nil
}

// logReport 输出批处理汇总，有失败时返回错误
func (a *app) logReport(name string, report *service.RangeReport) error {
	a.logger.Info("Batch finished",
		zap.String("job", name),
		zap.String("run_id", report.RunID),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed),
		zap.Int("skipped", report.Skipped),
	)
	if report.OverallSuccess() {
		return nil
	}
	failed := report.FailedDates()
	dates := make([]string, len(failed))
	for i, d := range failed {
		dates[i] = d.String()
	}
	a.logger.Error("Some dates failed", zap.String("job", name), zap.Strings("dates", dates))
	return fmt.Errorf("%s: %d failed, %d skipped", name, report.Failed, report.Skipped)
}
