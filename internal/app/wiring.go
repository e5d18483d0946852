package app

import (
	"context"
	"fmt"
	"strings"

	"ats-portal/internal/audit"
	"ats-portal/internal/auth"
	"ats-portal/internal/config"
	"ats-portal/internal/http"
	"ats-portal/internal/http/middleware"
	"ats-portal/internal/infra/s3"
	"ats-portal/internal/rbac"
	"ats-portal/internal/rbac/presets"
	"ats-portal/internal/session"
	"ats-portal/internal/view"
	"ats-portal/pkg/metrics"

	"go.uber.org/zap"
)

const s3SourcePrefix = "s3://"

// InitializeService wires up all dependencies and returns a configured Service
func InitializeService(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Service, error) {
	bgCtx, cancel := context.WithCancel(ctx)
	svc := &Service{config: cfg, logger: logger, cancel: cancel}

	table, err := LoadTable(bgCtx, cfg.RBAC.TableSource, cfg.AWS)
	if err != nil {
		cancel()
		return nil, err
	}
	checker := rbac.New(table)
	logger.Info("permission table loaded",
		zap.String("source", tableSourceName(cfg.RBAC.TableSource)),
		zap.Int("roles", len(table.Roles())))

	store, err := svc.newSessionStore(bgCtx)
	if err != nil {
		cancel()
		return nil, err
	}
	sessions := session.NewManager(store, cfg.Session.TTL, logger)

	deps := &http.ServerDependencies{
		Config:    cfg,
		Logger:    logger,
		Checker:   checker,
		Sessions:  sessions,
		Metrics:   metrics.New(),
		Audit:     audit.NewLogger(logger),
		Validator: auth.NewValidator(),
	}

	if cfg.Auth.DirectoryFile != "" {
		directory, err := auth.LoadDirectory(cfg.Auth.DirectoryFile)
		if err != nil {
			svc.close()
			return nil, err
		}
		deps.Authenticator = directory
		deps.Users = directory
		logger.Info("user directory loaded", zap.Int("users", directory.Len()))
	}

	if cfg.Auth.ExchangeEnabled() {
		exchange, err := auth.NewExchange(auth.ExchangeConfig{
			Secret:   cfg.Auth.ExchangeSecret,
			Issuer:   cfg.Auth.ExchangeIssuer,
			Audience: cfg.Auth.ExchangeAudience,
		})
		if err != nil {
			svc.close()
			return nil, fmt.Errorf("failed to configure identity exchange: %w", err)
		}
		deps.Exchange = exchange
	}

	renderer, err := view.NewRenderer()
	if err != nil {
		svc.close()
		return nil, err
	}
	deps.Renderer = renderer

	svc.csrf = middleware.NewCSRFMiddleware(bgCtx)
	deps.CSRFMiddleware = svc.csrf

	svc.server = http.NewServer(deps)
	return svc, nil
}

// LoadTable returns the built-in ATS table unless a source is given. An
// s3:// source is fetched with the given AWS settings.
func LoadTable(ctx context.Context, source string, aws config.AWSConfig) (*rbac.Table, error) {
	if source == "" {
		return rbac.NewTable(presets.ATS())
	}

	var fetcher rbac.ObjectFetcher
	if strings.HasPrefix(source, s3SourcePrefix) {
		client, err := s3.NewClient(s3.Options{
			Region:          aws.Region,
			AccessKeyID:     aws.AccessKeyID,
			SecretAccessKey: aws.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 client: %w", err)
		}
		fetcher = client
	}

	tableCfg, err := rbac.LoadConfig(ctx, source, fetcher)
	if err != nil {
		return nil, err
	}
	return rbac.NewTable(tableCfg)
}

func (s *Service) newSessionStore(ctx context.Context) (session.Store, error) {
	switch s.config.Session.Store {
	case config.StoreRedis:
		client, err := session.NewRedisClient(ctx, session.RedisOptions{
			Addr:     s.config.Redis.Addr,
			Password: s.config.Redis.Password,
			DB:       s.config.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, client.Close)
		s.logger.Info("session store ready", zap.String("store", config.StoreRedis), zap.String("addr", s.config.Redis.Addr))
		return session.NewRedisStore(client), nil
	default:
		store := session.NewMemoryStore()
		go store.RunSweeper(ctx, s.config.Session.SweepInterval)
		s.logger.Info("session store ready", zap.String("store", config.StoreMemory))
		return store, nil
	}
}

func tableSourceName(source string) string {
	if source == "" {
		return "preset:ats"
	}
	return source
}
