package credential

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"go.uber.org/zap"
)

// Refresher 刷新凭证
type Refresher interface {
	Refresh(ctx context.Context, cred *Credential) (*Credential, error)
}

// Provider 凭证提供者
// 过期时先刷新并持久化，再返回给数据源使用
type Provider struct {
	store     Store
	refresher Refresher
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	cached *Credential
}

// NewProvider 创建凭证提供者
func NewProvider(store Store, refresher Refresher, logger *zap.Logger) *Provider {
	return &Provider{
		store:     store,
		refresher: refresher,
		logger:    logger,
		now:       time.Now,
	}
}

// Get 获取有效凭证
// 凭证缺失、无法刷新时返回包装了 models.ErrUnauthorized 的错误
func (p *Provider) Get(ctx context.Context) (*Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && !p.cached.Expired(p.now()) {
		return p.cached, nil
	}

	cred, err := p.store.Load(ctx)
	if err != nil {
		if errors.Is(err, models.ErrCredentialNotFound) {
			return nil, fmt.Errorf("failed to load credential: %v: %w", err, models.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	if cred.Expired(p.now()) {
		if cred.RefreshToken == "" {
			return nil, fmt.Errorf("credential expired without refresh token: %w", models.ErrUnauthorized)
		}
		cred, err = p.refreshAndSave(ctx, cred)
		if err != nil {
			return nil, err
		}
	}

	p.cached = cred
	return cred, nil
}

// Token 获取 access token
func (p *Provider) Token(ctx context.Context) (string, error) {
	cred, err := p.Get(ctx)
	if err != nil {
		return "", err
	}
	return cred.Token, nil
}

// ForceRefresh 无论是否过期都刷新一次（先备份旧凭证）
func (p *Provider) ForceRefresh(ctx context.Context) (*Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	cred, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	backup, err := p.store.Backup(ctx, cred)
	if err != nil {
		return nil, err
	}
	p.logger.Info("Backed up credential", zap.String("backup", backup))

	cred, err = p.refreshAndSave(ctx, cred)
	if err != nil {
		return nil, err
	}
	p.cached = cred
	return cred, nil
}

// Import 用外部授权流程得到的新凭证替换当前凭证（已有凭证先备份）
func (p *Provider) Import(ctx context.Context, cred *Credential) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if missing := cred.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("credential is missing fields: %v", missing)
	}

	old, err := p.store.Load(ctx)
	switch {
	case err == nil:
		backup, err := p.store.Backup(ctx, old)
		if err != nil {
			return err
		}
		p.logger.Info("Backed up credential", zap.String("backup", backup))
	case errors.Is(err, models.ErrCredentialNotFound):
		p.logger.Info("No existing credential, creating new one")
	default:
		return fmt.Errorf("failed to load credential: %w", err)
	}

	cred.UpdatedAt = p.now()
	if err := p.store.Save(ctx, cred); err != nil {
		return err
	}
	p.cached = nil
	return nil
}

func (p *Provider) refreshAndSave(ctx context.Context, cred *Credential) (*Credential, error) {
	refreshed, err := p.refresher.Refresh(ctx, cred)
	if err != nil {
		p.logger.Error("Failed to refresh credential", zap.Error(err))
		if errors.Is(err, models.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to refresh credential: %v: %w", err, models.ErrUnauthorized)
	}

	refreshed.UpdatedAt = p.now()
	// 持久化成功后才返回新凭证
	if err := p.store.Save(ctx, refreshed); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed credential: %w", err)
	}
	p.logger.Info("Refreshed and saved credential", zap.Time("expiry", refreshed.Expiry))
	return refreshed, nil
}
