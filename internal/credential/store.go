package credential

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/amurata/GoogleFitNotionIntegration/internal/store"
)

// Store 凭证存储
type Store interface {
	Load(ctx context.Context) (*Credential, error)
	Save(ctx context.Context, cred *Credential) error
	// Backup 保存一份副本，返回备份标识
	Backup(ctx context.Context, cred *Credential) (string, error)
}

// RedisStore 基于 KV 的凭证存储
// 当前凭证: credentials:{name}
// 备份:     credentials_backup:{name}:{yyyymmdd_hhmmss}
type RedisStore struct {
	kv   store.KV
	name string
	now  func() time.Time
}

// NewRedisStore 创建 Redis 凭证存储
func NewRedisStore(kv store.KV, name string) *RedisStore {
	return &RedisStore{kv: kv, name: name, now: time.Now}
}

func (s *RedisStore) key() string {
	return "credentials:" + s.name
}

func (s *RedisStore) Load(ctx context.Context) (*Credential, error) {
	raw, err := s.kv.Get(ctx, s.key())
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, models.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	var cred Credential
	if err := json.Unmarshal([]byte(raw), &cred); err != nil {
		return nil, fmt.Errorf("failed to decode credential: %w", err)
	}
	return &cred, nil
}

func (s *RedisStore) Save(ctx context.Context, cred *Credential) error {
	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}
	if err := s.kv.Set(ctx, s.key(), string(data), 0); err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (s *RedisStore) Backup(ctx context.Context, cred *Credential) (string, error) {
	data, err := json.Marshal(cred)
	if err != nil {
		return "", fmt.Errorf("failed to encode credential: %w", err)
	}
	key := fmt.Sprintf("credentials_backup:%s:%s", s.name, s.now().Format("20060102_150405"))
	if err := s.kv.Set(ctx, key, string(data), 0); err != nil {
		return "", fmt.Errorf("failed to backup credential: %w", err)
	}
	return key, nil
}

// Backups 列出已有备份
func (s *RedisStore) Backups(ctx context.Context) ([]string, error) {
	return s.kv.ScanKeys(ctx, "credentials_backup:"+s.name+":*")
}
