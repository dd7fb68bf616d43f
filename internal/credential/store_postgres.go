package credential

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"github.com/lib/pq"
)

// PostgresStore 基于 PostgreSQL 的凭证存储
//
// 表结构:
//
//	oauth_credentials(name PK, token, refresh_token, token_uri, client_id, client_secret,
//	                  scopes TEXT[], expiry TIMESTAMPTZ NULL, updated_at TIMESTAMPTZ)
//	oauth_credential_backups(id BIGSERIAL, name, payload JSONB, created_at TIMESTAMPTZ)
type PostgresStore struct {
	db   *sql.DB
	name string
	now  func() time.Time
}

// NewPostgresStore 创建 PostgreSQL 凭证存储
func NewPostgresStore(db *sql.DB, name string) *PostgresStore {
	return &PostgresStore{db: db, name: name, now: time.Now}
}

func (s *PostgresStore) Load(ctx context.Context) (*Credential, error) {
	query := `
		SELECT token, refresh_token, token_uri, client_id, client_secret, scopes, expiry, updated_at
		FROM oauth_credentials
		WHERE name = $1
	`
	var (
		cred   Credential
		scopes pq.StringArray
		expiry sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, s.name).Scan(
		&cred.Token,
		&cred.RefreshToken,
		&cred.TokenURI,
		&cred.ClientID,
		&cred.ClientSecret,
		&scopes,
		&expiry,
		&cred.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}
	cred.Scopes = []string(scopes)
	if expiry.Valid {
		cred.Expiry = expiry.Time
	}
	return &cred, nil
}

func (s *PostgresStore) Save(ctx context.Context, cred *Credential) error {
	query := `
		INSERT INTO oauth_credentials
			(name, token, refresh_token, token_uri, client_id, client_secret, scopes, expiry, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			token = EXCLUDED.token,
			refresh_token = EXCLUDED.refresh_token,
			token_uri = EXCLUDED.token_uri,
			client_id = EXCLUDED.client_id,
			client_secret = EXCLUDED.client_secret,
			scopes = EXCLUDED.scopes,
			expiry = EXCLUDED.expiry,
			updated_at = EXCLUDED.updated_at
	`
	var expiry sql.NullTime
	if !cred.Expiry.IsZero() {
		expiry = sql.NullTime{Time: cred.Expiry, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, query,
		s.name,
		cred.Token,
		cred.RefreshToken,
		cred.TokenURI,
		cred.ClientID,
		cred.ClientSecret,
		pq.Array(cred.Scopes),
		expiry,
		cred.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) Backup(ctx context.Context, cred *Credential) (string, error) {
	payload, err := json.Marshal(cred)
	if err != nil {
		return "", fmt.Errorf("failed to encode credential: %w", err)
	}
	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO oauth_credential_backups (name, payload, created_at) VALUES ($1, $2, $3) RETURNING id`,
		s.name, payload, s.now(),
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("failed to backup credential: %w", err)
	}
	return fmt.Sprintf("oauth_credential_backups:%d", id), nil
}
