package credential

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/amurata/GoogleFitNotionIntegration/internal/store"
)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	s := NewRedisStore(store.NewRedisKV(client), "google_fit")
	s.now = func() time.Time { return fixedNow }
	return mr, s
}

func TestRedisStore_SaveLoadBackup(t *testing.T) {
	mr, s := setupRedisStore(t)
	ctx := context.Background()

	_, err := s.Load(ctx)
	assert.True(t, errors.Is(err, models.ErrCredentialNotFound))

	cred := validCredential()
	require.NoError(t, s.Save(ctx, cred))
	assert.True(t, mr.Exists("credentials:google_fit"))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, cred.Token, loaded.Token)
	assert.Equal(t, cred.Scopes, loaded.Scopes)
	assert.True(t, cred.Expiry.Equal(loaded.Expiry))

	key, err := s.Backup(ctx, cred)
	require.NoError(t, err)
	assert.Equal(t, "credentials_backup:google_fit:20240316_010000", key)

	backups, err := s.Backups(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{key}, backups)
}

func TestRedisStore_CorruptPayload(t *testing.T) {
	mr, s := setupRedisStore(t)
	require.NoError(t, mr.Set("credentials:google_fit", "{not json"))
	_, err := s.Load(context.Background())
	assert.Error(t, err)
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	s := NewPostgresStore(db, "google_fit")
	s.now = func() time.Time { return fixedNow }
	return db, mock, s
}

func TestPostgresStore_Load(t *testing.T) {
	db, mock, s := setupMockDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"token", "refresh_token", "token_uri", "client_id", "client_secret", "scopes", "expiry", "updated_at"}).
		AddRow("tok", "ref", "https://oauth2.googleapis.com/token", "cid", "csecret", "{scope-a,scope-b}", nil, fixedNow)
	mock.ExpectQuery(`SELECT token, refresh_token`).
		WithArgs("google_fit").
		WillReturnRows(rows)

	cred, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.Token)
	assert.Equal(t, []string{"scope-a", "scope-b"}, cred.Scopes)
	assert.True(t, cred.Expiry.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_LoadNotFound(t *testing.T) {
	db, mock, s := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT token, refresh_token`).
		WithArgs("google_fit").
		WillReturnError(sql.ErrNoRows)

	_, err := s.Load(context.Background())
	assert.True(t, errors.Is(err, models.ErrCredentialNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveUpsert(t *testing.T) {
	db, mock, s := setupMockDB(t)
	defer db.Close()

	cred := validCredential()
	mock.ExpectExec(`INSERT INTO oauth_credentials`).
		WithArgs("google_fit", cred.Token, cred.RefreshToken, cred.TokenURI, cred.ClientID, cred.ClientSecret,
			sqlmock.AnyArg(), sqlmock.AnyArg(), cred.UpdatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Save(context.Background(), cred))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Backup(t *testing.T) {
	db, mock, s := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO oauth_credential_backups`).
		WithArgs("google_fit", sqlmock.AnyArg(), fixedNow).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))

	ref, err := s.Backup(context.Background(), validCredential())
	require.NoError(t, err)
	assert.Equal(t, "oauth_credential_backups:7", ref)
	assert.NoError(t, mock.ExpectationsWereMet())
}
