package credential

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOAuthRefresher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh", r.PostForm.Get("refresh_token"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"fresh","expires_in":3600,"token_type":"Bearer"}`))
	}))
	defer srv.Close()

	cred := validCredential()
	cred.TokenURI = srv.URL
	r := NewOAuthRefresher(5*time.Second, zap.NewNop())

	refreshed, err := r.Refresh(context.Background(), cred)
	require.NoError(t, err)
	assert.Equal(t, "fresh", refreshed.Token)
	assert.Equal(t, "refresh", refreshed.RefreshToken)
	assert.True(t, refreshed.Expiry.After(time.Now().Add(59*time.Minute)))
	// 原凭证不被修改
	assert.Equal(t, "old-token", cred.Token)
}

func TestOAuthRefresher_InvalidGrant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Token has been expired or revoked."}`))
	}))
	defer srv.Close()

	cred := validCredential()
	cred.TokenURI = srv.URL
	_, err := NewOAuthRefresher(5*time.Second, zap.NewNop()).Refresh(context.Background(), cred)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
	assert.Contains(t, err.Error(), "invalid_grant")
}

func TestOAuthRefresher_NoRefreshToken(t *testing.T) {
	cred := validCredential()
	cred.RefreshToken = ""
	_, err := NewOAuthRefresher(time.Second, zap.NewNop()).Refresh(context.Background(), cred)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}
