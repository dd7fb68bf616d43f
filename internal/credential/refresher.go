package credential

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// tokenResponse OAuth token 端点响应
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	ExpiresIn    int64  `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
	TokenType    string `json:"token_type"`
}

// tokenError OAuth 错误响应
type tokenError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// OAuthRefresher 使用 refresh_token 换取新的 access token
type OAuthRefresher struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewOAuthRefresher 创建刷新器
func NewOAuthRefresher(timeout time.Duration, logger *zap.Logger) *OAuthRefresher {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Accept", "application/json")

	return &OAuthRefresher{httpClient: client, logger: logger}
}

// Refresh 刷新凭证，返回新的凭证副本
// 凭证被拒绝（4xx）时返回 models.ErrUnauthorized
func (r *OAuthRefresher) Refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	if cred.RefreshToken == "" {
		return nil, fmt.Errorf("failed to refresh token: no refresh token: %w", models.ErrUnauthorized)
	}

	r.logger.Info("Refreshing OAuth token", zap.String("token_uri", cred.TokenURI))

	var result tokenResponse
	var oauthErr tokenError
	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"grant_type":    "refresh_token",
			"refresh_token": cred.RefreshToken,
			"client_id":     cred.ClientID,
			"client_secret": cred.ClientSecret,
		}).
		SetResult(&result).
		SetError(&oauthErr).
		Post(cred.TokenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to call token endpoint: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest && resp.StatusCode() < http.StatusInternalServerError {
		r.logger.Error("OAuth token refresh rejected",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", oauthErr.Error),
		)
		return nil, fmt.Errorf("failed to refresh token: %s: %w", oauthErr.Error, models.ErrUnauthorized)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("token endpoint error: status %d", resp.StatusCode())
	}
	if result.AccessToken == "" {
		return nil, fmt.Errorf("failed to refresh token: empty access token: %w", models.ErrUnauthorized)
	}

	refreshed := *cred
	refreshed.Token = result.AccessToken
	if result.RefreshToken != "" {
		refreshed.RefreshToken = result.RefreshToken
	}
	if result.Scope != "" {
		refreshed.Scopes = strings.Fields(result.Scope)
	}
	if result.ExpiresIn > 0 {
		refreshed.Expiry = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)
	}
	return &refreshed, nil
}
