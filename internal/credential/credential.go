package credential

import (
	"time"
)

// RequiredScopes Google Fit 读取所需的 OAuth scope
var RequiredScopes = []string{
	"https://www.googleapis.com/auth/fitness.activity.read",
	"https://www.googleapis.com/auth/fitness.body.read",
	"https://www.googleapis.com/auth/fitness.heart_rate.read",
	"https://www.googleapis.com/auth/fitness.oxygen_saturation.read",
	"https://www.googleapis.com/auth/fitness.sleep.read",
	"https://www.googleapis.com/auth/fitness.location.read",
}

// expirySkew 提前刷新的时间余量
const expirySkew = time.Minute

// Credential OAuth 凭证
type Credential struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	TokenURI     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty"`
}

// Expired 是否已过期（未设置过期时间视为未过期）
func (c *Credential) Expired(now time.Time) bool {
	if c.Expiry.IsZero() {
		return false
	}
	return !now.Add(expirySkew).Before(c.Expiry)
}

// MissingFields 缺失的必填字段
func (c *Credential) MissingFields() []string {
	var missing []string
	fields := []struct {
		name  string
		empty bool
	}{
		{"token", c.Token == ""},
		{"refresh_token", c.RefreshToken == ""},
		{"token_uri", c.TokenURI == ""},
		{"client_id", c.ClientID == ""},
		{"client_secret", c.ClientSecret == ""},
		{"scopes", len(c.Scopes) == 0},
	}
	for _, f := range fields {
		if f.empty {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// MissingScopes 未授权的 scope
func (c *Credential) MissingScopes(required []string) []string {
	granted := make(map[string]struct{}, len(c.Scopes))
	for _, s := range c.Scopes {
		granted[s] = struct{}{}
	}
	var missing []string
	for _, s := range required {
		if _, ok := granted[s]; !ok {
			missing = append(missing, s)
		}
	}
	return missing
}
