package credential

import (
	"context"
	"fmt"
)

// AuditReport 凭证审计结果
type AuditReport struct {
	MissingFields   []string
	HasRefreshToken bool
	// 距上次更新的天数，未记录更新时间时为 -1
	DaysSinceUpdate int
	Stale           bool
	Expired         bool
	Scopes          []string
	MissingScopes   []string
}

// OK 是否没有任何问题
func (r *AuditReport) OK() bool {
	return len(r.MissingFields) == 0 && r.HasRefreshToken && !r.Stale && len(r.MissingScopes) == 0
}

// Audit 检查存储中的凭证
// maxAgeDays: 超过该天数未更新视为陈旧
func (p *Provider) Audit(ctx context.Context, maxAgeDays int) (*AuditReport, error) {
	cred, err := p.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	now := p.now()
	report := &AuditReport{
		MissingFields:   cred.MissingFields(),
		HasRefreshToken: cred.RefreshToken != "",
		DaysSinceUpdate: -1,
		Expired:         cred.Expired(now),
		Scopes:          cred.Scopes,
		MissingScopes:   cred.MissingScopes(RequiredScopes),
	}
	if !cred.UpdatedAt.IsZero() {
		report.DaysSinceUpdate = int(now.Sub(cred.UpdatedAt).Hours() / 24)
		report.Stale = report.DaysSinceUpdate > maxAgeDays
	}
	return report, nil
}
