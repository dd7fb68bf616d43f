package reconciler

import (
	"context"
	"fmt"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"go.uber.org/zap"
)

// DocumentStore 按日期属性寻址的文档库
type DocumentStore interface {
	// Find 返回日期属性等于 date（YYYY-MM-DD）的所有文档，保持存储返回的顺序
	Find(ctx context.Context, date string) ([]models.Candidate, error)
	Create(ctx context.Context, title string, props []models.PropertyValue) (string, error)
	Update(ctx context.Context, id string, props []models.PropertyValue) error
}

// Reconciler 幂等的文档对账器
//
// 同一日期: 没有文档时创建，一个时更新，多个时选择第一个未回顾（振り返り）的文档；
// 全部已回顾时选择第一个并记录告警。不做重试，存储错误直接返回。
type Reconciler struct {
	store       DocumentStore
	titlePrefix string
	logger      *zap.Logger
}

// NewReconciler 创建对账器
func NewReconciler(store DocumentStore, titlePrefix string, logger *zap.Logger) *Reconciler {
	return &Reconciler{store: store, titlePrefix: titlePrefix, logger: logger}
}

// Reconcile 查找或创建目标日期的文档并写入属性
func (r *Reconciler) Reconcile(ctx context.Context, target models.ReconciliationTarget) (*models.ReconciliationResult, error) {
	date, props, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}

	candidates, err := r.store.Find(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents for %s: %w", date, err)
	}

	if len(candidates) == 0 {
		title := target.Title
		if title == "" {
			title = r.titlePrefix + date
		}
		id, err := r.store.Create(ctx, title, props)
		if err != nil {
			return nil, fmt.Errorf("failed to create document for %s: %w", date, err)
		}
		r.logger.Info("Created document", zap.String("date", date), zap.String("page_id", id))
		return &models.ReconciliationResult{Action: models.ActionCreated, DocumentID: id}, nil
	}

	return r.update(ctx, date, candidates, props)
}

// UpdateExisting 只更新已有文档，没有文档时返回 models.ErrNoDocument
func (r *Reconciler) UpdateExisting(ctx context.Context, target models.ReconciliationTarget) (*models.ReconciliationResult, error) {
	date, props, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}

	candidates, err := r.store.Find(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to find documents for %s: %w", date, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%s: %w", date, models.ErrNoDocument)
	}
	return r.update(ctx, date, candidates, props)
}

// UpdateDocument 直接更新指定文档（调用方已知文档 ID）
func (r *Reconciler) UpdateDocument(ctx context.Context, id string, target models.ReconciliationTarget) (*models.ReconciliationResult, error) {
	_, props, err := normalizeTarget(target)
	if err != nil {
		return nil, err
	}
	if err := r.store.Update(ctx, id, props); err != nil {
		return nil, fmt.Errorf("failed to update document %s: %w", id, err)
	}
	return &models.ReconciliationResult{Action: models.ActionUpdated, DocumentID: id, CandidateCount: 1}, nil
}

func (r *Reconciler) update(ctx context.Context, date string, candidates []models.Candidate, props []models.PropertyValue) (*models.ReconciliationResult, error) {
	chosen, allReflected := SelectCandidate(candidates)
	if len(candidates) > 1 {
		if allReflected {
			r.logger.Warn("All candidate documents are reflected, using the first one",
				zap.String("date", date),
				zap.Int("candidate_count", len(candidates)),
				zap.String("page_id", chosen.ID),
			)
		} else {
			r.logger.Info("Multiple documents for date, using first unreflected",
				zap.String("date", date),
				zap.Int("candidate_count", len(candidates)),
				zap.String("page_id", chosen.ID),
			)
		}
	}

	if err := r.store.Update(ctx, chosen.ID, props); err != nil {
		return nil, fmt.Errorf("failed to update document %s for %s: %w", chosen.ID, date, err)
	}
	return &models.ReconciliationResult{
		Action:         models.ActionUpdated,
		DocumentID:     chosen.ID,
		CandidateCount: len(candidates),
	}, nil
}

// SelectCandidate 选择第一个未回顾的候选；全部已回顾时返回第一个且 allReflected 为 true
// candidates 不能为空
func SelectCandidate(candidates []models.Candidate) (chosen models.Candidate, allReflected bool) {
	for _, c := range candidates {
		if !c.Reflected {
			return c, false
		}
	}
	return candidates[0], true
}

// NormalizeDate 把 YYYY/MM/DD 或 YYYY-MM-DD 统一为 YYYY-MM-DD
func NormalizeDate(s string) (string, error) {
	d, err := models.ParseDate(s)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

func normalizeTarget(target models.ReconciliationTarget) (string, []models.PropertyValue, error) {
	date, err := NormalizeDate(target.Date)
	if err != nil {
		return "", nil, fmt.Errorf("failed to normalize target date: %w", err)
	}

	props := make([]models.PropertyValue, len(target.Properties))
	for i, p := range target.Properties {
		if p.Kind == models.KindDate && p.Date != "" {
			normalized, err := NormalizeDate(p.Date)
			if err != nil {
				return "", nil, fmt.Errorf("failed to normalize property %s: %w", p.Name, err)
			}
			p.Date = normalized
		}
		props[i] = p
	}
	return date, props, nil
}
