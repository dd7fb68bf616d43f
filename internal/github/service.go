package github

import (
	"context"
	"errors"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/amurata/GoogleFitNotionIntegration/internal/service"

	"go.uber.org/zap"
)

// API GitHub 查询接口
type API interface {
	OwnedRepos(ctx context.Context, limit int) ([]Repo, error)
	ClosedIssues(ctx context.Context, repo Repo, since time.Time) ([]Issue, error)
	ClosedPulls(ctx context.Context, repo Repo) ([]PullRequest, error)
	PullCommitSHAs(ctx context.Context, repo Repo, number int) ([]string, error)
	Commits(ctx context.Context, repo Repo, since, until time.Time) ([]Commit, error)
	CommitStats(ctx context.Context, repo Repo, sha string) (CommitStats, error)
}

// Updater 只更新已有页面
type Updater interface {
	UpdateExisting(ctx context.Context, target models.ReconciliationTarget) (*models.ReconciliationResult, error)
}

// Service GitHub 活动同步服务
type Service struct {
	api       API
	updater   Updater
	location  *time.Location
	repoLimit int
	property  string
	logger    *zap.Logger
}

// NewService 创建 GitHub 活动同步服务
func NewService(api API, updater Updater, location *time.Location, repoLimit int, property string, logger *zap.Logger) *Service {
	return &Service{
		api:       api,
		updater:   updater,
		location:  location,
		repoLimit: repoLimit,
		property:  property,
		logger:    logger,
	}
}

// Collect 收集某一天的 Issue、PR 和直接提交
// 仓库列表失败时返回错误；单个仓库的失败只记录并跳过
func (s *Service) Collect(ctx context.Context, date models.Date) ([]Item, error) {
	start := date.In(s.location)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	repos, err := s.api.OwnedRepos(ctx, s.repoLimit)
	if err != nil {
		return nil, err
	}

	issues := s.closedIssues(ctx, repos, start, end)
	pulls, pullRepos := s.mergedPulls(ctx, repos, start, end)
	prCommits := s.pullCommits(ctx, pulls, pullRepos)
	commits := s.directCommits(ctx, repos, start, end, prCommits)

	items := make([]Item, 0, len(issues)+len(pulls)+len(commits))
	items = append(items, issues...)
	items = append(items, pulls...)
	items = append(items, commits...)

	s.logger.Info("Collected GitHub activity",
		zap.String("date", date.String()),
		zap.Int("repos", len(repos)),
		zap.Int("issues", len(issues)),
		zap.Int("pulls", len(pulls)),
		zap.Int("commit_repos", len(commits)),
	)
	return items, nil
}

func within(t *time.Time, start, end time.Time) bool {
	return t != nil && !t.Before(start) && !t.After(end)
}

func (s *Service) closedIssues(ctx context.Context, repos []Repo, start, end time.Time) []Item {
	var items []Item
	for _, repo := range repos {
		issues, err := s.api.ClosedIssues(ctx, repo, start)
		if err != nil {
			s.skip(repo, "issues", err)
			continue
		}
		for _, is := range issues {
			if len(is.PullRequest) > 0 || !within(is.ClosedAt, start, end) {
				continue
			}
			items = append(items, Item{Kind: KindIssue, Repo: repo.Key(), Number: is.Number, Title: is.Title, URL: is.HTMLURL})
		}
	}
	return items
}

func (s *Service) mergedPulls(ctx context.Context, repos []Repo, start, end time.Time) ([]Item, map[string]Repo) {
	var items []Item
	byKey := make(map[string]Repo, len(repos))
	for _, repo := range repos {
		byKey[repo.Key()] = repo
		pulls, err := s.api.ClosedPulls(ctx, repo)
		if err != nil {
			s.skip(repo, "pulls", err)
			continue
		}
		for _, pr := range pulls {
			if !within(pr.MergedAt, start, end) {
				continue
			}
			items = append(items, Item{Kind: KindPull, Repo: repo.Key(), Number: pr.Number, Title: pr.Title, URL: pr.HTMLURL})
		}
	}
	return items, byKey
}

func (s *Service) pullCommits(ctx context.Context, pulls []Item, repos map[string]Repo) map[string]bool {
	shas := make(map[string]bool)
	for _, pr := range pulls {
		repo, ok := repos[pr.Repo]
		if !ok {
			continue
		}
		list, err := s.api.PullCommitSHAs(ctx, repo, pr.Number)
		if err != nil {
			s.skip(repo, "pull commits", err)
			continue
		}
		for _, sha := range list {
			shas[sha] = true
		}
	}
	return shas
}

// directCommits 按仓库汇总默认分支上的直接提交（排除 PR 内提交和合并提交）
func (s *Service) directCommits(ctx context.Context, repos []Repo, start, end time.Time, prCommits map[string]bool) []Item {
	var items []Item
	for _, repo := range repos {
		commits, err := s.api.Commits(ctx, repo, start, end)
		if err != nil {
			s.skip(repo, "commits", err)
			continue
		}

		item := Item{Kind: KindCommit, Repo: repo.Key(), URL: "https://github.com/" + repo.Key() + "/commits/" + repo.Branch()}
		failed := false
		for _, cm := range commits {
			if prCommits[cm.SHA] || len(cm.Parents) > 1 {
				continue
			}
			stats, err := s.api.CommitStats(ctx, repo, cm.SHA)
			if err != nil {
				s.skip(repo, "commit stats", err)
				failed = true
				break
			}
			item.Additions += stats.Additions
			item.Deletions += stats.Deletions
			item.Commits++
		}
		if !failed && item.Commits > 0 {
			items = append(items, item)
		}
	}
	return items
}

func (s *Service) skip(repo Repo, what string, err error) {
	s.logger.Warn("Skipping repository",
		zap.String("repo", repo.Key()),
		zap.String("what", what),
		zap.Error(err),
	)
}

// ProcessDate 收集活动并写入当天已有页面；没有页面时该日期失败
func (s *Service) ProcessDate(ctx context.Context, date models.Date) models.ProcessResult {
	items, err := s.Collect(ctx, date)
	if err != nil {
		return s.fail(date, models.NewStageError(date, models.StageFetch, err))
	}

	rec, err := s.updater.UpdateExisting(ctx, models.ReconciliationTarget{
		Date:       date.String(),
		Properties: []models.PropertyValue{models.RichTextProperty(s.property, RichText(items))},
	})
	if err != nil {
		if errors.Is(err, models.ErrNoDocument) {
			s.logger.Warn("No page for date, skipping", zap.String("date", date.String()))
		}
		return s.fail(date, models.NewStageError(date, models.StageReconcile, err))
	}

	s.logger.Info("Synced GitHub activity", zap.String("date", date.String()), zap.String("page_id", rec.DocumentID))
	return models.ProcessResult{Date: date, Status: models.StatusSuccess, Reconciliation: rec}
}

// ProcessRange 顺序处理日期范围
func (s *Service) ProcessRange(ctx context.Context, start, end models.Date, delay time.Duration) *service.RangeReport {
	return service.RunRange(ctx, start, end, delay, s.ProcessDate, s.logger)
}

func (s *Service) fail(date models.Date, err error) models.ProcessResult {
	s.logger.Error("Failed to sync GitHub activity",
		zap.String("date", date.String()),
		zap.Error(err),
	)
	return models.ProcessResult{Date: date, Status: models.StatusError, Err: err}
}
