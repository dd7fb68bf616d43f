package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// maxIssuePages Issue 分页上限
const maxIssuePages = 10

// Repo 仓库
type Repo struct {
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
	DefaultBranch string    `json:"default_branch"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Key owner/name
func (r Repo) Key() string {
	return r.Owner.Login + "/" + r.Name
}

// Branch 默认分支，未返回时为 main
func (r Repo) Branch() string {
	if r.DefaultBranch == "" {
		return "main"
	}
	return r.DefaultBranch
}

// Issue Issue（列表中也包含 PR，通过 pull_request 字段区分）
type Issue struct {
	Number      int             `json:"number"`
	Title       string          `json:"title"`
	HTMLURL     string          `json:"html_url"`
	ClosedAt    *time.Time      `json:"closed_at"`
	PullRequest json.RawMessage `json:"pull_request,omitempty"`
}

// PullRequest PR
type PullRequest struct {
	Number   int        `json:"number"`
	Title    string     `json:"title"`
	HTMLURL  string     `json:"html_url"`
	MergedAt *time.Time `json:"merged_at"`
}

// Commit 提交
type Commit struct {
	SHA     string `json:"sha"`
	Parents []struct {
		SHA string `json:"sha"`
	} `json:"parents"`
}

// CommitStats 提交的变更行数
type CommitStats struct {
	Additions int `json:"additions"`
	Deletions int `json:"deletions"`
}

// Client GitHub REST 客户端
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient 创建 GitHub 客户端
func NewClient(baseURL, token string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Authorization", "token "+token).
		SetHeader("Accept", "application/vnd.github+json")

	return &Client{httpClient: client, logger: logger}
}

// OwnedRepos 最近更新的自有仓库
func (c *Client) OwnedRepos(ctx context.Context, limit int) ([]Repo, error) {
	var repos []Repo
	err := c.get(ctx, "/user/repos", map[string]string{
		"per_page":    strconv.Itoa(limit),
		"page":        "1",
		"affiliation": "owner",
		"sort":        "updated",
		"direction":   "desc",
	}, &repos)
	if err != nil {
		return nil, fmt.Errorf("failed to list repositories: %w", err)
	}
	return repos, nil
}

// ClosedIssues since 之后有更新的已关闭 Issue
func (c *Client) ClosedIssues(ctx context.Context, repo Repo, since time.Time) ([]Issue, error) {
	var all []Issue
	for page := 1; page <= maxIssuePages; page++ {
		var batch []Issue
		err := c.get(ctx, "/repos/"+repo.Key()+"/issues", map[string]string{
			"state":    "closed",
			"per_page": "100",
			"page":     strconv.Itoa(page),
			"since":    since.UTC().Format(time.RFC3339),
		}, &batch)
		if err != nil {
			return nil, fmt.Errorf("failed to list issues of %s: %w", repo.Key(), err)
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}
	return all, nil
}

// ClosedPulls 最近更新的已关闭 PR
func (c *Client) ClosedPulls(ctx context.Context, repo Repo) ([]PullRequest, error) {
	var pulls []PullRequest
	err := c.get(ctx, "/repos/"+repo.Key()+"/pulls", map[string]string{
		"state":     "closed",
		"per_page":  "50",
		"sort":      "updated",
		"direction": "desc",
	}, &pulls)
	if err != nil {
		return nil, fmt.Errorf("failed to list pulls of %s: %w", repo.Key(), err)
	}
	return pulls, nil
}

// PullCommitSHAs PR 包含的提交
func (c *Client) PullCommitSHAs(ctx context.Context, repo Repo, number int) ([]string, error) {
	var commits []Commit
	err := c.get(ctx, fmt.Sprintf("/repos/%s/pulls/%d/commits", repo.Key(), number), map[string]string{
		"per_page": "100",
	}, &commits)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits of %s#%d: %w", repo.Key(), number, err)
	}
	shas := make([]string, len(commits))
	for i, cm := range commits {
		shas[i] = cm.SHA
	}
	return shas, nil
}

// Commits 默认分支上 [since, until] 内的提交
func (c *Client) Commits(ctx context.Context, repo Repo, since, until time.Time) ([]Commit, error) {
	var commits []Commit
	err := c.get(ctx, "/repos/"+repo.Key()+"/commits", map[string]string{
		"sha":      repo.Branch(),
		"since":    since.Format(time.RFC3339),
		"until":    until.Format(time.RFC3339),
		"per_page": "100",
	}, &commits)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits of %s: %w", repo.Key(), err)
	}
	return commits, nil
}

// CommitStats 单个提交的变更行数
func (c *Client) CommitStats(ctx context.Context, repo Repo, sha string) (CommitStats, error) {
	var detail struct {
		Stats CommitStats `json:"stats"`
	}
	if err := c.get(ctx, "/repos/"+repo.Key()+"/commits/"+sha, nil, &detail); err != nil {
		return CommitStats{}, fmt.Errorf("failed to get commit %s: %w", sha, err)
	}
	return detail.Stats, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, out any) error {
	c.logger.Debug("Calling GitHub API", zap.String("path", path))

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		Get(path)
	if err != nil {
		return fmt.Errorf("failed to call GitHub API: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return fmt.Errorf("status %d: %w", resp.StatusCode(), models.ErrUnauthorized)
	case resp.IsError():
		return fmt.Errorf("GitHub API error: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}
