package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
)

var jst = time.FixedZone("JST", 9*3600)

func jsonHandler(t *testing.T, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/vnd.github+json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func newGitHubServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/user/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4", r.URL.Query().Get("per_page"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		jsonHandler(t, `[
			{"name":"alpha","full_name":"me/alpha","owner":{"login":"me"},"default_branch":"main"},
			{"name":"broken","full_name":"me/broken","owner":{"login":"me"}}
		]`)(w, r)
	})
	mux.HandleFunc("/repos/me/alpha/issues", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2024-03-14T15:00:00Z", r.URL.Query().Get("since"))
		if r.URL.Query().Get("page") != "1" {
			jsonHandler(t, `[]`)(w, r)
			return
		}
		jsonHandler(t, `[
			{"number":1,"title":"Fix bug","html_url":"https://github.com/me/alpha/issues/1","closed_at":"2024-03-15T01:00:00Z"},
			{"number":2,"title":"A PR","html_url":"https://github.com/me/alpha/pull/2","closed_at":"2024-03-15T01:00:00Z","pull_request":{"url":"x"}},
			{"number":3,"title":"Old","html_url":"https://github.com/me/alpha/issues/3","closed_at":"2024-03-14T14:00:00Z"}
		]`)(w, r)
	})
	mux.HandleFunc("/repos/me/alpha/pulls", jsonHandler(t, `[
		{"number":7,"title":"Add feature","html_url":"https://github.com/me/alpha/pull/7","merged_at":"2024-03-15T03:00:00Z"},
		{"number":8,"title":"Closed unmerged","html_url":"https://github.com/me/alpha/pull/8","merged_at":null},
		{"number":9,"title":"Next day","html_url":"https://github.com/me/alpha/pull/9","merged_at":"2024-03-16T00:00:00Z"}
	]`))
	mux.HandleFunc("/repos/me/alpha/pulls/7/commits", jsonHandler(t, `[{"sha":"p1","parents":[{"sha":"base"}]}]`))
	mux.HandleFunc("/repos/me/alpha/commits", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "main", q.Get("sha"))
		assert.Equal(t, "2024-03-15T00:00:00+09:00", q.Get("since"))
		jsonHandler(t, `[
			{"sha":"p1","parents":[{"sha":"base"}]},
			{"sha":"c1","parents":[{"sha":"p1"}]},
			{"sha":"m1","parents":[{"sha":"c1"},{"sha":"p1"}]},
			{"sha":"c2","parents":[{"sha":"c1"}]}
		]`)(w, r)
	})
	mux.HandleFunc("/repos/me/alpha/commits/c1", jsonHandler(t, `{"sha":"c1","stats":{"additions":10,"deletions":2}}`))
	mux.HandleFunc("/repos/me/alpha/commits/c2", jsonHandler(t, `{"sha":"c2","stats":{"additions":5,"deletions":1}}`))
	mux.HandleFunc("/repos/me/broken/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	return httptest.NewServer(mux)
}

type fakeUpdater struct {
	targets []models.ReconciliationTarget
	err     error
}

func (f *fakeUpdater) UpdateExisting(ctx context.Context, target models.ReconciliationTarget) (*models.ReconciliationResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.targets = append(f.targets, target)
	return &models.ReconciliationResult{Action: models.ActionUpdated, DocumentID: "page-1", CandidateCount: 1}, nil
}

func newTestService(url string, updater Updater) *Service {
	client := NewClient(url, "tok", 5*time.Second, zap.NewNop())
	return NewService(client, updater, jst, 4, "Github", zap.NewNop())
}

func TestService_Collect(t *testing.T) {
	srv := newGitHubServer(t)
	defer srv.Close()

	items, err := newTestService(srv.URL, &fakeUpdater{}).Collect(context.Background(), models.MustParseDate("2024-03-15"))
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "🎫 alpha:Issue #1: Fix bug", items[0].Text())
	assert.Equal(t, "https://github.com/me/alpha/issues/1", items[0].URL)
	assert.Equal(t, "🔀 alpha:PR #7: Add feature", items[1].Text())
	assert.Equal(t, "📝 alpha:変更行数:+15-3 (2 commits)", items[2].Text())
	assert.Equal(t, "https://github.com/me/alpha/commits/main", items[2].URL)
}

func TestService_ProcessDateUpdatesProperty(t *testing.T) {
	srv := newGitHubServer(t)
	defer srv.Close()

	updater := &fakeUpdater{}
	res := newTestService(srv.URL, updater).ProcessDate(context.Background(), models.MustParseDate("2024-03-15"))
	require.NoError(t, res.Err)
	require.Len(t, updater.targets, 1)

	target := updater.targets[0]
	assert.Equal(t, "2024-03-15", target.Date)
	require.Len(t, target.Properties, 1)
	prop := target.Properties[0]
	assert.Equal(t, "Github", prop.Name)
	assert.Equal(t, models.KindRichText, prop.Kind)
	// 3 条活动 + 2 个换行
	require.Len(t, prop.Text, 5)
	assert.Equal(t, "\n", prop.Text[1].Text)
	assert.Equal(t, "", prop.Text[1].Link)
}

func TestService_MissingPageFailsDate(t *testing.T) {
	srv := newGitHubServer(t)
	defer srv.Close()

	updater := &fakeUpdater{err: fmt.Errorf("2024-03-15: %w", models.ErrNoDocument)}
	res := newTestService(srv.URL, updater).ProcessDate(context.Background(), models.MustParseDate("2024-03-15"))
	assert.Equal(t, models.StatusError, res.Status)
	assert.Equal(t, models.StageReconcile, res.Stage())
	assert.ErrorIs(t, res.Err, models.ErrNoDocument)
}

func TestService_RepoListFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	res := newTestService(srv.URL, &fakeUpdater{}).ProcessDate(context.Background(), models.MustParseDate("2024-03-15"))
	assert.Equal(t, models.StageFetch, res.Stage())
	assert.ErrorIs(t, res.Err, models.ErrUnauthorized)
}

func TestRichText_Empty(t *testing.T) {
	assert.Equal(t, []models.TextSpan{{Text: "該当なし"}}, RichText(nil))
}

func TestParseDateArg(t *testing.T) {
	start, end, err := ParseDateArg("20240301")
	require.NoError(t, err)
	assert.Equal(t, start, end)
	assert.Equal(t, "2024-03-01", start.String())

	start, end, err = ParseDateArg("20240301-20240305")
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", start.String())
	assert.Equal(t, "2024-03-05", end.String())

	for _, bad := range []string{"2024-03-01", "20240305-20240301", "20240230", "2024031", ""} {
		_, _, err := ParseDateArg(bad)
		assert.ErrorIs(t, err, models.ErrInvalidDate, bad)
	}
}
