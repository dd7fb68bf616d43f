package fitness

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/aggregator"
	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) { return string(s), nil }

type failingToken struct{}

func (failingToken) Token(ctx context.Context) (string, error) {
	return "", models.ErrUnauthorized
}

var jst = time.FixedZone("JST", 9*3600)

func testWindow(t *testing.T) models.TimeWindow {
	w, err := aggregator.BuildWindow(models.MustParseDate("2024-03-15"), jst)
	require.NoError(t, err)
	return w
}

func newTestClient(url string, tokens TokenSource) *Client {
	return NewClient(url, 5*time.Second, time.Minute, jst, tokens, zap.NewNop())
}

func TestQueryAggregate_ParsesPoints(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/dataset:aggregate", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req AggregateRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, aggregator.DataTypeSteps, req.AggregateBy[0].DataTypeName)
		assert.Equal(t, int64(60000), req.BucketByTime.DurationMillis)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bucket":[
			{"dataset":[{"point":[{"startTimeNanos":"1710457200000000000","value":[{"intVal":3000}]}]}]},
			{"dataset":[{"point":[{"startTimeNanos":"1710460800000000000","value":[{"fpVal":7000.0}]}]}]},
			{"dataset":[{"point":[]}]}
		]}`))
	}))
	defer srv.Close()

	samples, err := newTestClient(srv.URL, staticToken("tok")).QueryAggregate(context.Background(), testWindow(t), aggregator.DataTypeSteps)
	require.NoError(t, err)
	require.Len(t, samples, 2)
	assert.Equal(t, 3000.0, samples[0].Value)
	assert.Equal(t, 7000.0, samples[1].Value)
	assert.Equal(t, 10000.0, aggregator.Reduce(samples, aggregator.ReduceSum))
}

func TestQueryAggregate_SummaryPointKeepsExtremes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bucket":[
			{"dataset":[{"point":[{"startTimeNanos":"1710457200000000000","value":[{"fpVal":82.5},{"fpVal":131.0},{"fpVal":58.0}]}]}]}
		]}`))
	}))
	defer srv.Close()

	samples, err := newTestClient(srv.URL, staticToken("tok")).QueryAggregate(context.Background(), testWindow(t), aggregator.DataTypeHeartRate)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, 82.5, samples[0].Value)
	require.NotNil(t, samples[0].Max)
	require.NotNil(t, samples[0].Min)
	assert.Equal(t, 131.0, *samples[0].Max)
	assert.Equal(t, 58.0, *samples[0].Min)
	assert.Equal(t, 131.0, aggregator.PeakMax(samples))
	assert.Equal(t, 58.0, aggregator.PeakMin(samples))
}

func TestQueryAggregate_UnauthorizedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, staticToken("tok")).QueryAggregate(context.Background(), testWindow(t), aggregator.DataTypeSteps)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}

func TestQueryAggregate_TokenFailure(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:0", failingToken{}).QueryAggregate(context.Background(), testWindow(t), aggregator.DataTypeSteps)
	assert.True(t, errors.Is(err, models.ErrUnauthorized))
}

func TestQueryAggregate_NotFoundIsPlainError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"message":"no default datasource found"}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, staticToken("tok")).QueryAggregate(context.Background(), testWindow(t), aggregator.DataTypeOxygen)
	require.Error(t, err)
	assert.False(t, errors.Is(err, models.ErrUnauthorized))
}

func TestQuerySessions_PagingAndLabels(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/sessions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			w.Write([]byte(`{"session":[
				{"id":"a","startTimeMillis":"1710457200000","endTimeMillis":"1710460800000","activityType":8,"application":{"name":"AppA"}}
			],"nextPageToken":"p2","hasMoreData":true}`))
			return
		}
		w.Write([]byte(`{"session":[
			{"id":"b","startTimeMillis":"1710459000000","endTimeMillis":"1710461700000","activityType":7,"application":{"packageName":"com.example.b"}}
		],"hasMoreData":false}`))
	}))
	defer srv.Close()

	sessions, err := newTestClient(srv.URL, staticToken("tok")).QuerySessions(context.Background(), testWindow(t), nil)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	require.Len(t, sessions, 2)

	assert.Equal(t, "Running", sessions[0].Label)
	assert.Equal(t, "AppA", sessions[0].SourceName)
	assert.Equal(t, 60.0, sessions[0].Minutes())
	assert.Equal(t, "Walking", sessions[1].Label)
	assert.Equal(t, "com.example.b", sessions[1].SourceName)
	assert.Equal(t, jst, sessions[0].Start.Location())
}

func TestQuerySessions_FiltersActivityType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "72", r.URL.Query().Get("activityType"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"session":[
			{"id":"s","startTimeMillis":"1710428400000","endTimeMillis":"1710455400000","activityType":72,"application":{"name":"AutoSleep"}},
			{"id":"x","startTimeMillis":"1710457200000","endTimeMillis":"1710460800000","activityType":8,"application":{"name":"AppA"}}
		]}`))
	}))
	defer srv.Close()

	sleep := aggregator.ActivitySleep
	sessions, err := newTestClient(srv.URL, staticToken("tok")).QuerySessions(context.Background(), testWindow(t), &sleep)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, aggregator.SleepLabel, sessions[0].Label)
	assert.Equal(t, 450.0, sessions[0].Minutes())
}
