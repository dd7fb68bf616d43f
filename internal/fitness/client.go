package fitness

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/aggregator"
	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// maxSessionPages 会话分页上限
const maxSessionPages = 20

// TokenSource 提供 access token
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// AggregateRequest dataset:aggregate 请求
type AggregateRequest struct {
	AggregateBy     []AggregateBy `json:"aggregateBy"`
	BucketByTime    BucketByTime  `json:"bucketByTime"`
	StartTimeMillis int64         `json:"startTimeMillis"`
	EndTimeMillis   int64         `json:"endTimeMillis"`
}

// AggregateBy 聚合的数据类型
type AggregateBy struct {
	DataTypeName string `json:"dataTypeName"`
}

// BucketByTime 按时间分桶
type BucketByTime struct {
	DurationMillis int64 `json:"durationMillis"`
}

// AggregateResponse dataset:aggregate 响应
type AggregateResponse struct {
	Bucket []struct {
		Dataset []struct {
			DataSourceID string      `json:"dataSourceId"`
			Point        []DataPoint `json:"point"`
		} `json:"dataset"`
	} `json:"bucket"`
}

// DataPoint 数据点（int64 字段以字符串返回）
type DataPoint struct {
	StartTimeNanos string  `json:"startTimeNanos"`
	EndTimeNanos   string  `json:"endTimeNanos"`
	DataTypeName   string  `json:"dataTypeName"`
	Value          []Value `json:"value"`
}

// Value 数据点的值，intVal / fpVal 二选一
type Value struct {
	IntVal *int64   `json:"intVal,omitempty"`
	FpVal  *float64 `json:"fpVal,omitempty"`
}

// SessionsResponse sessions 列表响应
type SessionsResponse struct {
	Session []struct {
		ID              string `json:"id"`
		Name            string `json:"name"`
		StartTimeMillis string `json:"startTimeMillis"`
		EndTimeMillis   string `json:"endTimeMillis"`
		ActivityType    int    `json:"activityType"`
		Application     struct {
			PackageName string `json:"packageName"`
			Name        string `json:"name"`
		} `json:"application"`
	} `json:"session"`
	NextPageToken string `json:"nextPageToken"`
	HasMoreData   bool   `json:"hasMoreData"`
}

// Client Google Fit REST 客户端
type Client struct {
	httpClient *resty.Client
	tokens     TokenSource
	resolution time.Duration
	location   *time.Location
	logger     *zap.Logger
}

var _ aggregator.FitnessSource = (*Client)(nil)

// NewClient 创建 Google Fit 客户端
// resolution: 聚合桶长度，<= 0 时整个窗口一个桶
func NewClient(baseURL string, timeout, resolution time.Duration, location *time.Location, tokens TokenSource, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: client,
		tokens:     tokens,
		resolution: resolution,
		location:   location,
		logger:     logger,
	}
}

// QueryAggregate 查询窗口内某个数据类型的采样点
func (c *Client) QueryAggregate(ctx context.Context, window models.TimeWindow, dataType string) ([]models.Sample, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	bucket := c.resolution
	if bucket <= 0 || bucket > window.BucketDuration() {
		bucket = window.BucketDuration()
	}
	request := AggregateRequest{
		AggregateBy:     []AggregateBy{{DataTypeName: dataType}},
		BucketByTime:    BucketByTime{DurationMillis: bucket.Milliseconds()},
		StartTimeMillis: window.Start.UnixMilli(),
		EndTimeMillis:   window.End.UnixMilli(),
	}

	c.logger.Debug("Calling Google Fit API: dataset:aggregate",
		zap.String("data_type", dataType),
		zap.Int64("start_time", request.StartTimeMillis),
		zap.Int64("end_time", request.EndTimeMillis),
	)

	var response AggregateResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetBody(request).
		SetResult(&response).
		Post("/dataset:aggregate")
	if err != nil {
		return nil, fmt.Errorf("failed to call Google Fit API: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("failed to aggregate %s: %w", dataType, err)
	}

	var samples []models.Sample
	for _, b := range response.Bucket {
		for _, ds := range b.Dataset {
			for _, p := range ds.Point {
				if s, ok := toSample(p); ok {
					samples = append(samples, s)
				}
			}
		}
	}
	return samples, nil
}

// QuerySessions 查询窗口内的会话
func (c *Client) QuerySessions(ctx context.Context, window models.TimeWindow, activityType *int) ([]models.Session, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	var sessions []models.Session
	pageToken := ""
	for page := 0; page < maxSessionPages; page++ {
		req := c.httpClient.R().
			SetContext(ctx).
			SetAuthToken(token).
			SetQueryParam("startTime", window.Start.Format(time.RFC3339Nano)).
			SetQueryParam("endTime", window.End.Format(time.RFC3339Nano))
		if activityType != nil {
			req.SetQueryParam("activityType", strconv.Itoa(*activityType))
		}
		if pageToken != "" {
			req.SetQueryParam("pageToken", pageToken)
		}

		var response SessionsResponse
		resp, err := req.SetResult(&response).Get("/sessions")
		if err != nil {
			return nil, fmt.Errorf("failed to call Google Fit API: %w", err)
		}
		if err := checkStatus(resp); err != nil {
			return nil, fmt.Errorf("failed to list sessions: %w", err)
		}

		for _, s := range response.Session {
			if activityType != nil && s.ActivityType != *activityType {
				continue
			}
			start, err1 := strconv.ParseInt(s.StartTimeMillis, 10, 64)
			end, err2 := strconv.ParseInt(s.EndTimeMillis, 10, 64)
			if err1 != nil || err2 != nil {
				c.logger.Warn("Skipping session with invalid time", zap.String("session_id", s.ID))
				continue
			}
			source := s.Application.Name
			if source == "" {
				source = s.Application.PackageName
			}
			sessions = append(sessions, models.Session{
				Start:        time.UnixMilli(start).In(c.location),
				End:          time.UnixMilli(end).In(c.location),
				ActivityType: s.ActivityType,
				Label:        aggregator.ActivityName(s.ActivityType),
				SourceName:   source,
			})
		}

		if !response.HasMoreData || response.NextPageToken == "" || response.NextPageToken == pageToken {
			break
		}
		pageToken = response.NextPageToken
	}

	return sessions, nil
}

func checkStatus(resp *resty.Response) error {
	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return fmt.Errorf("status %d: %w", resp.StatusCode(), models.ErrUnauthorized)
	case resp.IsError():
		return fmt.Errorf("Google Fit API error: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

func toSample(p DataPoint) (models.Sample, bool) {
	if len(p.Value) == 0 {
		return models.Sample{}, false
	}
	nanos, err := strconv.ParseInt(p.StartTimeNanos, 10, 64)
	if err != nil {
		return models.Sample{}, false
	}
	value, ok := p.Value[0].float()
	if !ok {
		return models.Sample{}, false
	}
	sample := models.Sample{Timestamp: time.Unix(0, nanos), Value: value}
	// 心率等汇总类型每个桶返回 [平均, 最大, 最小]
	if len(p.Value) >= 3 {
		if hi, ok := p.Value[1].float(); ok {
			sample.Max = models.Float64Ptr(hi)
		}
		if lo, ok := p.Value[2].float(); ok {
			sample.Min = models.Float64Ptr(lo)
		}
	}
	return sample, true
}

func (v Value) float() (float64, bool) {
	switch {
	case v.FpVal != nil:
		return *v.FpVal, true
	case v.IntVal != nil:
		return float64(*v.IntVal), true
	}
	return 0, false
}
