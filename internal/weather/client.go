package weather

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client 气象厅过去观测数据页面客户端
type Client struct {
	httpClient *resty.Client
	precNo     string
	blockNo    string
	logger     *zap.Logger
}

// NewClient 创建客户端
// precNo / blockNo: 都道府県番号和观测点番号（默认东京 44 / 47662）
func NewClient(baseURL, precNo, blockNo string, timeout time.Duration, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(3).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &Client{
		httpClient: client,
		precNo:     precNo,
		blockNo:    blockNo,
		logger:     logger,
	}
}

// FetchHourly 获取指定日期的逐时观测
func (c *Client) FetchHourly(ctx context.Context, date models.Date) ([]HourlyObservation, error) {
	c.logger.Debug("Fetching JMA hourly observations",
		zap.String("date", date.String()),
		zap.String("prec_no", c.precNo),
		zap.String("block_no", c.blockNo),
	)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"prec_no":  c.precNo,
			"block_no": c.blockNo,
			"year":     strconv.Itoa(date.Year),
			"month":    fmt.Sprintf("%02d", int(date.Month)),
			"day":      fmt.Sprintf("%02d", date.Day),
			"view":     "p1",
		}).
		Get("/hourly_s1.php")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch weather page: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("weather page error: status %d", resp.StatusCode())
	}

	obs, err := ParseHourly(bytes.NewReader(resp.Body()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse weather page for %s: %w", date, err)
	}
	return obs, nil
}
