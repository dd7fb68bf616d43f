package notion

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// pageSize 每次查询的最大条数
const pageSize = 100

// QueryRequest 数据库查询请求
type QueryRequest struct {
	Filter      map[string]any `json:"filter"`
	StartCursor string         `json:"start_cursor,omitempty"`
	PageSize    int            `json:"page_size"`
}

// Page Notion 页面
type Page struct {
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
}

// QueryResponse 数据库查询响应
type QueryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// APIError Notion 错误响应
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Client Notion API 客户端
// 不做重试：一次对账只允许一次写入
type Client struct {
	httpClient         *resty.Client
	databaseID         string
	dateProperty       string
	reflectionProperty string
	logger             *zap.Logger
}

// Options 客户端参数
type Options struct {
	BaseURL            string
	Secret             string
	Version            string
	DatabaseID         string
	DateProperty       string
	ReflectionProperty string
	Timeout            time.Duration
}

// NewClient 创建 Notion 客户端
func NewClient(opts Options, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetRetryCount(0).
		SetAuthToken(opts.Secret).
		SetHeader("Notion-Version", opts.Version).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient:         client,
		databaseID:         opts.DatabaseID,
		dateProperty:       opts.DateProperty,
		reflectionProperty: opts.ReflectionProperty,
		logger:             logger,
	}
}

// DateProperty 日期属性名
func (c *Client) DateProperty() string {
	return c.dateProperty
}

// Find 查询日期属性等于 date 的所有页面（自动翻页）
func (c *Client) Find(ctx context.Context, date string) ([]models.Candidate, error) {
	request := QueryRequest{
		Filter: map[string]any{
			"property": c.dateProperty,
			"date":     map[string]any{"equals": date},
		},
		PageSize: pageSize,
	}

	var candidates []models.Candidate
	for {
		var response QueryResponse
		var apiErr APIError
		resp, err := c.httpClient.R().
			SetContext(ctx).
			SetBody(request).
			SetResult(&response).
			SetError(&apiErr).
			Post("/databases/" + c.databaseID + "/query")
		if err != nil {
			return nil, fmt.Errorf("failed to call Notion API: %w", err)
		}
		if err := checkStatus(resp, apiErr); err != nil {
			return nil, fmt.Errorf("failed to query database: %w", err)
		}

		for _, p := range response.Results {
			candidates = append(candidates, models.Candidate{
				ID:         p.ID,
				Reflected:  checkboxValue(p.Properties, c.reflectionProperty),
				Properties: p.Properties,
			})
		}

		if !response.HasMore || response.NextCursor == nil || *response.NextCursor == "" {
			break
		}
		request.StartCursor = *response.NextCursor
	}

	c.logger.Debug("Queried Notion database",
		zap.String("date", date),
		zap.Int("candidate_count", len(candidates)),
	)
	return candidates, nil
}

// Create 在数据库中创建页面，返回页面 ID
func (c *Client) Create(ctx context.Context, title string, props []models.PropertyValue) (string, error) {
	properties := EncodeProperties(props)
	properties["title"] = encodeValue(models.TitleProperty("title", title))

	body := map[string]any{
		"parent":     map[string]any{"database_id": c.databaseID},
		"properties": properties,
	}

	var page Page
	var apiErr APIError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&page).
		SetError(&apiErr).
		Post("/pages")
	if err != nil {
		return "", fmt.Errorf("failed to call Notion API: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return "", fmt.Errorf("failed to create page: %w", err)
	}

	c.logger.Info("Created Notion page", zap.String("page_id", page.ID), zap.String("title", title))
	return page.ID, nil
}

// Update 更新页面属性
func (c *Client) Update(ctx context.Context, id string, props []models.PropertyValue) error {
	var apiErr APIError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]any{"properties": EncodeProperties(props)}).
		SetError(&apiErr).
		Patch("/pages/" + id)
	if err != nil {
		return fmt.Errorf("failed to call Notion API: %w", err)
	}
	if err := checkStatus(resp, apiErr); err != nil {
		return fmt.Errorf("failed to update page %s: %w", id, err)
	}

	c.logger.Info("Updated Notion page", zap.String("page_id", id))
	return nil
}

func checkStatus(resp *resty.Response, apiErr APIError) error {
	switch {
	case resp.StatusCode() == http.StatusUnauthorized:
		return fmt.Errorf("Notion API error: %s: %w", apiErr.Message, models.ErrUnauthorized)
	case resp.IsError():
		return fmt.Errorf("Notion API error: %s (status: %d, code: %s)", apiErr.Message, resp.StatusCode(), apiErr.Code)
	}
	return nil
}

// checkboxValue 读取复选框属性，缺失或类型不符时为 false
func checkboxValue(properties map[string]any, name string) bool {
	prop, ok := properties[name].(map[string]any)
	if !ok {
		return false
	}
	v, _ := prop["checkbox"].(bool)
	return v
}
