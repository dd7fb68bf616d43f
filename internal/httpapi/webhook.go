package httpapi

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

// PageProcessor 按已知页面处理某一天的健康数据
type PageProcessor interface {
	ProcessPage(ctx context.Context, pageID string, date models.Date) models.ProcessResult
}

// WebhookHandler Notion 按钮 Webhook
type WebhookHandler struct {
	pages        PageProcessor
	apiKey       string
	dateProperty string
	dedup        *DeliveryDedup
	logger       *zap.Logger
}

// NewWebhookHandler 创建 Webhook 处理器
func NewWebhookHandler(pages PageProcessor, apiKey, dateProperty string, dedup *DeliveryDedup, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		pages:        pages,
		apiKey:       apiKey,
		dateProperty: dateProperty,
		dedup:        dedup,
		logger:       logger,
	}
}

type webhookRequest struct {
	PageID     string                     `json:"pageId"`
	Properties map[string]json.RawMessage `json:"properties"`
}

type dateValue struct {
	Date *struct {
		Start string `json:"start"`
	} `json:"date"`
}

// WebhookResult Webhook 处理结果
type WebhookResult struct {
	RequestID string `json:"request_id"`
	PageID    string `json:"page_id"`
	Date      string `json:"date"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// Health GET / 健康检查
func (h *WebhookHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, OkMessage("Health check passed", map[string]string{"status": "ok"}))
}

// Handle POST /webhook
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	logger := h.logger.With(zap.String("request_id", requestID))

	if !h.authorized(r.Header.Get("X-API-Key")) {
		logger.Warn("Webhook rejected: invalid API key", zap.String("remote_addr", r.RemoteAddr))
		writeJSON(w, http.StatusUnauthorized, Fail("Unauthorized"))
		return
	}

	body, err := readBody(r, maxWebhookBody)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Invalid JSON payload"))
		return
	}
	var req webhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		logger.Warn("Webhook rejected: invalid JSON", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, Fail("Invalid JSON payload"))
		return
	}
	if req.PageID == "" {
		writeJSON(w, http.StatusBadRequest, Fail("Page ID is required"))
		return
	}

	raw := h.dateStart(req.Properties)
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, Fail("Date property is required"))
		return
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Invalid date format"))
		return
	}

	result := WebhookResult{RequestID: requestID, PageID: req.PageID, Date: date.String()}

	fresh, err := h.dedup.Claim(r.Context(), body)
	if err != nil {
		// 去重存储不可用时照常处理
		logger.Warn("Failed to check webhook delivery", zap.Error(err))
		fresh = true
	}
	if !fresh {
		logger.Info("Duplicate webhook delivery ignored", zap.String("page_id", req.PageID), zap.String("date", date.String()))
		result.Duplicate = true
		writeJSON(w, http.StatusOK, OkMessage("Duplicate delivery ignored", result))
		return
	}

	logger.Info("Processing webhook", zap.String("page_id", req.PageID), zap.String("date", date.String()))
	res := h.pages.ProcessPage(r.Context(), req.PageID, date)
	if res.Err != nil {
		if err := h.dedup.Release(context.WithoutCancel(r.Context()), body); err != nil {
			logger.Warn("Failed to release webhook delivery", zap.Error(err))
		}
		writeJSON(w, http.StatusInternalServerError, Fail("Failed to process Google Fit data: "+res.Err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, OkMessage("Successfully updated Google Fit data for "+date.String(), result))
}

func (h *WebhookHandler) authorized(key string) bool {
	if h.apiKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(h.apiKey)) == 1
}

// dateStart 读取 properties.<日付>.date.start
func (h *WebhookHandler) dateStart(props map[string]json.RawMessage) string {
	raw, ok := props[h.dateProperty]
	if !ok {
		return ""
	}
	var v dateValue
	if err := json.Unmarshal(raw, &v); err != nil || v.Date == nil {
		return ""
	}
	return v.Date.Start
}
