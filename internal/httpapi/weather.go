package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"
	"github.com/amurata/GoogleFitNotionIntegration/internal/service"

	"go.uber.org/zap"
)

// WeatherRunner 天气批处理
type WeatherRunner interface {
	ProcessRange(ctx context.Context, start, end models.Date, delay time.Duration, persist bool) *service.RangeReport
}

// WeatherHandler 天气数据更新接口
// 请求校验后立即返回，处理在后台按顺序执行
type WeatherHandler struct {
	ctx          context.Context
	runner       WeatherRunner
	maxDays      int
	defaultDelay time.Duration
	notionReady  bool
	logger       *zap.Logger

	wg sync.WaitGroup
}

// NewWeatherHandler 创建天气接口
// ctx 为后台任务的生命周期（服务停止时取消）
func NewWeatherHandler(ctx context.Context, runner WeatherRunner, maxDays int, defaultDelay time.Duration, notionReady bool, logger *zap.Logger) *WeatherHandler {
	return &WeatherHandler{
		ctx:          ctx,
		runner:       runner,
		maxDays:      maxDays,
		defaultDelay: defaultDelay,
		notionReady:  notionReady,
		logger:       logger,
	}
}

// WeatherUpdateRequest 更新请求
type WeatherUpdateRequest struct {
	StartDate    string   `json:"start_date"`
	EndDate      string   `json:"end_date"`
	UpdateNotion *bool    `json:"update_notion"`
	SleepSeconds *float64 `json:"sleep_seconds"`
}

// WeatherUpdateResult 已受理的任务
type WeatherUpdateResult struct {
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	DaysCount    int    `json:"days_count"`
	UpdateNotion bool   `json:"update_notion"`
}

// Health GET /api/v1/health
func (h *WeatherHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
	}))
}

// UpdatePost POST /api/v1/update-weather
func (h *WeatherHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	var req WeatherUpdateRequest
	body, err := readBody(r, 64<<10)
	if err == nil && len(body) > 0 {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Invalid JSON payload"))
		return
	}
	h.start(w, req)
}

// UpdateGet GET /api/v1/update-weather?start_date=&end_date=&update_notion=&sleep_seconds=
func (h *WeatherHandler) UpdateGet(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := WeatherUpdateRequest{StartDate: q.Get("start_date"), EndDate: q.Get("end_date")}
	if v := q.Get("update_notion"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("Invalid update_notion"))
			return
		}
		req.UpdateNotion = &b
	}
	if v := q.Get("sleep_seconds"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("Invalid sleep_seconds"))
			return
		}
		req.SleepSeconds = &f
	}
	h.start(w, req)
}

func (h *WeatherHandler) start(w http.ResponseWriter, req WeatherUpdateRequest) {
	if req.StartDate == "" {
		writeJSON(w, http.StatusBadRequest, Fail("start_date is required"))
		return
	}
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("Invalid date format, use YYYY-MM-DD"))
		return
	}
	end := start
	if req.EndDate != "" {
		if end, err = models.ParseDate(req.EndDate); err != nil {
			writeJSON(w, http.StatusBadRequest, Fail("Invalid date format, use YYYY-MM-DD"))
			return
		}
	}
	if end.Before(start) {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("end_date %s is before start_date %s", end, start)))
		return
	}
	days := len(models.DatesBetween(start, end))
	if h.maxDays > 0 && days > h.maxDays {
		writeJSON(w, http.StatusBadRequest, Fail(fmt.Sprintf("at most %d days per request (requested %d)", h.maxDays, days)))
		return
	}

	persist := req.UpdateNotion == nil || *req.UpdateNotion
	if persist && !h.notionReady {
		writeJSON(w, http.StatusInternalServerError, Fail("NOTION_SECRET or DATABASE_ID is not set"))
		return
	}
	delay := h.defaultDelay
	if req.SleepSeconds != nil && *req.SleepSeconds >= 0 {
		delay = time.Duration(*req.SleepSeconds * float64(time.Second))
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		report := h.runner.ProcessRange(h.ctx, start, end, delay, persist)
		h.logger.Info("Background weather update finished",
			zap.String("run_id", report.RunID),
			zap.Int("succeeded", report.Succeeded),
			zap.Int("failed", report.Failed),
			zap.Int("skipped", report.Skipped),
		)
	}()

	writeJSON(w, http.StatusOK, OkMessage(
		fmt.Sprintf("Weather update from %s to %s started in background", start, end),
		WeatherUpdateResult{
			StartDate:    start.String(),
			EndDate:      end.String(),
			DaysCount:    days,
			UpdateNotion: persist,
		},
	))
}

// Wait 等待后台任务结束
func (h *WeatherHandler) Wait() {
	h.wg.Wait()
}
