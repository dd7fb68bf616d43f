package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// NewRouter 注册 Webhook 和天气接口
// weather 为 nil 时不注册天气接口
func NewRouter(webhook *WebhookHandler, weather *WeatherHandler, logger *zap.Logger) *mux.Router {
	router := mux.NewRouter()
	router.Use(accessLog(logger))

	router.HandleFunc("/", webhook.Health).Methods(http.MethodGet)
	router.HandleFunc("/", webhook.Handle).Methods(http.MethodPost)
	router.HandleFunc("/webhook", webhook.Handle).Methods(http.MethodPost)

	if weather != nil {
		api := router.PathPrefix("/api/v1").Subrouter()
		api.HandleFunc("/health", weather.Health).Methods(http.MethodGet)
		api.HandleFunc("/update-weather", weather.UpdateGet).Methods(http.MethodGet)
		api.HandleFunc("/update-weather", weather.UpdatePost).Methods(http.MethodPost)
	}
	return router
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func accessLog(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			logger.Debug("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", time.Since(start)),
			)
		})
	}
}
