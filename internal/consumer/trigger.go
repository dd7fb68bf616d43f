package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/models"

	"go.uber.org/zap"
)

const (
	// TriggerYesterday 处理前一天
	TriggerYesterday = "trigger"
	// TriggerToday 处理当天
	TriggerToday = "trigger_today"
)

// DateProcessor 处理单个日期
type DateProcessor interface {
	ProcessDate(ctx context.Context, date models.Date) models.ProcessResult
}

// ParseTrigger 把触发消息解析为目标日期
// "trigger" -> 昨天；"trigger_today" -> 今天；日期字符串 -> 该日期；其他 -> 昨天。
// 也接受 {"message": "..."} 形式的 JSON。
func ParseTrigger(payload []byte, now time.Time, loc *time.Location) (models.Date, bool) {
	msg := strings.TrimSpace(string(payload))
	if strings.HasPrefix(msg, "{") {
		var body struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg), &body); err == nil {
			msg = strings.TrimSpace(body.Message)
		}
	}

	today := models.DateOf(now, loc)
	switch msg {
	case TriggerYesterday:
		return today.AddDays(-1), true
	case TriggerToday:
		return today, true
	}
	if d, err := models.ParseDate(msg); err == nil {
		return d, true
	}
	return today.AddDays(-1), false
}

// TriggerConsumer 订阅触发主题，按到达顺序逐个处理日期
type TriggerConsumer struct {
	subscriber Subscriber
	topic      string
	qos        byte
	processor  DateProcessor
	location   *time.Location
	now        func() time.Time
	queue      chan models.Date
	logger     *zap.Logger
}

// NewTriggerConsumer 创建触发消费者
func NewTriggerConsumer(subscriber Subscriber, topic string, qos byte, processor DateProcessor, location *time.Location, logger *zap.Logger) *TriggerConsumer {
	return &TriggerConsumer{
		subscriber: subscriber,
		topic:      topic,
		qos:        qos,
		processor:  processor,
		location:   location,
		now:        time.Now,
		queue:      make(chan models.Date, 32),
		logger:     logger,
	}
}

// Start 订阅并处理消息，直到 ctx 取消
func (c *TriggerConsumer) Start(ctx context.Context) error {
	if c.topic == "" {
		return fmt.Errorf("trigger MQTT topic not configured")
	}
	if err := c.subscriber.Subscribe(c.topic, c.qos, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to trigger topic: %w", err)
	}
	c.logger.Info("MQTT trigger consumer started", zap.String("topic", c.topic))

	for {
		select {
		case <-ctx.Done():
			return nil
		case date := <-c.queue:
			res := c.processor.ProcessDate(ctx, date)
			if res.Err != nil {
				c.logger.Error("Triggered processing failed",
					zap.String("date", date.String()),
					zap.String("stage", string(res.Stage())),
					zap.Error(res.Err),
				)
				continue
			}
			c.logger.Info("Triggered processing finished", zap.String("date", date.String()))
		}
	}
}

// Stop 取消订阅
func (c *TriggerConsumer) Stop() error {
	if err := c.subscriber.Unsubscribe(c.topic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
		return err
	}
	c.logger.Info("MQTT trigger consumer stopped")
	return nil
}

func (c *TriggerConsumer) handleMessage(topic string, payload []byte) error {
	date, ok := ParseTrigger(payload, c.now(), c.location)
	if !ok {
		c.logger.Warn("Invalid trigger payload, falling back to yesterday",
			zap.String("topic", topic),
			zap.String("payload", string(payload)),
		)
	}
	select {
	case c.queue <- date:
		return nil
	default:
		return fmt.Errorf("trigger queue full, dropping %s", date)
	}
}
