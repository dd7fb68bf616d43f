package httpapi

import (
	"context"
	"fmt"
	"time"

	"github.com/amurata/GoogleFitNotionIntegration/internal/store"

	"github.com/cespare/xxhash/v2"
)

// DeliveryDedup Webhook 重复投递抑制
// 以请求体指纹为键，TTL 内同一请求体只处理一次
type DeliveryDedup struct {
	kv  store.KV
	ttl time.Duration
}

// NewDeliveryDedup 创建去重器，kv 为 nil 或 ttl <= 0 时不去重
func NewDeliveryDedup(kv store.KV, ttl time.Duration) *DeliveryDedup {
	return &DeliveryDedup{kv: kv, ttl: ttl}
}

func (d *DeliveryDedup) enabled() bool {
	return d != nil && d.kv != nil && d.ttl > 0
}

// Fingerprint 请求体指纹
func Fingerprint(body []byte) string {
	return fmt.Sprintf("webhook:delivery:%016x", xxhash.Sum64(body))
}

// Claim 占用该请求体，返回 false 表示 TTL 内已处理过
func (d *DeliveryDedup) Claim(ctx context.Context, body []byte) (bool, error) {
	if !d.enabled() {
		return true, nil
	}
	return d.kv.SetNX(ctx, Fingerprint(body), time.Now().UTC().Format(time.RFC3339), d.ttl)
}

// Release 处理失败时释放，允许重新投递
func (d *DeliveryDedup) Release(ctx context.Context, body []byte) error {
	if !d.enabled() {
		return nil
	}
	return d.kv.Del(ctx, Fingerprint(body))
}
