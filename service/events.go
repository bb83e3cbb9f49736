package service

import (
	"context"
	"sync"
	"time"

	"github.com/BerniceZTT/telecaller_crm/metrics"
	"github.com/BerniceZTT/telecaller_crm/models"
	"github.com/BerniceZTT/telecaller_crm/utils"
)

// EventSink 线索事件接收方
type EventSink interface {
	Name() string
	Publish(ctx context.Context, event models.LeadEvent) error
}

// EventBus 将线索事件分发给所有接收方，接收方失败只记录日志
type EventBus struct {
	mu      sync.RWMutex
	sinks   []EventSink
	timeout time.Duration
}

// NewEventBus 创建事件总线
func NewEventBus(sinks ...EventSink) *EventBus {
	return &EventBus{sinks: sinks, timeout: 5 * time.Second}
}

// Add 注册接收方
func (b *EventBus) Add(sink EventSink) {
	if b == nil || sink == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sink)
}

// Publish 分发事件
func (b *EventBus) Publish(ctx context.Context, event models.LeadEvent) {
	if b == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now()
	}

	b.mu.RLock()
	sinks := append([]EventSink(nil), b.sinks...)
	b.mu.RUnlock()

	// 请求结束后仍需送达
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), b.timeout)
	defer cancel()

	for _, sink := range sinks {
		if err := sink.Publish(ctx, event); err != nil {
			metrics.RecordSinkError(sink.Name())
			utils.Logger.Error().
				Err(err).
				Str("sink", sink.Name()).
				Str("event", string(event.Type)).
				Str("leadId", event.LeadID).
				Msg("线索事件分发失败")
		}
	}
}

// EventSinkFunc 函数形式的接收方
type EventSinkFunc struct {
	SinkName string
	Fn       func(ctx context.Context, event models.LeadEvent) error
}

// Name 接收方名称
func (f EventSinkFunc) Name() string {
	return f.SinkName
}

// Publish 调用函数
func (f EventSinkFunc) Publish(ctx context.Context, event models.LeadEvent) error {
	return f.Fn(ctx, event)
}
