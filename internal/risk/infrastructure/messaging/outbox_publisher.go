package messaging

import (
	"context"
	"strconv"

	"github.com/wyfcoding/optionsdesk/internal/risk/domain"
	"github.com/wyfcoding/optionsdesk/pkg/mq"
)

// OutboxEventPublisher 实现 domain.EventPublisher，使用 Outbox 模式
type OutboxEventPublisher struct {
	outbox mq.EventPublisher
}

// NewOutboxEventPublisher 创建新的 OutboxEventPublisher 实例
func NewOutboxEventPublisher(outbox mq.EventPublisher) *OutboxEventPublisher {
	return &OutboxEventPublisher{outbox: outbox}
}

// PublishRiskAlertRaised 发布严重告警事件，聚合 ID 为告警 ID
func (p *OutboxEventPublisher) PublishRiskAlertRaised(ctx context.Context, event domain.RiskAlertRaisedEvent) error {
	return p.outbox.PublishInTx(ctx, domain.RiskAlertRaisedEventType, strconv.FormatUint(uint64(event.AlertID), 10), event)
}

// NewAlertPublisher 没有中继投递时返回 nil，告警不会标记为已通知
func NewAlertPublisher(outbox mq.EventPublisher, relayEnabled bool) domain.EventPublisher {
	if !relayEnabled || outbox == nil {
		return nil
	}
	return NewOutboxEventPublisher(outbox)
}
