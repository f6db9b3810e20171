package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wyfcoding/optionsdesk/pkg/contextx"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"gorm.io/gorm"
)

// Outbox 消息状态
const (
	StatusPending = "pending"
	StatusSent    = "sent"
	StatusFailed  = "failed"
)

// OutboxMessage outbox 表记录
type OutboxMessage struct {
	ID          string    `gorm:"type:varchar(36);primaryKey"`
	AggregateID string    `gorm:"type:varchar(64);index"`
	EventType   string    `gorm:"type:varchar(100);index"`
	Payload     string    `gorm:"type:text"`
	Status      string    `gorm:"type:varchar(20);index;default:'pending'"`
	Attempts    int       `gorm:"default:0"`
	LastError   string    `gorm:"type:varchar(500)"`
	CreatedAt   time.Time `gorm:"index"`
	UpdatedAt   time.Time
}

// TableName 指定表名
func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

// Sender 将 outbox 消息投递到消息系统
type Sender interface {
	Publish(ctx context.Context, key, eventType string, payload []byte) error
}

// Outbox 负责写入与投递 outbox 消息
type Outbox struct {
	db          *gorm.DB
	sender      Sender
	maxAttempts int
	onResult    func(result string)
}

// OutboxOption 可选配置
type OutboxOption func(*Outbox)

// WithSender 设置投递端，未设置时 ProcessOutboxMessages 不做任何事
func WithSender(s Sender) OutboxOption {
	return func(o *Outbox) { o.sender = s }
}

// WithMaxAttempts 设置单条消息最大投递次数
func WithMaxAttempts(n int) OutboxOption {
	return func(o *Outbox) {
		if n > 0 {
			o.maxAttempts = n
		}
	}
}

// WithResultHook 每条消息投递后回调结果（sent / retry / failed），用于指标
func WithResultHook(fn func(result string)) OutboxOption {
	return func(o *Outbox) { o.onResult = fn }
}

// NewOutbox 创建 Outbox
func NewOutbox(db *gorm.DB, opts ...OutboxOption) *Outbox {
	o := &Outbox{db: db, maxAttempts: 5}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PublishInTx 写入一条 outbox 消息；ctx 携带事务时与业务数据同事务提交
func (o *Outbox) PublishInTx(ctx context.Context, eventType string, aggregateID string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", eventType, err)
	}

	now := time.Now()
	msg := OutboxMessage{
		ID:          uuid.NewString(),
		AggregateID: aggregateID,
		EventType:   eventType,
		Payload:     string(payload),
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return contextx.DB(ctx, o.db).Create(&msg).Error
}

// ProcessOutboxMessages 按创建顺序投递一批待发送消息，返回成功条数
func (o *Outbox) ProcessOutboxMessages(ctx context.Context, batchSize int) (int, error) {
	if o.sender == nil {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	var messages []OutboxMessage
	if err := o.db.WithContext(ctx).
		Where("status = ?", StatusPending).
		Order("created_at ASC").
		Limit(batchSize).
		Find(&messages).Error; err != nil {
		return 0, err
	}

	sent := 0
	for i := range messages {
		msg := &messages[i]
		err := o.sender.Publish(ctx, msg.AggregateID, msg.EventType, []byte(msg.Payload))
		if err == nil {
			if err := o.db.WithContext(ctx).Model(msg).Updates(map[string]any{
				"status":     StatusSent,
				"attempts":   msg.Attempts + 1,
				"updated_at": time.Now(),
			}).Error; err != nil {
				return sent, err
			}
			sent++
			o.report(StatusSent)
			continue
		}

		attempts := msg.Attempts + 1
		status := StatusPending
		result := "retry"
		if attempts >= o.maxAttempts {
			status = StatusFailed
			result = StatusFailed
			logger.Error(ctx, "outbox message exceeded max attempts", "id", msg.ID, "event_type", msg.EventType, "error", err)
		}
		if uerr := o.db.WithContext(ctx).Model(msg).Updates(map[string]any{
			"status":     status,
			"attempts":   attempts,
			"last_error": truncate(err.Error(), 500),
			"updated_at": time.Now(),
		}).Error; uerr != nil {
			return sent, uerr
		}
		o.report(result)
	}

	return sent, nil
}

// CleanupProcessedMessages 清理指定时间之前已投递的消息
func (o *Outbox) CleanupProcessedMessages(ctx context.Context, before time.Time) (int64, error) {
	res := o.db.WithContext(ctx).Where("status = ? AND updated_at < ?", StatusSent, before).Delete(&OutboxMessage{})
	return res.RowsAffected, res.Error
}

func (o *Outbox) report(result string) {
	if o.onResult != nil {
		o.onResult(result)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// EventPublisher 领域事件发布接口，由 Outbox 实现
type EventPublisher interface {
	PublishInTx(ctx context.Context, eventType string, aggregateID string, event any) error
}
