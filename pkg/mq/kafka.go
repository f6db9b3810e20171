// Package mq 提供 Kafka 生产者与事务性 outbox：业务事务内落库，定时任务投递到 Kafka
package mq

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/optionsdesk/pkg/config"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
)

// KafkaProducer Kafka 生产者
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer 创建 Kafka 生产者
func NewProducer(cfg config.KafkaConfig) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		Compression:            kafka.Gzip,
		RequiredAcks:           kafka.RequireAll, // 等待所有副本确认
		MaxAttempts:            cfg.MaxRetries,
		WriteBackoffMin:        time.Duration(cfg.RetryBackoff) * time.Millisecond,
		WriteBackoffMax:        time.Duration(cfg.RetryBackoff*10) * time.Millisecond,
	}

	logger.Info(context.Background(), "Kafka producer created", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return &KafkaProducer{writer: writer, topic: cfg.Topic}
}

// Publish 发送一条事件；同一聚合的事件使用相同 key，保证分区内有序
func (kp *KafkaProducer) Publish(ctx context.Context, key, eventType string, payload []byte) error {
	msg := kafka.Message{
		Key:   []byte(key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}

	if err := kp.writer.WriteMessages(ctx, msg); err != nil {
		logger.Error(ctx, "Failed to send Kafka message",
			"topic", kp.topic,
			"key", key,
			"event_type", eventType,
			"error", err,
		)
		return err
	}

	logger.Debug(ctx, "Kafka message sent", "topic", kp.topic, "key", key, "event_type", eventType)
	return nil
}

// Close 关闭生产者
func (kp *KafkaProducer) Close() error {
	return kp.writer.Close()
}
