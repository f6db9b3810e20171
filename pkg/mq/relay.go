package mq

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/wyfcoding/optionsdesk/pkg/config"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
)

// Relay 定时投递与清理 outbox
type Relay struct {
	cron    *cron.Cron
	outbox  *Outbox
	cfg     config.OutboxConfig
	baseCtx context.Context
}

// NewRelay 注册投递与清理任务
// SkipIfStillRunning 保证同一时刻只有一个投递批次在跑
func NewRelay(baseCtx context.Context, outbox *Outbox, cfg config.OutboxConfig) (*Relay, error) {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	r := &Relay{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		outbox:  outbox,
		cfg:     cfg,
		baseCtx: baseCtx,
	}

	if _, err := r.cron.AddFunc(cfg.RelaySpec, r.relayOnce); err != nil {
		return nil, err
	}
	if _, err := r.cron.AddFunc(cfg.CleanupSpec, r.cleanupOnce); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Relay) relayOnce() {
	sent, err := r.outbox.ProcessOutboxMessages(r.baseCtx, r.cfg.BatchSize)
	if err != nil {
		logger.Error(r.baseCtx, "outbox relay failed", "error", err)
		return
	}
	if sent > 0 {
		logger.Debug(r.baseCtx, "outbox relayed", "count", sent)
	}
}

func (r *Relay) cleanupOnce() {
	before := time.Now().Add(-time.Duration(r.cfg.RetentionHours) * time.Hour)
	n, err := r.outbox.CleanupProcessedMessages(r.baseCtx, before)
	if err != nil {
		logger.Error(r.baseCtx, "outbox cleanup failed", "error", err)
		return
	}
	logger.Info(r.baseCtx, "outbox cleanup finished", "deleted", n)
}

// Start 启动调度
func (r *Relay) Start() {
	r.cron.Start()
	logger.Info(r.baseCtx, "outbox relay started", "relay_spec", r.cfg.RelaySpec, "cleanup_spec", r.cfg.CleanupSpec)
}

// Stop 停止调度并等待正在运行的任务结束
func (r *Relay) Stop() {
	<-r.cron.Stop().Done()
	logger.Info(context.Background(), "outbox relay stopped")
}
