package application

import (
	"context"
	"time"

	portfolio "github.com/wyfcoding/optionsdesk/internal/portfolio/domain"
	"github.com/wyfcoding/optionsdesk/internal/risk/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/metrics"
)

// AlertService 风险告警
// critical 告警在同一事务中写入 Outbox，由 relay 投递
type AlertService struct {
	tx         db.Transactor
	repo       domain.Repository
	portfolios domain.PortfolioReader
	publisher  domain.EventPublisher
	metrics    *metrics.Metrics
}

// NewAlertService 构造函数；publisher 与 m 可为 nil
func NewAlertService(tx db.Transactor, repo domain.Repository, portfolios domain.PortfolioReader, publisher domain.EventPublisher, m *metrics.Metrics) *AlertService {
	return &AlertService{
		tx:         tx,
		repo:       repo,
		portfolios: portfolios,
		publisher:  publisher,
		metrics:    m,
	}
}

// List 调用方的告警，最新的在前
func (s *AlertService) List(ctx context.Context, userID uint) ([]*domain.RiskAlert, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list alerts")
	}
	return items, nil
}

// Create 创建告警
func (s *AlertService) Create(ctx context.Context, userID uint, cmd CreateAlertCommand) (*domain.RiskAlert, error) {
	severity, err := domain.ParseSeverity(cmd.Severity)
	if err != nil {
		return nil, err
	}
	alert := &domain.RiskAlert{
		UserID:      userID,
		PortfolioID: nonZero(cmd.PortfolioID),
		StrategyID:  nonZero(cmd.StrategyID),
		AlertType:   cmd.AlertType,
		Severity:    severity,
		Message:     cmd.Message,
	}
	if err := alert.Validate(); err != nil {
		return nil, err
	}
	if err := s.raise(ctx, alert); err != nil {
		return nil, err
	}
	return alert, nil
}

// Get 读取单条告警
func (s *AlertService) Get(ctx context.Context, userID, id uint) (*domain.RiskAlert, error) {
	return s.owned(ctx, userID, id)
}

// Update 修改告警内容；级别调整不会补发事件
func (s *AlertService) Update(ctx context.Context, userID, id uint, cmd UpdateAlertCommand) (*domain.RiskAlert, error) {
	alert, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if cmd.AlertType != nil {
		alert.AlertType = *cmd.AlertType
	}
	if cmd.Severity != nil {
		severity, err := domain.ParseSeverity(*cmd.Severity)
		if err != nil {
			return nil, err
		}
		alert.Severity = severity
	}
	if cmd.Message != nil {
		alert.Message = *cmd.Message
	}
	if cmd.IsRead != nil {
		alert.IsRead = *cmd.IsRead
	}
	if err := alert.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, alert); err != nil {
		return nil, apperr.Internal(err, "failed to update alert")
	}
	return alert, nil
}

// MarkAsRead 标记已读
func (s *AlertService) MarkAsRead(ctx context.Context, userID, id uint) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return apperr.Internal(err, "failed to mark alert as read")
	}
	return nil
}

// Delete 删除告警
func (s *AlertService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal(err, "failed to delete alert")
	}
	return nil
}

// CheckRiskThresholds 以组合 totalValue 为基准评估亏损，超过阈值时生成告警
func (s *AlertService) CheckRiskThresholds(ctx context.Context, userID uint, cmd CheckThresholdCommand) (*domain.ThresholdCheck, error) {
	p, err := s.portfolios.Get(ctx, cmd.PortfolioID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load portfolio")
	}
	if p == nil {
		return nil, portfolio.ErrPortfolioNotFound
	}
	if p.UserID != userID {
		return nil, portfolio.ErrPortfolioForbidden
	}

	initial := p.TotalValue.InexactFloat64()
	check, err := domain.EvaluateThreshold(initial, cmd.CurrentValue, cmd.RiskThreshold)
	if err != nil {
		return nil, err
	}
	if !check.ThresholdExceeded {
		return &check, nil
	}

	portfolioID := p.ID
	alert := &domain.RiskAlert{
		UserID:      userID,
		PortfolioID: &portfolioID,
		AlertType:   domain.AlertTypeRiskThreshold,
		Severity:    *check.Severity,
		Message:     domain.ThresholdMessage(p.Name, check.LossPercentage, cmd.CurrentValue, initial),
	}
	if err := s.raise(ctx, alert); err != nil {
		return nil, err
	}
	logger.Warn(ctx, "portfolio loss threshold exceeded",
		"portfolio_id", p.ID,
		"loss_pct", check.LossPercentage,
		"severity", *check.Severity,
	)
	return &check, nil
}

// raise 持久化告警；critical 且配置了发布器时同事务登记事件
func (s *AlertService) raise(ctx context.Context, alert *domain.RiskAlert) error {
	notify := alert.Severity == domain.SeverityCritical && s.publisher != nil
	alert.NotifiedOwner = notify

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Save(txCtx, alert); err != nil {
			return err
		}
		if !notify {
			return nil
		}
		return s.publisher.PublishRiskAlertRaised(txCtx, domain.RiskAlertRaisedEvent{
			AlertID:     alert.ID,
			UserID:      alert.UserID,
			PortfolioID: alert.PortfolioID,
			StrategyID:  alert.StrategyID,
			AlertType:   alert.AlertType,
			Severity:    alert.Severity,
			Message:     alert.Message,
			OccurredOn:  time.Now(),
		})
	})
	if err != nil {
		return apperr.Internal(err, "failed to save alert")
	}
	s.metrics.RecordAlert(string(alert.Severity))
	return nil
}

func (s *AlertService) owned(ctx context.Context, userID, id uint) (*domain.RiskAlert, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load alert")
	}
	if a == nil {
		return nil, domain.ErrAlertNotFound
	}
	if a.UserID != userID {
		return nil, domain.ErrAlertForbidden
	}
	return a, nil
}

func nonZero(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}
