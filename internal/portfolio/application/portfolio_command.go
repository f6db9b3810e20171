package application

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionsdesk/internal/portfolio/domain"
	strategy "github.com/wyfcoding/optionsdesk/internal/strategy/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
)

// PortfolioCommandService 组合写操作
type PortfolioCommandService struct {
	tx         db.Transactor
	repo       domain.Repository
	strategies domain.StrategyReader
}

// NewPortfolioCommandService 构造函数
func NewPortfolioCommandService(tx db.Transactor, repo domain.Repository, strategies domain.StrategyReader) *PortfolioCommandService {
	return &PortfolioCommandService{tx: tx, repo: repo, strategies: strategies}
}

// Create 创建组合
func (s *PortfolioCommandService) Create(ctx context.Context, userID uint, cmd CreatePortfolioCommand) (*domain.Portfolio, error) {
	level, err := domain.ParseRiskLevel(cmd.RiskLevel)
	if err != nil {
		return nil, err
	}
	p := &domain.Portfolio{
		UserID:      userID,
		Name:        cmd.Name,
		Description: cmd.Description,
		TotalValue:  decimal.Zero,
		RiskLevel:   level,
	}
	if cmd.TotalValue != nil {
		p.TotalValue = *cmd.TotalValue
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, apperr.Internal(err, "failed to create portfolio")
	}
	logger.Info(ctx, "portfolio created", "portfolio_id", p.ID)
	return p, nil
}

// Update 部分更新
func (s *PortfolioCommandService) Update(ctx context.Context, userID, id uint, cmd UpdatePortfolioCommand) (*domain.Portfolio, error) {
	p, err := loadOwned(ctx, s.repo, userID, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		p.Name = *cmd.Name
	}
	if cmd.Description != nil {
		p.Description = *cmd.Description
	}
	if cmd.TotalValue != nil {
		p.TotalValue = *cmd.TotalValue
	}
	if cmd.RiskLevel != nil {
		level, err := domain.ParseRiskLevel(*cmd.RiskLevel)
		if err != nil {
			return nil, err
		}
		p.RiskLevel = level
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, apperr.Internal(err, "failed to update portfolio")
	}
	return p, nil
}

// Delete 删除组合及其策略关联
func (s *PortfolioCommandService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := loadOwned(ctx, s.repo, userID, id); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return apperr.Internal(err, "failed to delete portfolio")
	}
	logger.Info(ctx, "portfolio deleted", "portfolio_id", id)
	return nil
}

// AddStrategy 将策略加入组合，重复添加无副作用
func (s *PortfolioCommandService) AddStrategy(ctx context.Context, userID uint, cmd StrategyLinkCommand) error {
	if err := s.checkLink(ctx, userID, cmd); err != nil {
		return err
	}
	if err := s.repo.AddStrategy(ctx, cmd.PortfolioID, cmd.StrategyID); err != nil {
		return apperr.Internal(err, "failed to add strategy to portfolio")
	}
	return nil
}

// RemoveStrategy 从组合移除策略
func (s *PortfolioCommandService) RemoveStrategy(ctx context.Context, userID uint, cmd StrategyLinkCommand) error {
	if err := s.checkLink(ctx, userID, cmd); err != nil {
		return err
	}
	if err := s.repo.RemoveStrategy(ctx, cmd.PortfolioID, cmd.StrategyID); err != nil {
		return apperr.Internal(err, "failed to remove strategy from portfolio")
	}
	return nil
}

func (s *PortfolioCommandService) checkLink(ctx context.Context, userID uint, cmd StrategyLinkCommand) error {
	if _, err := loadOwned(ctx, s.repo, userID, cmd.PortfolioID); err != nil {
		return err
	}
	st, err := s.strategies.Get(ctx, cmd.StrategyID)
	if err != nil {
		return apperr.Internal(err, "failed to load strategy")
	}
	if st == nil {
		return strategy.ErrStrategyNotFound
	}
	if st.UserID != userID {
		return strategy.ErrStrategyForbidden
	}
	return nil
}
