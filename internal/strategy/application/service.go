package application

import (
	"context"

	"github.com/wyfcoding/optionsdesk/internal/strategy/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
)

// StrategyService 策略的增删改查，所有操作按调用方隔离
type StrategyService struct {
	tx    db.Transactor
	repo  domain.Repository
	links domain.LinkCleaner
}

// NewStrategyService 构造函数；links 为 nil 时删除不清理组合关联
func NewStrategyService(tx db.Transactor, repo domain.Repository, links domain.LinkCleaner) *StrategyService {
	return &StrategyService{tx: tx, repo: repo, links: links}
}

// List 调用方的全部策略，最近创建的在前
func (s *StrategyService) List(ctx context.Context, userID uint) ([]*domain.Strategy, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list strategies")
	}
	return items, nil
}

// Get 读取单个策略并校验归属
func (s *StrategyService) Get(ctx context.Context, userID, id uint) (*domain.Strategy, error) {
	st, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load strategy")
	}
	if st == nil {
		return nil, domain.ErrStrategyNotFound
	}
	if st.UserID != userID {
		return nil, domain.ErrStrategyForbidden
	}
	return st, nil
}

// Create 创建策略
func (s *StrategyService) Create(ctx context.Context, userID uint, cmd CreateStrategyCommand) (*domain.Strategy, error) {
	status, err := domain.ParseStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	st := &domain.Strategy{
		UserID:          userID,
		Name:            cmd.Name,
		Description:     cmd.Description,
		StrategyType:    cmd.StrategyType,
		UnderlyingAsset: cmd.UnderlyingAsset,
		StrikePrice:     nullable(cmd.StrikePrice),
		Premium:         nullable(cmd.Premium),
		ExpirationDate:  cmd.ExpirationDate,
		Quantity:        1,
		Status:          status,
	}
	if st.UnderlyingAsset == "" {
		st.UnderlyingAsset = domain.DefaultUnderlying
	}
	if cmd.Quantity != nil {
		st.Quantity = *cmd.Quantity
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, st); err != nil {
		return nil, apperr.Internal(err, "failed to create strategy")
	}
	logger.Info(ctx, "strategy created", "strategy_id", st.ID, "type", st.StrategyType)
	return st, nil
}

// Update 部分更新
func (s *StrategyService) Update(ctx context.Context, userID, id uint, cmd UpdateStrategyCommand) (*domain.Strategy, error) {
	st, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if cmd.Name != nil {
		st.Name = *cmd.Name
	}
	if cmd.Description != nil {
		st.Description = *cmd.Description
	}
	if cmd.StrategyType != nil {
		st.StrategyType = *cmd.StrategyType
	}
	if cmd.UnderlyingAsset != nil {
		st.UnderlyingAsset = *cmd.UnderlyingAsset
	}
	if cmd.StrikePrice != nil {
		st.StrikePrice = nullable(cmd.StrikePrice)
	}
	if cmd.Premium != nil {
		st.Premium = nullable(cmd.Premium)
	}
	if cmd.ExpirationDate != nil {
		st.ExpirationDate = cmd.ExpirationDate
	}
	if cmd.Quantity != nil {
		st.Quantity = *cmd.Quantity
	}
	if cmd.Status != nil {
		status, err := domain.ParseStatus(*cmd.Status)
		if err != nil {
			return nil, err
		}
		st.Status = status
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, st); err != nil {
		return nil, apperr.Internal(err, "failed to update strategy")
	}
	return st, nil
}

// Delete 删除策略并移除其组合关联
func (s *StrategyService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if s.links != nil {
			if err := s.links.RemoveStrategyLinks(txCtx, id); err != nil {
				return err
			}
		}
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return apperr.Internal(err, "failed to delete strategy")
	}
	logger.Info(ctx, "strategy deleted", "strategy_id", id)
	return nil
}
