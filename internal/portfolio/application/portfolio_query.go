package application

import (
	"context"

	"github.com/wyfcoding/optionsdesk/internal/portfolio/domain"
	strategy "github.com/wyfcoding/optionsdesk/internal/strategy/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
)

// PortfolioQueryService 组合查询
type PortfolioQueryService struct {
	repo       domain.Repository
	strategies domain.StrategyReader
}

// NewPortfolioQueryService 构造函数
func NewPortfolioQueryService(repo domain.Repository, strategies domain.StrategyReader) *PortfolioQueryService {
	return &PortfolioQueryService{repo: repo, strategies: strategies}
}

// List 调用方的全部组合
func (q *PortfolioQueryService) List(ctx context.Context, userID uint) ([]*domain.Portfolio, error) {
	items, err := q.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list portfolios")
	}
	return items, nil
}

// Get 读取单个组合并校验归属
func (q *PortfolioQueryService) Get(ctx context.Context, userID, id uint) (*domain.Portfolio, error) {
	return loadOwned(ctx, q.repo, userID, id)
}

// GetStrategies 组合下的策略
func (q *PortfolioQueryService) GetStrategies(ctx context.Context, userID, portfolioID uint) ([]*strategy.Strategy, error) {
	if _, err := loadOwned(ctx, q.repo, userID, portfolioID); err != nil {
		return nil, err
	}
	ids, err := q.repo.StrategyIDs(ctx, portfolioID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load portfolio strategies")
	}
	items, err := q.strategies.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load portfolio strategies")
	}
	return items, nil
}

func loadOwned(ctx context.Context, repo domain.Repository, userID, id uint) (*domain.Portfolio, error) {
	p, err := repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load portfolio")
	}
	if p == nil {
		return nil, domain.ErrPortfolioNotFound
	}
	if p.UserID != userID {
		return nil, domain.ErrPortfolioForbidden
	}
	return p, nil
}
