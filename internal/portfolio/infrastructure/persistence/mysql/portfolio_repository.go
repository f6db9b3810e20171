package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/optionsdesk/internal/portfolio/domain"
	"github.com/wyfcoding/optionsdesk/pkg/contextx"
	"gorm.io/gorm"
)

type portfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository 创建组合仓储
func NewPortfolioRepository(db *gorm.DB) domain.Repository {
	return &portfolioRepository{db: db}
}

// Models 需要迁移的表
func Models() []any {
	return []any{&domain.Portfolio{}, &domain.PortfolioStrategy{}}
}

func (r *portfolioRepository) Save(ctx context.Context, p *domain.Portfolio) error {
	return contextx.DB(ctx, r.db).Save(p).Error
}

func (r *portfolioRepository) Get(ctx context.Context, id uint) (*domain.Portfolio, error) {
	var p domain.Portfolio
	err := contextx.DB(ctx, r.db).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *portfolioRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Portfolio, error) {
	var out []*domain.Portfolio
	err := contextx.DB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (r *portfolioRepository) Delete(ctx context.Context, id uint) error {
	tx := contextx.DB(ctx, r.db)
	if err := tx.Where("portfolio_id = ?", id).Delete(&domain.PortfolioStrategy{}).Error; err != nil {
		return err
	}
	return tx.Delete(&domain.Portfolio{}, id).Error
}

func (r *portfolioRepository) AddStrategy(ctx context.Context, portfolioID, strategyID uint) error {
	link := domain.PortfolioStrategy{PortfolioID: portfolioID, StrategyID: strategyID}
	return contextx.DB(ctx, r.db).
		Where(&domain.PortfolioStrategy{PortfolioID: portfolioID, StrategyID: strategyID}).
		FirstOrCreate(&link).Error
}

func (r *portfolioRepository) RemoveStrategy(ctx context.Context, portfolioID, strategyID uint) error {
	return contextx.DB(ctx, r.db).
		Where("portfolio_id = ? AND strategy_id = ?", portfolioID, strategyID).
		Delete(&domain.PortfolioStrategy{}).Error
}

func (r *portfolioRepository) StrategyIDs(ctx context.Context, portfolioID uint) ([]uint, error) {
	var ids []uint
	err := contextx.DB(ctx, r.db).Model(&domain.PortfolioStrategy{}).
		Where("portfolio_id = ?", portfolioID).
		Order("strategy_id ASC").
		Pluck("strategy_id", &ids).Error
	return ids, err
}

func (r *portfolioRepository) RemoveStrategyLinks(ctx context.Context, strategyID uint) error {
	return contextx.DB(ctx, r.db).Where("strategy_id = ?", strategyID).Delete(&domain.PortfolioStrategy{}).Error
}
