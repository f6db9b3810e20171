package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/optionsdesk/internal/strategy/domain"
	"github.com/wyfcoding/optionsdesk/pkg/contextx"
	"gorm.io/gorm"
)

type strategyRepository struct {
	db *gorm.DB
}

// NewStrategyRepository 创建策略仓储
func NewStrategyRepository(db *gorm.DB) domain.Repository {
	return &strategyRepository{db: db}
}

// Models 需要迁移的表
func Models() []any {
	return []any{&domain.Strategy{}}
}

func (r *strategyRepository) Save(ctx context.Context, s *domain.Strategy) error {
	return contextx.DB(ctx, r.db).Save(s).Error
}

func (r *strategyRepository) Get(ctx context.Context, id uint) (*domain.Strategy, error) {
	var s domain.Strategy
	err := contextx.DB(ctx, r.db).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *strategyRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Strategy, error) {
	var out []*domain.Strategy
	err := contextx.DB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (r *strategyRepository) ListByIDs(ctx context.Context, ids []uint) ([]*domain.Strategy, error) {
	out := make([]*domain.Strategy, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	err := contextx.DB(ctx, r.db).Where("id IN ?", ids).Order("id ASC").Find(&out).Error
	return out, err
}

func (r *strategyRepository) Delete(ctx context.Context, id uint) error {
	return contextx.DB(ctx, r.db).Delete(&domain.Strategy{}, id).Error
}
