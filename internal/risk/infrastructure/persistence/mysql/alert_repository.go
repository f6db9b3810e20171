package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/optionsdesk/internal/risk/domain"
	"github.com/wyfcoding/optionsdesk/pkg/contextx"
	"gorm.io/gorm"
)

type alertRepository struct {
	db *gorm.DB
}

// NewAlertRepository 创建告警仓储
func NewAlertRepository(db *gorm.DB) domain.Repository {
	return &alertRepository{db: db}
}

// Models 需要迁移的表
func Models() []any {
	return []any{&domain.RiskAlert{}}
}

func (r *alertRepository) Save(ctx context.Context, a *domain.RiskAlert) error {
	return contextx.DB(ctx, r.db).Save(a).Error
}

func (r *alertRepository) Get(ctx context.Context, id uint) (*domain.RiskAlert, error) {
	var a domain.RiskAlert
	err := contextx.DB(ctx, r.db).First(&a, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *alertRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.RiskAlert, error) {
	var out []*domain.RiskAlert
	err := contextx.DB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (r *alertRepository) MarkRead(ctx context.Context, id uint) error {
	return contextx.DB(ctx, r.db).Model(&domain.RiskAlert{}).Where("id = ?", id).Update("is_read", true).Error
}

func (r *alertRepository) Delete(ctx context.Context, id uint) error {
	return contextx.DB(ctx, r.db).Delete(&domain.RiskAlert{}, id).Error
}
