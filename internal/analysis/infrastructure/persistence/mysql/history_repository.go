package mysql

import (
	"context"

	"github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	"github.com/wyfcoding/optionsdesk/pkg/contextx"
	"gorm.io/gorm"
)

type historyRepository struct {
	db *gorm.DB
}

// NewHistoryRepository 创建分析历史仓储
func NewHistoryRepository(db *gorm.DB) domain.HistoryRepository {
	return &historyRepository{db: db}
}

// Models 需要迁移的表
func Models() []any {
	return []any{&AnalysisHistoryModel{}}
}

func (r *historyRepository) Append(ctx context.Context, h *domain.AnalysisHistory) error {
	model := toHistoryModel(h)
	model.ID = 0
	if err := contextx.DB(ctx, r.db).Create(model).Error; err != nil {
		return err
	}
	h.ID = model.ID
	h.CreatedAt = model.CreatedAt
	return nil
}

func (r *historyRepository) ListRecent(ctx context.Context, userID uint, limit int) ([]*domain.AnalysisHistory, error) {
	var models []AnalysisHistoryModel
	if err := contextx.DB(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, err
	}

	out := make([]*domain.AnalysisHistory, 0, len(models))
	for i := range models {
		out = append(out, toHistory(&models[i]))
	}
	return out, nil
}
