package application

import (
	"context"
	"fmt"

	"github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
)

// AnalysisQueryService 分析历史查询
type AnalysisQueryService struct {
	history      domain.HistoryRepository
	defaultLimit int
}

// NewAnalysisQueryService 构造函数
func NewAnalysisQueryService(history domain.HistoryRepository, defaultLimit int) *AnalysisQueryService {
	if defaultLimit <= 0 || defaultLimit > MaxHistoryLimit {
		defaultLimit = 10
	}
	return &AnalysisQueryService{history: history, defaultLimit: defaultLimit}
}

// GetHistory 按时间倒序返回调用方的定价历史
func (q *AnalysisQueryService) GetHistory(ctx context.Context, query HistoryQuery) ([]*domain.AnalysisHistory, error) {
	if query.UserID == 0 {
		return nil, apperr.Unauthenticated("missing caller identity")
	}

	limit := q.defaultLimit
	if query.Limit != nil {
		limit = *query.Limit
		if limit < 1 || limit > MaxHistoryLimit {
			return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidHistoryLimit, limit)
		}
	}

	items, err := q.history.ListRecent(ctx, query.UserID, limit)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load analysis history")
	}
	return items, nil
}
