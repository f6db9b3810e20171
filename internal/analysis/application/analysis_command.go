package application

import (
	"context"
	"strconv"
	"time"

	"github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/metrics"
	"github.com/wyfcoding/optionsdesk/pkg/mq"
)

// AnalysisCommandService 处理定价与盈亏分析
// 定价结果写入历史并通过 Outbox 发布领域事件
type AnalysisCommandService struct {
	tx        db.Transactor
	history   domain.HistoryRepository
	cache     domain.ResultCache
	publisher mq.EventPublisher
	metrics   *metrics.Metrics
}

// NewAnalysisCommandService 创建 AnalysisCommandService；cache、publisher、m 可为 nil
func NewAnalysisCommandService(tx db.Transactor, history domain.HistoryRepository, cache domain.ResultCache, publisher mq.EventPublisher, m *metrics.Metrics) *AnalysisCommandService {
	return &AnalysisCommandService{
		tx:        tx,
		history:   history,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
	}
}

// CalculateBlackScholes 期权定价，并为调用方追加一条历史记录
func (s *AnalysisCommandService) CalculateBlackScholes(ctx context.Context, userID uint, cmd CalculateBlackScholesCommand) (*domain.BlackScholesResult, error) {
	if userID == 0 {
		return nil, apperr.Unauthenticated("missing caller identity")
	}
	optionType, err := domain.ParseOptionType(cmd.OptionType)
	if err != nil {
		return nil, err
	}
	in := cmd.input()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	result := s.lookupCache(ctx, optionType, in)
	cached := result != nil
	if !cached {
		result, err = domain.CalculateBlackScholes(optionType, in)
		if err != nil {
			return nil, err
		}
	}

	record := domain.NewPricingHistory(userID, optionType, in, result)
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.history.Append(txCtx, record); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		event := domain.OptionPricedEvent{
			UserID:       userID,
			HistoryID:    record.ID,
			OptionType:   optionType,
			SpotPrice:    in.S,
			StrikePrice:  in.K,
			TimeToExpiry: in.T,
			RiskFreeRate: in.R,
			Volatility:   in.V,
			OptionPrice:  result.Price,
			Delta:        result.Delta,
			Gamma:        result.Gamma,
			Vega:         result.Vega,
			Theta:        result.Theta,
			Rho:          result.Rho,
			OccurredOn:   time.Now(),
		}
		return s.publisher.PublishInTx(txCtx, domain.OptionPricedEventType, strconv.FormatUint(uint64(userID), 10), event)
	})
	if err != nil {
		logger.Error(ctx, "failed to record pricing history", "error", err)
		return nil, apperr.Internal(err, "failed to record pricing history")
	}

	if !cached && s.cache != nil {
		if err := s.cache.Set(ctx, optionType, in, result); err != nil {
			logger.Warn(ctx, "pricing cache write failed", "error", err)
		}
	}
	s.metrics.RecordPricing(string(optionType))
	return result, nil
}

func (s *AnalysisCommandService) lookupCache(ctx context.Context, optionType domain.OptionType, in domain.BlackScholesInput) *domain.BlackScholesResult {
	if s.cache == nil {
		return nil
	}
	res, err := s.cache.Get(ctx, optionType, in)
	if err != nil {
		logger.Warn(ctx, "pricing cache read failed", "error", err)
		return nil
	}
	s.metrics.RecordCacheLookup(res != nil)
	return res
}

// CalculatePayoff 到期盈亏分析，纯计算无副作用
func (s *AnalysisCommandService) CalculatePayoff(ctx context.Context, cmd CalculatePayoffCommand) (*domain.PayoffResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		res *domain.PayoffResult
		err error
	)
	if len(cmd.Legs) > 0 {
		res, err = domain.CalculateLegsPayoff(cmd.Legs, cmd.SpotPriceRange)
	} else {
		res, err = domain.CalculatePayoff(domain.PayoffRequest{
			StrategyType:   cmd.StrategyType,
			StrikePrice:    cmd.StrikePrice,
			Premium:        cmd.Premium,
			Quantity:       cmd.Quantity,
			SpotPriceRange: cmd.SpotPriceRange,
		})
	}
	if err != nil {
		return nil, err
	}

	s.metrics.RecordPayoff()
	return res, nil
}
