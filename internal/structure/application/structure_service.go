package application

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	analysis "github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	"github.com/wyfcoding/optionsdesk/internal/structure/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/mq"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// StructureService 期权结构管理
type StructureService struct {
	tx        db.Transactor
	repo      domain.Repository
	publisher mq.EventPublisher
	now       func() time.Time
}

// NewStructureService 构造函数；publisher 可为 nil
func NewStructureService(tx db.Transactor, repo domain.Repository, publisher mq.EventPublisher) *StructureService {
	return &StructureService{tx: tx, repo: repo, publisher: publisher, now: time.Now}
}

// List 调用方的全部结构（含已平仓）
func (s *StructureService) List(ctx context.Context, userID uint) ([]*StructureView, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list structures")
	}
	out := make([]*StructureView, 0, len(items))
	for _, item := range items {
		out = append(out, newView(item))
	}
	return out, nil
}

// Get 读取单个结构并校验归属
func (s *StructureService) Get(ctx context.Context, userID, id uint) (*StructureView, error) {
	st, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return newView(st), nil
}

// Create 创建结构
func (s *StructureService) Create(ctx context.Context, userID uint, cmd CreateStructureCommand) (*StructureView, error) {
	legs, err := toLegs(cmd.Legs, s.now())
	if err != nil {
		return nil, err
	}
	st := &domain.Structure{
		UserID:     userID,
		Tag:        cmd.Tag,
		Multiplier: domain.DefaultMultiplier,
		Status:     domain.StatusActive,
		Legs:       legs,
	}
	if cmd.Multiplier != nil {
		st.Multiplier = *cmd.Multiplier
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, st); err != nil {
		return nil, apperr.Internal(err, "failed to create structure")
	}
	logger.Info(ctx, "structure created", "structure_id", st.ID, "legs", len(st.Legs))
	return newView(st), nil
}

// Update 修改标签、乘数或整体替换腿
func (s *StructureService) Update(ctx context.Context, userID, id uint, cmd UpdateStructureCommand) (*StructureView, error) {
	st, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if cmd.Tag != nil {
		st.Tag = *cmd.Tag
	}
	if cmd.Multiplier != nil {
		st.Multiplier = *cmd.Multiplier
	}
	replace := cmd.Legs != nil
	if replace {
		legs, err := toLegs(cmd.Legs, s.now())
		if err != nil {
			return nil, err
		}
		st.Legs = legs
	}
	if err := st.Validate(); err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if replace {
			if err := s.repo.ReplaceLegs(txCtx, st); err != nil {
				return err
			}
		}
		return s.repo.Save(txCtx, st)
	})
	if err != nil {
		return nil, apperr.Internal(err, "failed to update structure")
	}
	return newView(st), nil
}

// Delete 删除结构及其腿
func (s *StructureService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return apperr.Internal(err, "failed to delete structure")
	}
	return nil
}

// Close 以理论价平掉全部未平仓腿
func (s *StructureService) Close(ctx context.Context, userID, id uint, cmd CloseStructureCommand) (*StructureView, error) {
	st, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := st.Close(cmd.Spot, cmd.RiskFreeRate, now); err != nil {
		return nil, err
	}

	view := newView(st)
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Save(txCtx, st); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		return s.publisher.PublishInTx(txCtx, domain.StructureClosedEventType, strconv.FormatUint(uint64(st.ID), 10), domain.StructureClosedEvent{
			StructureID:  st.ID,
			UserID:       userID,
			Tag:          st.Tag,
			Spot:         cmd.Spot,
			RiskFreeRate: cmd.RiskFreeRate,
			RealizedPnL:  view.RealizedPnL,
			OccurredOn:   now,
		})
	})
	if err != nil {
		return nil, apperr.Internal(err, "failed to close structure")
	}
	logger.Info(ctx, "structure closed", "structure_id", st.ID, "realized_pnl", view.RealizedPnL.String())
	return view, nil
}

// Reopen 重新打开已平仓结构
func (s *StructureService) Reopen(ctx context.Context, userID, id uint) (*StructureView, error) {
	st, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := st.Reopen(); err != nil {
		return nil, err
	}
	if err := s.tx.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.Save(txCtx, st)
	}); err != nil {
		return nil, apperr.Internal(err, "failed to reopen structure")
	}
	return newView(st), nil
}

// Payoff 未平仓腿的到期盈亏曲线
func (s *StructureService) Payoff(ctx context.Context, userID, id uint, sweep analysis.PriceRange) (*analysis.PayoffResult, error) {
	st, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return st.Payoff(sweep)
}

// Share 分享结构给管理员并登记通知事件
func (s *StructureService) Share(ctx context.Context, userID, id uint, cmd ShareStructureCommand) (*domain.Share, error) {
	if err := validate.Struct(cmd); err != nil {
		return nil, apperr.Invalid("adminEmail must be a valid email address")
	}
	st, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	share := domain.NewShare(st, cmd.AdminEmail, s.now())
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.SaveShare(txCtx, share); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		return s.publisher.PublishInTx(txCtx, domain.StructureSharedEventType, strconv.FormatUint(uint64(st.ID), 10), domain.StructureSharedEvent{
			StructureID: st.ID,
			UserID:      userID,
			Tag:         st.Tag,
			AdminEmail:  share.Email,
			OccurredOn:  share.SharedAt,
		})
	})
	if err != nil {
		return nil, apperr.Internal(err, "failed to share structure")
	}
	logger.Info(ctx, "structure shared", "structure_id", st.ID, "share_id", share.ID)
	return share, nil
}

// Shares 结构的分享记录，最近的在前
func (s *StructureService) Shares(ctx context.Context, userID, id uint) ([]*domain.Share, error) {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	shares, err := s.repo.ListShares(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list structure shares")
	}
	return shares, nil
}

func (s *StructureService) owned(ctx context.Context, userID, id uint) (*domain.Structure, error) {
	st, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load structure")
	}
	if st == nil {
		return nil, domain.ErrStructureNotFound
	}
	if st.UserID != userID {
		return nil, domain.ErrStructureForbidden
	}
	return st, nil
}
