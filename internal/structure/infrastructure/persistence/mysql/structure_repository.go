package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/optionsdesk/internal/structure/domain"
	"github.com/wyfcoding/optionsdesk/pkg/contextx"
	"gorm.io/gorm"
)

type structureRepository struct {
	db *gorm.DB
}

// NewStructureRepository 创建结构仓储
func NewStructureRepository(db *gorm.DB) domain.Repository {
	return &structureRepository{db: db}
}

// Models 需要迁移的表
func Models() []any {
	return []any{&domain.Structure{}, &domain.Leg{}, &domain.Share{}}
}

func orderedLegs(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func (r *structureRepository) Create(ctx context.Context, s *domain.Structure) error {
	return contextx.DB(ctx, r.db).Create(s).Error
}

func (r *structureRepository) Get(ctx context.Context, id uint) (*domain.Structure, error) {
	var s domain.Structure
	err := contextx.DB(ctx, r.db).Preload("Legs", orderedLegs).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *structureRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.Structure, error) {
	var out []*domain.Structure
	err := contextx.DB(ctx, r.db).
		Preload("Legs", orderedLegs).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&out).Error
	return out, err
}

func (r *structureRepository) Save(ctx context.Context, s *domain.Structure) error {
	tx := contextx.DB(ctx, r.db)
	if err := tx.Omit("Legs").Save(s).Error; err != nil {
		return err
	}
	for _, leg := range s.Legs {
		leg.StructureID = s.ID
		if err := tx.Save(leg).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *structureRepository) ReplaceLegs(ctx context.Context, s *domain.Structure) error {
	tx := contextx.DB(ctx, r.db)
	if err := tx.Unscoped().Where("structure_id = ?", s.ID).Delete(&domain.Leg{}).Error; err != nil {
		return err
	}
	for _, leg := range s.Legs {
		leg.ID = 0
		leg.StructureID = s.ID
	}
	if len(s.Legs) == 0 {
		return nil
	}
	return tx.Create(s.Legs).Error
}

func (r *structureRepository) Delete(ctx context.Context, id uint) error {
	tx := contextx.DB(ctx, r.db)
	if err := tx.Where("structure_id = ?", id).Delete(&domain.Leg{}).Error; err != nil {
		return err
	}
	if err := tx.Where("structure_id = ?", id).Delete(&domain.Share{}).Error; err != nil {
		return err
	}
	return tx.Delete(&domain.Structure{}, id).Error
}

func (r *structureRepository) SaveShare(ctx context.Context, share *domain.Share) error {
	tx := contextx.DB(ctx, r.db)
	var existing domain.Share
	err := tx.Where("structure_id = ? AND email = ?", share.StructureID, share.Email).First(&existing).Error
	switch {
	case err == nil:
		share.ID = existing.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return tx.Save(share).Error
}

func (r *structureRepository) ListShares(ctx context.Context, structureID uint) ([]*domain.Share, error) {
	var out []*domain.Share
	err := contextx.DB(ctx, r.db).
		Where("structure_id = ?", structureID).
		Order("shared_at DESC").
		Order("id DESC").
		Find(&out).Error
	return out, err
}
