package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/optionsdesk/internal/file/domain"
	"github.com/wyfcoding/optionsdesk/pkg/contextx"
	"gorm.io/gorm"
)

type fileRepository struct {
	db *gorm.DB
}

// NewFileRepository 创建文件元数据仓储
func NewFileRepository(db *gorm.DB) domain.Repository {
	return &fileRepository{db: db}
}

// Models 需要迁移的表
func Models() []any {
	return []any{&domain.UploadedFile{}}
}

func (r *fileRepository) Save(ctx context.Context, f *domain.UploadedFile) error {
	return contextx.DB(ctx, r.db).Save(f).Error
}

func (r *fileRepository) Get(ctx context.Context, id uint) (*domain.UploadedFile, error) {
	var f domain.UploadedFile
	err := contextx.DB(ctx, r.db).First(&f, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *fileRepository) ListByUser(ctx context.Context, userID uint) ([]*domain.UploadedFile, error) {
	var out []*domain.UploadedFile
	err := contextx.DB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, err
}

func (r *fileRepository) Delete(ctx context.Context, id uint) error {
	return contextx.DB(ctx, r.db).Delete(&domain.UploadedFile{}, id).Error
}
