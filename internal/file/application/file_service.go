package application

import (
	"context"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/wyfcoding/optionsdesk/internal/file/domain"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"github.com/wyfcoding/optionsdesk/pkg/logger"
	"github.com/wyfcoding/optionsdesk/pkg/metrics"
	"github.com/wyfcoding/optionsdesk/pkg/mq"
	"github.com/wyfcoding/optionsdesk/pkg/utils"
)

const defaultMimeType = "application/octet-stream"

// FileService 文件上传与元数据管理
type FileService struct {
	tx        db.Transactor
	repo      domain.Repository
	store     domain.ObjectStore
	publisher mq.EventPublisher
	metrics   *metrics.Metrics

	now    func() time.Time
	suffix func() string
}

// NewFileService 构造函数；publisher 与 m 可为 nil
func NewFileService(tx db.Transactor, repo domain.Repository, store domain.ObjectStore, publisher mq.EventPublisher, m *metrics.Metrics) *FileService {
	return &FileService{
		tx:        tx,
		repo:      repo,
		store:     store,
		publisher: publisher,
		metrics:   m,
		now:       time.Now,
		suffix:    func() string { return utils.RandString(domain.KeySuffixLength) },
	}
}

// Upload 解码 base64 内容，写入对象存储并保存元数据
// 删除只移除元数据，对象保留在存储中
func (s *FileService) Upload(ctx context.Context, userID uint, cmd UploadFileCommand) (*UploadResult, error) {
	if err := domain.ValidateFileName(cmd.FileName); err != nil {
		return nil, err
	}
	fileType, err := domain.ParseFileType(cmd.FileType)
	if err != nil {
		return nil, err
	}
	data, err := decodeBase64(cmd.FileData)
	if err != nil {
		return nil, domain.ErrInvalidFileData
	}
	mimeType := strings.TrimSpace(cmd.MimeType)
	if mimeType == "" {
		mimeType = defaultMimeType
	}

	key := domain.BuildKey(userID, cmd.FileName, s.now(), s.suffix())
	url, err := s.store.Put(ctx, key, data, mimeType)
	if err != nil {
		logger.Error(ctx, "failed to store file", "key", key, "error", err)
		return nil, apperr.Internal(err, "failed to store file")
	}

	file := &domain.UploadedFile{
		UserID:      userID,
		StrategyID:  nonZero(cmd.StrategyID),
		PortfolioID: nonZero(cmd.PortfolioID),
		FileName:    cmd.FileName,
		FileKey:     key,
		FileURL:     url,
		MimeType:    mimeType,
		FileSize:    int64(len(data)),
		FileType:    fileType,
	}
	err = s.tx.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Save(txCtx, file); err != nil {
			return err
		}
		if s.publisher == nil {
			return nil
		}
		return s.publisher.PublishInTx(txCtx, domain.FileUploadedEventType, strconv.FormatUint(uint64(file.ID), 10), domain.FileUploadedEvent{
			FileID:     file.ID,
			UserID:     userID,
			FileKey:    key,
			FileURL:    url,
			MimeType:   mimeType,
			FileSize:   file.FileSize,
			FileType:   fileType,
			OccurredOn: s.now(),
		})
	})
	if err != nil {
		return nil, apperr.Internal(err, "failed to save file metadata")
	}

	s.metrics.RecordUpload(file.FileSize)
	logger.Info(ctx, "file uploaded", "file_id", file.ID, "key", key, "size", file.FileSize)
	return &UploadResult{URL: url, FileKey: key, File: file}, nil
}

// List 调用方的全部文件
func (s *FileService) List(ctx context.Context, userID uint) ([]*domain.UploadedFile, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err, "failed to list files")
	}
	return items, nil
}

// Get 读取文件元数据并校验归属
func (s *FileService) Get(ctx context.Context, userID, id uint) (*domain.UploadedFile, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperr.Internal(err, "failed to load file")
	}
	if f == nil {
		return nil, domain.ErrFileNotFound
	}
	if f.UserID != userID {
		return nil, domain.ErrFileForbidden
	}
	return f, nil
}

// Update 修改文件名、用途或关联关系，存储 key 与内容不变
func (s *FileService) Update(ctx context.Context, userID, id uint, cmd UpdateFileCommand) (*domain.UploadedFile, error) {
	f, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if cmd.FileName != nil {
		if err := domain.ValidateFileName(*cmd.FileName); err != nil {
			return nil, err
		}
		f.FileName = *cmd.FileName
	}
	if cmd.FileType != nil {
		fileType, err := domain.ParseFileType(*cmd.FileType)
		if err != nil {
			return nil, err
		}
		f.FileType = fileType
	}
	if cmd.StrategyID != nil {
		f.StrategyID = nonZero(cmd.StrategyID)
	}
	if cmd.PortfolioID != nil {
		f.PortfolioID = nonZero(cmd.PortfolioID)
	}
	if err := s.repo.Save(ctx, f); err != nil {
		return nil, apperr.Internal(err, "failed to update file")
	}
	return f, nil
}

// Delete 删除元数据
func (s *FileService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperr.Internal(err, "failed to delete file")
	}
	return nil
}

// decodeBase64 兼容 data URL 前缀与无填充编码
func decodeBase64(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "data:") {
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:]
		}
	}
	raw = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, raw)

	data, err := base64.StdEncoding.DecodeString(raw)
	if err == nil {
		return data, nil
	}
	if data, rawErr := base64.RawStdEncoding.DecodeString(raw); rawErr == nil {
		return data, nil
	}
	return nil, err
}

func nonZero(id *uint) *uint {
	if id == nil || *id == 0 {
		return nil
	}
	return id
}
