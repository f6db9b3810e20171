// Package domain 上传文件元数据与对象存储抽象
package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/utils"
	"gorm.io/gorm"
)

// FileType 文件用途
type FileType string

const (
	FileTypeReport     FileType = "report"
	FileTypeScreenshot FileType = "screenshot"
	FileTypeDocument   FileType = "document"
	FileTypeOther      FileType = "other"
)

// DefaultExtension 文件名没有可用扩展名时使用
const DefaultExtension = "bin"

// KeySuffixLength key 中随机后缀长度
const KeySuffixLength = 10

var (
	ErrFileNotFound    = apperr.NotFound("file")
	ErrFileForbidden   = apperr.Forbidden("file")
	ErrInvalidFileData = apperr.New(apperr.KindInvalidArgument, "fileData must be valid base64")
	ErrInvalidFileName = apperr.New(apperr.KindInvalidArgument, "fileName must be 1..255 characters")
)

// ParseFileType 解析文件用途
func ParseFileType(raw string) (FileType, error) {
	switch t := FileType(strings.ToLower(strings.TrimSpace(raw))); t {
	case FileTypeReport, FileTypeScreenshot, FileTypeDocument, FileTypeOther:
		return t, nil
	default:
		return "", apperr.Invalid("invalid fileType %q", raw)
	}
}

// UploadedFile 上传文件元数据，内容存放在对象存储
type UploadedFile struct {
	gorm.Model
	UserID      uint     `gorm:"column:user_id;index;not null" json:"userId"`
	StrategyID  *uint    `gorm:"column:strategy_id;index" json:"strategyId"`
	PortfolioID *uint    `gorm:"column:portfolio_id;index" json:"portfolioId"`
	FileName    string   `gorm:"column:file_name;type:varchar(255);not null" json:"fileName"`
	FileKey     string   `gorm:"column:file_key;type:varchar(512);uniqueIndex;not null" json:"fileKey"`
	FileURL     string   `gorm:"column:file_url;type:text;not null" json:"fileUrl"`
	MimeType    string   `gorm:"column:mime_type;type:varchar(100)" json:"mimeType"`
	FileSize    int64    `gorm:"column:file_size;not null" json:"fileSize"`
	FileType    FileType `gorm:"column:file_type;type:varchar(20);not null" json:"fileType"`
}

func (UploadedFile) TableName() string { return "uploaded_files" }

// ValidateFileName 校验文件名长度
func ValidateFileName(name string) error {
	if n := utf8.RuneCountInString(name); n < 1 || n > 255 {
		return ErrInvalidFileName
	}
	return nil
}

// BuildKey 生成存储 key：<userID>/files/<unixMillis>-<suffix>.<ext>
func BuildKey(userID uint, fileName string, now time.Time, suffix string) string {
	return fmt.Sprintf("%d/files/%d-%s.%s", userID, now.UnixMilli(), suffix, extension(fileName))
}

// extension 只保留字母数字扩展名
func extension(fileName string) string {
	ext := utils.FileExt(fileName, DefaultExtension)
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return DefaultExtension
		}
	}
	return ext
}

// ObjectStore 对象存储，返回可访问的 URL
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Repository 文件元数据仓储；Get 未找到时返回 nil, nil
type Repository interface {
	Save(ctx context.Context, f *UploadedFile) error
	Get(ctx context.Context, id uint) (*UploadedFile, error)
	ListByUser(ctx context.Context, userID uint) ([]*UploadedFile, error)
	Delete(ctx context.Context, id uint) error
}
