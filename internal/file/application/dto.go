package application

import "github.com/wyfcoding/optionsdesk/internal/file/domain"

// UploadFileCommand base64 上传
type UploadFileCommand struct {
	FileName    string `json:"fileName"`
	FileData    string `json:"fileData"`
	MimeType    string `json:"mimeType"`
	FileType    string `json:"fileType"`
	StrategyID  *uint  `json:"strategyId"`
	PortfolioID *uint  `json:"portfolioId"`
}

// UpdateFileCommand 修改元数据；关联 ID 传 0 表示解除关联
type UpdateFileCommand struct {
	FileName    *string `json:"fileName"`
	FileType    *string `json:"fileType"`
	StrategyID  *uint   `json:"strategyId"`
	PortfolioID *uint   `json:"portfolioId"`
}

// UploadResult 上传结果
type UploadResult struct {
	URL     string               `json:"url"`
	FileKey string               `json:"fileKey"`
	File    *domain.UploadedFile `json:"file"`
}
