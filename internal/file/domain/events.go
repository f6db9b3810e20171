package domain

import "time"

// FileUploadedEventType 文件上传事件类型
const FileUploadedEventType = "FileUploaded"

// FileUploadedEvent 文件上传事件
type FileUploadedEvent struct {
	FileID     uint      `json:"fileId"`
	UserID     uint      `json:"userId"`
	FileKey    string    `json:"fileKey"`
	FileURL    string    `json:"fileUrl"`
	MimeType   string    `json:"mimeType"`
	FileSize   int64     `json:"fileSize"`
	FileType   FileType  `json:"fileType"`
	OccurredOn time.Time `json:"occurredOn"`
}
