package domain

import (
	"strings"
	"time"
)

// Share 结构分享记录
type Share struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	StructureID uint      `gorm:"column:structure_id;not null;uniqueIndex:idx_share_structure_email,priority:1" json:"structureId"`
	UserID      uint      `gorm:"column:user_id;not null;index" json:"userId"`
	Email       string    `gorm:"column:email;type:varchar(255);not null;uniqueIndex:idx_share_structure_email,priority:2" json:"adminEmail"`
	SharedAt    time.Time `gorm:"column:shared_at;not null" json:"sharedAt"`
}

func (Share) TableName() string { return "structure_shares" }

// NewShare 邮箱统一为小写
func NewShare(s *Structure, email string, now time.Time) *Share {
	return &Share{
		StructureID: s.ID,
		UserID:      s.UserID,
		Email:       strings.ToLower(strings.TrimSpace(email)),
		SharedAt:    now,
	}
}
