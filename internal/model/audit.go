package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== 常量 ====================

const (
	// 审计主体类型
	AuditSubjectListing = "listing"
	AuditSubjectOverlay = "overlay"
)

// ==================== 数据库模型 ====================

// AuditEvent 生命周期变更审计记录
// 只追加，写入后不可修改或删除；按主体+时间顺序查询
type AuditEvent struct {
	ID        int64     `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`

	SubjectType string `gorm:"size:16;index:idx_audit_subject;not null;comment:主体类型(listing/overlay)" json:"subject_type"`
	SubjectID   int64  `gorm:"index:idx_audit_subject;not null;comment:主体ID" json:"subject_id"`
	ActorID     int64  `gorm:"index;not null;comment:操作者用户ID" json:"actor_id"`
	FromState   string `gorm:"size:32;not null" json:"from_state"`
	ToState     string `gorm:"size:32;not null" json:"to_state"`
	// 驳回/撤销时必填
	Reason string `gorm:"size:1024" json:"reason"`
}

func (*AuditEvent) TableName() string {
	return "audit_events"
}

// BeforeUpdate 审计记录只追加
func (*AuditEvent) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrInvalidData
}

// BeforeDelete 审计记录不可删除
func (*AuditEvent) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrInvalidData
}
