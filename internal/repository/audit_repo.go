package repository

import (
	"context"

	"gorm.io/gorm"

	"realty_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// AuditRepository 审计日志仓储接口
// 只有 Append 和 History，不存在更新/删除操作
type AuditRepository interface {
	Append(ctx context.Context, event *model.AuditEvent) error
	History(ctx context.Context, subjectType string, subjectID int64) ([]model.AuditEvent, error)
}

// ==================== 仓储实现 ====================

type auditRepo struct {
	db *gorm.DB
}

// NewAuditRepository 创建审计仓储
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepo{db: db}
}

func (r *auditRepo) Append(ctx context.Context, event *model.AuditEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// History 按时间顺序返回主体的全部事件，无记录时返回空切片
func (r *auditRepo) History(ctx context.Context, subjectType string, subjectID int64) ([]model.AuditEvent, error) {
	var events []model.AuditEvent
	err := r.db.WithContext(ctx).
		Where("subject_type = ? AND subject_id = ?", subjectType, subjectID).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	return events, err
}
