package model

import "time"

// ==================== 常量 ====================

const (
	// 系统级角色: admin (平台管理员), owner (业主)
	RoleAdmin = "admin"
	RoleOwner = "owner"

	// 账号状态
	UserStatusActive   = 1
	UserStatusDisabled = 0
)

// ==================== 数据库模型 ====================

// SysUser 系统用户账号
type SysUser struct {
	BaseModel
	Username string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // 哈希密码
	Email    string `gorm:"size:100"`
	Phone    string `gorm:"size:32"`

	Role   string `gorm:"size:20;default:'owner'"`
	Status int    `gorm:"default:1"`

	LastLoginAt *time.Time
}

func (SysUser) TableName() string {
	return "sys_users"
}

// IsActive 账号是否可用
func (u *SysUser) IsActive() bool {
	return u.Status == UserStatusActive
}
