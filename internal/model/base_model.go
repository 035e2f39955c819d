package model

import (
	"time"

	"gorm.io/gorm"
)

type BaseModel struct {
	ID        int64          `gorm:"primary_key;AUTO_INCREMENT" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Actor 当前请求的操作者（来自 JWT 中间件）
type Actor struct {
	ID       int64
	Username string
	Role     string
}

// IsAdmin 是否具有管理员能力
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
