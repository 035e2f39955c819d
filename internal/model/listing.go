package model

import (
	"gorm.io/datatypes"
)

// ==================== 状态常量 ====================

const (
	// 房源状态
	ListingStatusDraft    = "draft"    // 草稿，业主可编辑
	ListingStatusPending  = "pending"  // 已提交，等待审核
	ListingStatusApproved = "approved" // 审核通过
	ListingStatusRejected = "rejected" // 审核驳回，业主可修改后重新提交

	// 房源用途
	ListingTypeSale = "sale"
	ListingTypeRent = "rent"
)

// legalTransitions 状态机转移表
// 所有状态变更必须经过 CanTransition 检查，禁止散落的字符串比较
var legalTransitions = map[string]map[string]bool{
	ListingStatusDraft: {
		ListingStatusPending: true, // submit
	},
	ListingStatusPending: {
		ListingStatusApproved: true, // approve
		ListingStatusRejected: true, // reject
	},
	ListingStatusApproved: {
		ListingStatusPending: true, // revoke，退回重审
	},
	ListingStatusRejected: {
		ListingStatusDraft: true, // 业主编辑后回到草稿
	},
}

// CanTransition 检查状态转移是否合法
func CanTransition(from, to string) bool {
	return legalTransitions[from][to]
}

// IsValidStatus 检查状态值是否在枚举内
func IsValidStatus(status string) bool {
	switch status {
	case ListingStatusDraft, ListingStatusPending, ListingStatusApproved, ListingStatusRejected:
		return true
	}
	return false
}

// ==================== 数据库模型 ====================

// PropertyListing 业主提交的房源记录
type PropertyListing struct {
	BaseModel
	OwnerID int64 `gorm:"index;not null;comment:业主用户ID" json:"owner_id"`

	// 展示字段
	Title        string                      `gorm:"size:140;comment:标题" json:"title"`
	PropertyType string                      `gorm:"size:32;comment:房产类型(apartment/house/plot...)" json:"property_type"`
	ListingType  string                      `gorm:"size:16;default:sale;comment:出售或出租" json:"listing_type"`
	City         string                      `gorm:"size:64;index;comment:城市" json:"city"`
	Address      string                      `gorm:"size:255;comment:详细地址" json:"address"`
	AreaSqm      float64                     `gorm:"comment:面积(平方米)" json:"area_sqm"`
	Bedrooms     int                         `gorm:"comment:卧室数" json:"bedrooms"`
	Bathrooms    int                         `gorm:"comment:卫生间数" json:"bathrooms"`
	Amenities    datatypes.JSONSlice[string] `gorm:"type:json;comment:配套设施" json:"amenities"`
	Description  string                      `gorm:"type:text;comment:描述" json:"description"`

	// 价格（分单位，沿用 PriceAmount/PriceDivisor 结构）
	PriceAmount  int64  `gorm:"comment:价格(最小货币单位)" json:"price_amount"`
	PriceDivisor int64  `gorm:"default:100;comment:价格除数" json:"price_divisor"`
	CurrencyCode string `gorm:"size:3;default:USD;comment:货币代码" json:"currency_code"`

	// 生命周期
	Status          string `gorm:"size:32;index;default:draft;comment:房源状态" json:"status"`
	RejectionReason string `gorm:"size:1024;comment:驳回原因，仅 rejected 状态下非空" json:"rejection_reason"`

	// 乐观锁版本号，所有写操作必须基于调用方读到的版本
	Version int64 `gorm:"not null;default:1" json:"version"`
}

func (*PropertyListing) TableName() string {
	return "property_listings"
}

// ==================== 辅助方法 ====================

// GetPrice 获取价格（浮点数）
func (l *PropertyListing) GetPrice() float64 {
	if l.PriceDivisor == 0 {
		l.PriceDivisor = 100
	}
	return float64(l.PriceAmount) / float64(l.PriceDivisor)
}

// SetPrice 设置价格（浮点数）
func (l *PropertyListing) SetPrice(price float64) {
	l.PriceDivisor = 100
	l.PriceAmount = int64(price * 100)
}

// Editable 业主是否可以编辑当前记录
func (l *PropertyListing) Editable() bool {
	return l.Status == ListingStatusDraft || l.Status == ListingStatusRejected
}

// MissingRequiredFields 提交前校验必填字段，返回缺失字段名
func (l *PropertyListing) MissingRequiredFields() []string {
	var missing []string
	if l.Title == "" {
		missing = append(missing, "title")
	}
	if l.PropertyType == "" {
		missing = append(missing, "property_type")
	}
	if l.City == "" {
		missing = append(missing, "city")
	}
	if l.PriceAmount <= 0 {
		missing = append(missing, "price")
	}
	return missing
}
