package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 常量 ====================

const (
	// 上线硬性要求：照片数下限
	MinLivePhotos = 3

	// 快照可见性状态（用于审计 from/to）
	OverlayStateHidden = "hidden"
	OverlayStateLive   = "live"
)

// ==================== 数据库模型 ====================

// PublicationOverlay 管理员策划的对外展示记录
// 与 PropertyListing 一对一，首次编辑时从房源字段克隆，之后独立演化，
// 绝不自动回同步业主侧的修改。
type PublicationOverlay struct {
	BaseModel
	ListingID int64 `gorm:"uniqueIndex;not null;comment:房源ID(1:1)" json:"listing_id"`

	// 策划后的展示字段，允许与业主原始记录不一致
	Title        string  `gorm:"size:140;comment:对外标题" json:"title"`
	PropertyType string  `gorm:"size:32;comment:房产类型" json:"property_type"`
	ListingType  string  `gorm:"size:16;comment:出售或出租" json:"listing_type"`
	City         string  `gorm:"size:64;comment:城市" json:"city"`
	AreaSqm      float64 `gorm:"comment:面积(平方米)" json:"area_sqm"`
	Bedrooms     int     `gorm:"comment:卧室数" json:"bedrooms"`
	Bathrooms    int     `gorm:"comment:卫生间数" json:"bathrooms"`
	Description  string  `gorm:"type:text;comment:对外描述" json:"description"`

	PriceAmount  int64  `gorm:"comment:价格(最小货币单位)" json:"price_amount"`
	PriceDivisor int64  `gorm:"default:100;comment:价格除数" json:"price_divisor"`
	CurrencyCode string `gorm:"size:3;default:USD;comment:货币代码" json:"currency_code"`

	// 有序照片 URL，只追加合并，删除必须按 URL 精确匹配
	Photos datatypes.JSONSlice[string] `gorm:"type:json;comment:照片URL列表" json:"photos"`

	IsLive      bool       `gorm:"index;default:false;comment:是否对外可见" json:"is_live"`
	PublishedAt *time.Time `gorm:"comment:首次/最近上线时间，下线后保留" json:"published_at"`

	// 乐观锁版本号
	Version int64 `gorm:"not null;default:1" json:"version"`
}

func (*PublicationOverlay) TableName() string {
	return "publication_overlays"
}

// ==================== 辅助方法 ====================

// State 当前可见性状态（审计用）
func (o *PublicationOverlay) State() string {
	if o.IsLive {
		return OverlayStateLive
	}
	return OverlayStateHidden
}

// GetPrice 获取价格（浮点数）
func (o *PublicationOverlay) GetPrice() float64 {
	if o.PriceDivisor == 0 {
		o.PriceDivisor = 100
	}
	return float64(o.PriceAmount) / float64(o.PriceDivisor)
}

// UnmetPublishConditions 上线前校验，返回全部未满足的条件
// 必须针对当前持久化状态调用，不信任调用方缓存的旧值
func (o *PublicationOverlay) UnmetPublishConditions() []string {
	var unmet []string
	if len(o.Photos) < MinLivePhotos {
		unmet = append(unmet, "minimum 3 photos required")
	}
	if o.Title == "" {
		unmet = append(unmet, "title required")
	}
	if o.PriceAmount <= 0 {
		unmet = append(unmet, "positive price required")
	}
	return unmet
}

// SnapshotFromListing 从房源当前字段克隆一份新快照（首次创建时调用一次）
func SnapshotFromListing(l *PropertyListing) *PublicationOverlay {
	return &PublicationOverlay{
		ListingID:    l.ID,
		Title:        l.Title,
		PropertyType: l.PropertyType,
		ListingType:  l.ListingType,
		City:         l.City,
		AreaSqm:      l.AreaSqm,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		Description:  l.Description,
		PriceAmount:  l.PriceAmount,
		PriceDivisor: l.PriceDivisor,
		CurrencyCode: l.CurrencyCode,
		Photos:       datatypes.JSONSlice[string]{},
		IsLive:       false,
		Version:      1,
	}
}
