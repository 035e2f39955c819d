package dto

import (
	"time"

	"realty_dev_v1_202608/internal/model"
)

// ==================== 请求 ====================

// SaveOverlayRequest 保存快照草稿请求
// 照片文件经 multipart 上传，SideLoadURLs 为按 URL 引入的照片源地址，
// 二者合并为一个全有或全无的上传批次
type SaveOverlayRequest struct {
	Title        *string  `json:"title" form:"title"`
	PropertyType *string  `json:"property_type" form:"property_type"`
	ListingType  *string  `json:"listing_type" form:"listing_type"`
	City         *string  `json:"city" form:"city"`
	AreaSqm      *float64 `json:"area_sqm" form:"area_sqm"`
	Bedrooms     *int     `json:"bedrooms" form:"bedrooms"`
	Bathrooms    *int     `json:"bathrooms" form:"bathrooms"`
	Description  *string  `json:"description" form:"description"`
	Price        *float64 `json:"price" form:"price"`
	CurrencyCode *string  `json:"currency_code" form:"currency_code"`
	SideLoadURLs []string `json:"side_load_urls" form:"side_load_urls"`
	Version      int64    `json:"version" form:"version" binding:"required"`
}

// RemovePhotoRequest 移除照片请求，URL 精确匹配
type RemovePhotoRequest struct {
	URL     string `json:"url" binding:"required"`
	Version int64  `json:"version" binding:"required"`
}

// ==================== 响应 ====================

// OverlayResponse 快照详情（管理端）
type OverlayResponse struct {
	ID           int64      `json:"id"`
	ListingID    int64      `json:"listing_id"`
	Title        string     `json:"title"`
	PropertyType string     `json:"property_type"`
	ListingType  string     `json:"listing_type"`
	City         string     `json:"city"`
	AreaSqm      float64    `json:"area_sqm"`
	Bedrooms     int        `json:"bedrooms"`
	Bathrooms    int        `json:"bathrooms"`
	Description  string     `json:"description"`
	Price        float64    `json:"price"`
	CurrencyCode string     `json:"currency_code"`
	Photos       []string   `json:"photos"`
	IsLive       bool       `json:"is_live"`
	PublishedAt  *time.Time `json:"published_at"`
	Version      int64      `json:"version"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// PublicOverlayResponse 公开快照（只读，不暴露版本与上线时间之外的内部信息）
type PublicOverlayResponse struct {
	ListingID    int64      `json:"listing_id"`
	Title        string     `json:"title"`
	PropertyType string     `json:"property_type"`
	ListingType  string     `json:"listing_type"`
	City         string     `json:"city"`
	AreaSqm      float64    `json:"area_sqm"`
	Bedrooms     int        `json:"bedrooms"`
	Bathrooms    int        `json:"bathrooms"`
	Description  string     `json:"description"`
	Price        float64    `json:"price"`
	CurrencyCode string     `json:"currency_code"`
	Photos       []string   `json:"photos"`
	PublishedAt  *time.Time `json:"published_at"`
}

// ==================== 转换 ====================

// ToOverlayResponse 模型转管理端响应
func ToOverlayResponse(o *model.PublicationOverlay) OverlayResponse {
	return OverlayResponse{
		ID:           o.ID,
		ListingID:    o.ListingID,
		Title:        o.Title,
		PropertyType: o.PropertyType,
		ListingType:  o.ListingType,
		City:         o.City,
		AreaSqm:      o.AreaSqm,
		Bedrooms:     o.Bedrooms,
		Bathrooms:    o.Bathrooms,
		Description:  o.Description,
		Price:        o.GetPrice(),
		CurrencyCode: o.CurrencyCode,
		Photos:       o.Photos,
		IsLive:       o.IsLive,
		PublishedAt:  o.PublishedAt,
		Version:      o.Version,
		UpdatedAt:    o.UpdatedAt,
	}
}

// ToPublicOverlayResponse 模型转公开响应
func ToPublicOverlayResponse(o *model.PublicationOverlay) PublicOverlayResponse {
	return PublicOverlayResponse{
		ListingID:    o.ListingID,
		Title:        o.Title,
		PropertyType: o.PropertyType,
		ListingType:  o.ListingType,
		City:         o.City,
		AreaSqm:      o.AreaSqm,
		Bedrooms:     o.Bedrooms,
		Bathrooms:    o.Bathrooms,
		Description:  o.Description,
		Price:        o.GetPrice(),
		CurrencyCode: o.CurrencyCode,
		Photos:       o.Photos,
		PublishedAt:  o.PublishedAt,
	}
}
