package dto

import (
	"time"

	"realty_dev_v1_202608/internal/model"
)

// ==================== 请求 ====================

// CreateListingRequest 创建房源请求
type CreateListingRequest struct {
	Title        string   `json:"title"`
	PropertyType string   `json:"property_type"`
	ListingType  string   `json:"listing_type"`
	City         string   `json:"city"`
	Address      string   `json:"address"`
	AreaSqm      float64  `json:"area_sqm"`
	Bedrooms     int      `json:"bedrooms"`
	Bathrooms    int      `json:"bathrooms"`
	Amenities    []string `json:"amenities"`
	Description  string   `json:"description"`
	Price        float64  `json:"price"`
	CurrencyCode string   `json:"currency_code"`
}

// UpdateListingRequest 编辑房源请求（仅 draft/rejected 可编辑）
// 指针字段区分"未提交"与"置空"；Version 为调用方读到的版本号
type UpdateListingRequest struct {
	Title        *string  `json:"title"`
	PropertyType *string  `json:"property_type"`
	ListingType  *string  `json:"listing_type"`
	City         *string  `json:"city"`
	Address      *string  `json:"address"`
	AreaSqm      *float64 `json:"area_sqm"`
	Bedrooms     *int     `json:"bedrooms"`
	Bathrooms    *int     `json:"bathrooms"`
	Amenities    []string `json:"amenities"`
	Description  *string  `json:"description"`
	Price        *float64 `json:"price"`
	CurrencyCode *string  `json:"currency_code"`
	Version      int64    `json:"version" binding:"required"`
}

// TransitionRequest 状态转移请求（submit/approve）
type TransitionRequest struct {
	Version int64 `json:"version" binding:"required"`
}

// ReasonedTransitionRequest 带原因的状态转移请求（reject/revoke）
type ReasonedTransitionRequest struct {
	Reason  string `json:"reason"`
	Version int64  `json:"version" binding:"required"`
}

// ListListingsQuery 房源列表查询参数
type ListListingsQuery struct {
	Status   string `form:"status"`
	City     string `form:"city"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ==================== 响应 ====================

// ListingResponse 房源详情
type ListingResponse struct {
	ID              int64     `json:"id"`
	OwnerID         int64     `json:"owner_id"`
	Title           string    `json:"title"`
	PropertyType    string    `json:"property_type"`
	ListingType     string    `json:"listing_type"`
	City            string    `json:"city"`
	Address         string    `json:"address"`
	AreaSqm         float64   `json:"area_sqm"`
	Bedrooms        int       `json:"bedrooms"`
	Bathrooms       int       `json:"bathrooms"`
	Amenities       []string  `json:"amenities"`
	Description     string    `json:"description"`
	Price           float64   `json:"price"`
	CurrencyCode    string    `json:"currency_code"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	Version         int64     `json:"version"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ListingListResponse 房源分页列表
type ListingListResponse struct {
	Items    []ListingResponse `json:"items"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// AuditEventResponse 审计事件
type AuditEventResponse struct {
	ID          int64     `json:"id"`
	SubjectType string    `json:"subject_type"`
	SubjectID   int64     `json:"subject_id"`
	ActorID     int64     `json:"actor_id"`
	FromState   string    `json:"from_state"`
	ToState     string    `json:"to_state"`
	Reason      string    `json:"reason,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ==================== 转换 ====================

// ToListingResponse 模型转响应
func ToListingResponse(l *model.PropertyListing) ListingResponse {
	return ListingResponse{
		ID:              l.ID,
		OwnerID:         l.OwnerID,
		Title:           l.Title,
		PropertyType:    l.PropertyType,
		ListingType:     l.ListingType,
		City:            l.City,
		Address:         l.Address,
		AreaSqm:         l.AreaSqm,
		Bedrooms:        l.Bedrooms,
		Bathrooms:       l.Bathrooms,
		Amenities:       l.Amenities,
		Description:     l.Description,
		Price:           l.GetPrice(),
		CurrencyCode:    l.CurrencyCode,
		Status:          l.Status,
		RejectionReason: l.RejectionReason,
		Version:         l.Version,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
	}
}

// ToAuditEventResponse 模型转响应
func ToAuditEventResponse(e *model.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:          e.ID,
		SubjectType: e.SubjectType,
		SubjectID:   e.SubjectID,
		ActorID:     e.ActorID,
		FromState:   e.FromState,
		ToState:     e.ToState,
		Reason:      e.Reason,
		CreatedAt:   e.CreatedAt,
	}
}
