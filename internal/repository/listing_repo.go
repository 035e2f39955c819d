package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"realty_dev_v1_202608/internal/apperr"
	"realty_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// ListingRepository 房源仓储接口
type ListingRepository interface {
	Create(ctx context.Context, listing *model.PropertyListing) error
	GetByID(ctx context.Context, id int64) (*model.PropertyListing, error)
	// UpdateChecked 乐观锁更新：仅当持久化版本等于 listing.Version 时写入，
	// 版本不匹配返回 ConflictError，成功后 listing.Version 自增
	UpdateChecked(ctx context.Context, listing *model.PropertyListing) error
	SoftDelete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListingFilter) ([]model.PropertyListing, int64, error)

	// 清理任务相关
	FindPurgeable(ctx context.Context, before time.Time, limit int) ([]model.PropertyListing, error)
	Purge(ctx context.Context, id int64) error
}

// ListingFilter 房源查询条件
type ListingFilter struct {
	OwnerID  int64  // >0 时仅查询该业主的房源
	Status   string // 空为全部状态
	City     string
	Page     int
	PageSize int
}

// ==================== 仓储实现 ====================

type listingRepo struct {
	db *gorm.DB
}

// NewListingRepository 创建房源仓储
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepo{db: db}
}

func (r *listingRepo) Create(ctx context.Context, listing *model.PropertyListing) error {
	if listing.Version == 0 {
		listing.Version = 1
	}
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *listingRepo) GetByID(ctx context.Context, id int64) (*model.PropertyListing, error) {
	var listing model.PropertyListing
	if err := r.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("房源不存在")
		}
		return nil, err
	}
	return &listing, nil
}

func (r *listingRepo) UpdateChecked(ctx context.Context, listing *model.PropertyListing) error {
	observed := listing.Version
	result := r.db.WithContext(ctx).
		Model(&model.PropertyListing{}).
		Where("id = ? AND version = ?", listing.ID, observed).
		Updates(map[string]interface{}{
			"title":            listing.Title,
			"property_type":    listing.PropertyType,
			"listing_type":     listing.ListingType,
			"city":             listing.City,
			"address":          listing.Address,
			"area_sqm":         listing.AreaSqm,
			"bedrooms":         listing.Bedrooms,
			"bathrooms":        listing.Bathrooms,
			"amenities":        listing.Amenities,
			"description":      listing.Description,
			"price_amount":     listing.PriceAmount,
			"price_divisor":    listing.PriceDivisor,
			"currency_code":    listing.CurrencyCode,
			"status":           listing.Status,
			"rejection_reason": listing.RejectionReason,
			"version":          observed + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict("房源已被其他请求修改，请刷新后重试")
	}
	listing.Version = observed + 1
	return nil
}

func (r *listingRepo) SoftDelete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.PropertyListing{}, id).Error
}

func (r *listingRepo) List(ctx context.Context, filter ListingFilter) ([]model.PropertyListing, int64, error) {
	var listings []model.PropertyListing
	var total int64

	query := r.db.WithContext(ctx).Model(&model.PropertyListing{})

	if filter.OwnerID > 0 {
		query = query.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	offset := (filter.Page - 1) * filter.PageSize
	if err := query.Order("created_at DESC").Limit(filter.PageSize).Offset(offset).Find(&listings).Error; err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// FindPurgeable 查找可物理清除的软删除房源
// 被快照引用的房源不物理删除
func (r *listingRepo) FindPurgeable(ctx context.Context, before time.Time, limit int) ([]model.PropertyListing, error) {
	var listings []model.PropertyListing
	err := r.db.WithContext(ctx).Unscoped().
		Where("property_listings.deleted_at IS NOT NULL").
		Where("property_listings.deleted_at < ?", before).
		Where("NOT EXISTS (SELECT 1 FROM publication_overlays o WHERE o.listing_id = property_listings.id)").
		Limit(limit).
		Find(&listings).Error
	return listings, err
}

// Purge 物理删除
func (r *listingRepo) Purge(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.PropertyListing{}, id).Error
}

// ==================== 事务支持 ====================

// ListingUnitOfWork 房源工作单元（事务）
// 状态写入与审计写入必须同事务提交
type ListingUnitOfWork struct {
	db       *gorm.DB
	Listings ListingRepository
	Overlays OverlayRepository
	Audits   AuditRepository
}

// NewListingUnitOfWork 创建工作单元
func NewListingUnitOfWork(db *gorm.DB) *ListingUnitOfWork {
	return &ListingUnitOfWork{
		db:       db,
		Listings: NewListingRepository(db),
		Overlays: NewOverlayRepository(db),
		Audits:   NewAuditRepository(db),
	}
}

// Transaction 执行事务
func (u *ListingUnitOfWork) Transaction(ctx context.Context, fn func(uow *ListingUnitOfWork) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txUow := &ListingUnitOfWork{
			db:       tx,
			Listings: NewListingRepository(tx),
			Overlays: NewOverlayRepository(tx),
			Audits:   NewAuditRepository(tx),
		}
		return fn(txUow)
	})
}
