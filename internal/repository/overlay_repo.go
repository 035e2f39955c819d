package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"realty_dev_v1_202608/internal/apperr"
	"realty_dev_v1_202608/internal/model"
)

// ==================== 仓储接口 ====================

// OverlayRepository 对外快照仓储接口
type OverlayRepository interface {
	Create(ctx context.Context, overlay *model.PublicationOverlay) error
	// GetByListingID 显式可选查询：快照尚不存在时返回 (nil, nil)，
	// 不使用错误控制"尚无快照"的分支
	GetByListingID(ctx context.Context, listingID int64) (*model.PublicationOverlay, error)
	// GetLiveByListingID 公开读取：不存在或未上线统一返回 NotFound
	GetLiveByListingID(ctx context.Context, listingID int64) (*model.PublicationOverlay, error)
	// UpdateChecked 乐观锁更新，语义同 ListingRepository.UpdateChecked
	UpdateChecked(ctx context.Context, overlay *model.PublicationOverlay) error
	ExistsForListing(ctx context.Context, listingID int64) (bool, error)
}

// ==================== 仓储实现 ====================

type overlayRepo struct {
	db *gorm.DB
}

// NewOverlayRepository 创建快照仓储
func NewOverlayRepository(db *gorm.DB) OverlayRepository {
	return &overlayRepo{db: db}
}

func (r *overlayRepo) Create(ctx context.Context, overlay *model.PublicationOverlay) error {
	if overlay.Version == 0 {
		overlay.Version = 1
	}
	return r.db.WithContext(ctx).Create(overlay).Error
}

func (r *overlayRepo) GetByListingID(ctx context.Context, listingID int64) (*model.PublicationOverlay, error) {
	var overlay model.PublicationOverlay
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&overlay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &overlay, nil
}

func (r *overlayRepo) GetLiveByListingID(ctx context.Context, listingID int64) (*model.PublicationOverlay, error) {
	var overlay model.PublicationOverlay
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND is_live = ?", listingID, true).
		First(&overlay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 不存在与未上线对公开调用方不可区分
			return nil, apperr.NotFound("房源不存在")
		}
		return nil, err
	}
	return &overlay, nil
}

func (r *overlayRepo) UpdateChecked(ctx context.Context, overlay *model.PublicationOverlay) error {
	observed := overlay.Version
	result := r.db.WithContext(ctx).
		Model(&model.PublicationOverlay{}).
		Where("id = ? AND version = ?", overlay.ID, observed).
		Updates(map[string]interface{}{
			"title":         overlay.Title,
			"property_type": overlay.PropertyType,
			"listing_type":  overlay.ListingType,
			"city":          overlay.City,
			"area_sqm":      overlay.AreaSqm,
			"bedrooms":      overlay.Bedrooms,
			"bathrooms":     overlay.Bathrooms,
			"description":   overlay.Description,
			"price_amount":  overlay.PriceAmount,
			"price_divisor": overlay.PriceDivisor,
			"currency_code": overlay.CurrencyCode,
			"photos":        overlay.Photos,
			"is_live":       overlay.IsLive,
			"published_at":  overlay.PublishedAt,
			"version":       observed + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.Conflict("快照已被其他请求修改，请刷新后重试")
	}
	overlay.Version = observed + 1
	return nil
}

func (r *overlayRepo) ExistsForListing(ctx context.Context, listingID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.PublicationOverlay{}).
		Where("listing_id = ?", listingID).
		Count(&count).Error
	return count > 0, err
}
