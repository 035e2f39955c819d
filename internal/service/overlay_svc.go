package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"realty_dev_v1_202608/internal/api/dto"
	"realty_dev_v1_202608/internal/apperr"
	"realty_dev_v1_202608/internal/model"
	"realty_dev_v1_202608/internal/repository"
	"realty_dev_v1_202608/pkg/utils"
)

// 公开读取缓存 TTL
const publicCacheTTL = 30 * time.Second

// ==================== 服务实现 ====================

// OverlayService 对外快照服务
// 管理"保存草稿"与"上线"两个相互独立的原子单元：
// 保存 = 合并上传 + 持久化字段，一个事务；上线 = 针对持久化状态重新校验后翻转。
type OverlayService struct {
	uow   *repository.ListingUnitOfWork
	media MediaAttachmentService
}

// NewOverlayService 创建快照服务
func NewOverlayService(uow *repository.ListingUnitOfWork, media MediaAttachmentService) *OverlayService {
	return &OverlayService{uow: uow, media: media}
}

// ==================== 管理员操作 ====================

// GetOrCreateSnapshot 获取快照，不存在时从房源当前字段克隆创建
// 已存在的快照绝不被重新同步，重复调用等价
func (s *OverlayService) GetOrCreateSnapshot(ctx context.Context, actor model.Actor, listingID int64) (*model.PublicationOverlay, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("需要管理员权限")
	}

	overlay, err := s.uow.Overlays.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if overlay != nil {
		return overlay, nil
	}

	listing, err := s.uow.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	overlay = model.SnapshotFromListing(listing)
	if err := s.uow.Overlays.Create(ctx, overlay); err != nil {
		return nil, err
	}
	return overlay, nil
}

// SaveDraft 保存快照草稿：上传整批照片 + 追加合并 + 持久化字段，单事务
// 上传批次任何一个文件失败整体失败，照片列表保持原样；
// 不改变 isLive。重复提交同一批照片会重复追加，调用方负责去重。
func (s *OverlayService) SaveDraft(ctx context.Context, actor model.Actor, listingID int64, req *dto.SaveOverlayRequest, newUploads []FileUpload) (*model.PublicationOverlay, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("需要管理员权限")
	}

	overlay, err := s.uow.Overlays.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if overlay == nil {
		return nil, apperr.State("快照不存在，请先创建")
	}
	if req.Version != overlay.Version {
		return nil, apperr.Conflict("快照已被其他请求修改，请刷新后重试")
	}

	// 按 URL 引入的照片与直传文件合并为一个全有或全无的批次
	uploads := newUploads
	for _, src := range req.SideLoadURLs {
		uploads = append(uploads, FileUpload{SourceURL: src})
	}

	// 上传先行：任何写入发生之前整批上传必须成功
	var newURLs []string
	if len(uploads) > 0 {
		newURLs, err = s.media.Upload(ctx, uploads)
		if err != nil {
			return nil, err
		}
	}

	applyOverlayUpdates(overlay, req)

	// 只追加，不重排已有照片
	if len(newURLs) > 0 {
		overlay.Photos = append(overlay.Photos, newURLs...)
	}

	err = s.uow.Transaction(ctx, func(uow *repository.ListingUnitOfWork) error {
		return uow.Overlays.UpdateChecked(ctx, overlay)
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePublicCache(listingID)
	return overlay, nil
}

// Publish 上线：针对当前持久化的快照重新校验全部条件后翻转 isLive
func (s *OverlayService) Publish(ctx context.Context, actor model.Actor, listingID int64, observedVersion int64) (*model.PublicationOverlay, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("需要管理员权限")
	}

	var overlay *model.PublicationOverlay
	err := s.uow.Transaction(ctx, func(uow *repository.ListingUnitOfWork) error {
		// 重新读取持久化状态，不信任调用方在 saveDraft 之前缓存的值
		var err error
		overlay, err = uow.Overlays.GetByListingID(ctx, listingID)
		if err != nil {
			return err
		}
		if overlay == nil {
			return apperr.State("快照不存在，请先创建")
		}
		if observedVersion != overlay.Version {
			return apperr.Conflict("快照已被其他请求修改，请刷新后重试")
		}
		if overlay.IsLive {
			return apperr.State("快照已处于上线状态")
		}
		if unmet := overlay.UnmetPublishConditions(); len(unmet) > 0 {
			return apperr.Validation("上线条件不满足", unmet...)
		}

		from := overlay.State()
		now := time.Now()
		overlay.IsLive = true
		overlay.PublishedAt = &now

		if err := uow.Overlays.UpdateChecked(ctx, overlay); err != nil {
			return err
		}
		return uow.Audits.Append(ctx, &model.AuditEvent{
			SubjectType: model.AuditSubjectOverlay,
			SubjectID:   overlay.ListingID,
			ActorID:     actor.ID,
			FromState:   from,
			ToState:     model.OverlayStateLive,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePublicCache(listingID)
	return overlay, nil
}

// Unpublish 显式下线，publishedAt 保留作为历史
// 房源侧 revoke 不会触发这里，两条状态机保持解耦
func (s *OverlayService) Unpublish(ctx context.Context, actor model.Actor, listingID int64, observedVersion int64) (*model.PublicationOverlay, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("需要管理员权限")
	}

	var overlay *model.PublicationOverlay
	err := s.uow.Transaction(ctx, func(uow *repository.ListingUnitOfWork) error {
		var err error
		overlay, err = uow.Overlays.GetByListingID(ctx, listingID)
		if err != nil {
			return err
		}
		if overlay == nil {
			return apperr.State("快照不存在")
		}
		if observedVersion != overlay.Version {
			return apperr.Conflict("快照已被其他请求修改，请刷新后重试")
		}
		if !overlay.IsLive {
			return apperr.State("快照未处于上线状态")
		}

		overlay.IsLive = false

		if err := uow.Overlays.UpdateChecked(ctx, overlay); err != nil {
			return err
		}
		return uow.Audits.Append(ctx, &model.AuditEvent{
			SubjectType: model.AuditSubjectOverlay,
			SubjectID:   overlay.ListingID,
			ActorID:     actor.ID,
			FromState:   model.OverlayStateLive,
			ToState:     model.OverlayStateHidden,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePublicCache(listingID)
	return overlay, nil
}

// RemovePhoto 按 URL 精确移除一张照片
// 上线状态下移除后不足下限时拒绝，绝不让在线快照违反不变量
func (s *OverlayService) RemovePhoto(ctx context.Context, actor model.Actor, listingID int64, url string, observedVersion int64) (*model.PublicationOverlay, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("需要管理员权限")
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, apperr.Validation("照片 URL 不能为空", "url required")
	}

	overlay, err := s.uow.Overlays.GetByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if overlay == nil {
		return nil, apperr.State("快照不存在")
	}
	if observedVersion != overlay.Version {
		return nil, apperr.Conflict("快照已被其他请求修改，请刷新后重试")
	}

	idx := -1
	for i, p := range overlay.Photos {
		if p == url {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, apperr.Validation("照片不在列表中", "photo url not found")
	}
	if overlay.IsLive && len(overlay.Photos)-1 < model.MinLivePhotos {
		return nil, apperr.Validation("上线快照照片数不能少于下限",
			fmt.Sprintf("live overlay requires at least %d photos", model.MinLivePhotos))
	}

	overlay.Photos = append(overlay.Photos[:idx:idx], overlay.Photos[idx+1:]...)

	err = s.uow.Transaction(ctx, func(uow *repository.ListingUnitOfWork) error {
		return uow.Overlays.UpdateChecked(ctx, overlay)
	})
	if err != nil {
		return nil, err
	}

	s.invalidatePublicCache(listingID)
	return overlay, nil
}

// ==================== 公开读取 ====================

// PublicOverlay 公开读取：仅返回上线中的快照
// 不存在、未上线对公开调用方一律 NotFound，不泄露未发布内容
func (s *OverlayService) PublicOverlay(ctx context.Context, listingID int64) (*dto.PublicOverlayResponse, error) {
	cacheKey := publicCacheKey(listingID)
	if cached, ok := utils.GetCache(cacheKey); ok {
		var resp dto.PublicOverlayResponse
		if err := json.Unmarshal([]byte(cached), &resp); err == nil {
			return &resp, nil
		}
	}

	overlay, err := s.uow.Overlays.GetLiveByListingID(ctx, listingID)
	if err != nil {
		return nil, err
	}

	resp := dto.ToPublicOverlayResponse(overlay)
	if data, err := json.Marshal(resp); err == nil {
		utils.SetCache(cacheKey, string(data), publicCacheTTL)
	}
	return &resp, nil
}

// ==================== 内部方法 ====================

func publicCacheKey(listingID int64) string {
	return fmt.Sprintf("public:overlay:%d", listingID)
}

func (s *OverlayService) invalidatePublicCache(listingID int64) {
	utils.DeleteCache(publicCacheKey(listingID))
}

// applyOverlayUpdates 应用保存请求中的非空字段
func applyOverlayUpdates(overlay *model.PublicationOverlay, req *dto.SaveOverlayRequest) {
	if req.Title != nil {
		overlay.Title = strings.TrimSpace(*req.Title)
	}
	if req.PropertyType != nil {
		overlay.PropertyType = *req.PropertyType
	}
	if req.ListingType != nil {
		overlay.ListingType = *req.ListingType
	}
	if req.City != nil {
		overlay.City = *req.City
	}
	if req.AreaSqm != nil {
		overlay.AreaSqm = *req.AreaSqm
	}
	if req.Bedrooms != nil {
		overlay.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		overlay.Bathrooms = *req.Bathrooms
	}
	if req.Description != nil {
		overlay.Description = *req.Description
	}
	if req.Price != nil {
		overlay.PriceDivisor = 100
		overlay.PriceAmount = int64(*req.Price * 100)
	}
	if req.CurrencyCode != nil {
		overlay.CurrencyCode = *req.CurrencyCode
	}
}
