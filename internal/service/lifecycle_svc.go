package service

import (
	"context"
	"strings"

	"gorm.io/datatypes"

	"realty_dev_v1_202608/internal/api/dto"
	"realty_dev_v1_202608/internal/apperr"
	"realty_dev_v1_202608/internal/model"
	"realty_dev_v1_202608/internal/repository"
)

// ==================== 服务实现 ====================

// LifecycleService 房源生命周期服务
// 负责 draft → pending → approved/rejected 状态机、权限校验与审计落盘。
// 状态写入与审计写入在同一事务内提交。
type LifecycleService struct {
	uow *repository.ListingUnitOfWork
}

// NewLifecycleService 创建生命周期服务
func NewLifecycleService(uow *repository.ListingUnitOfWork) *LifecycleService {
	return &LifecycleService{uow: uow}
}

// ==================== 业主操作 ====================

// CreateListing 业主创建房源，初始状态 draft
func (s *LifecycleService) CreateListing(ctx context.Context, actor model.Actor, req *dto.CreateListingRequest) (*model.PropertyListing, error) {
	listing := &model.PropertyListing{
		OwnerID:      actor.ID,
		Title:        strings.TrimSpace(req.Title),
		PropertyType: req.PropertyType,
		ListingType:  req.ListingType,
		City:         req.City,
		Address:      req.Address,
		AreaSqm:      req.AreaSqm,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		Amenities:    datatypes.JSONSlice[string](req.Amenities),
		Description:  req.Description,
		CurrencyCode: req.CurrencyCode,
		Status:       model.ListingStatusDraft,
		Version:      1,
	}
	if listing.ListingType == "" {
		listing.ListingType = model.ListingTypeSale
	}
	if listing.CurrencyCode == "" {
		listing.CurrencyCode = "USD"
	}
	if req.Price > 0 {
		listing.SetPrice(req.Price)
	}

	if err := s.uow.Listings.Create(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// GetListing 查询房源详情，业主只能看自己的，管理员可看全部
func (s *LifecycleService) GetListing(ctx context.Context, actor model.Actor, listingID int64) (*model.PropertyListing, error) {
	listing, err := s.uow.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && listing.OwnerID != actor.ID {
		return nil, apperr.Permission("只能查看自己的房源")
	}
	return listing, nil
}

// ListOwn 业主按状态查询自己的房源
func (s *LifecycleService) ListOwn(ctx context.Context, actor model.Actor, query *dto.ListListingsQuery) ([]model.PropertyListing, int64, error) {
	return s.uow.Listings.List(ctx, repository.ListingFilter{
		OwnerID:  actor.ID,
		Status:   query.Status,
		City:     query.City,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
}

// EditListing 业主编辑房源，仅 draft/rejected 允许
// rejected 状态下的编辑会回到 draft 并清空驳回原因（见 DESIGN.md 的取舍），
// 该状态转移与字段更新、审计记录同事务提交
func (s *LifecycleService) EditListing(ctx context.Context, actor model.Actor, listingID int64, req *dto.UpdateListingRequest) (*model.PropertyListing, error) {
	listing, err := s.uow.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actor.ID {
		return nil, apperr.Permission("只能编辑自己的房源")
	}
	if !listing.Editable() {
		return nil, apperr.Statef("当前状态 %s 不允许编辑", listing.Status)
	}
	if req.Version != listing.Version {
		return nil, apperr.Conflict("房源已被其他请求修改，请刷新后重试")
	}

	applyListingUpdates(listing, req)

	wasRejected := listing.Status == model.ListingStatusRejected
	if wasRejected {
		listing.Status = model.ListingStatusDraft
		listing.RejectionReason = ""
	}

	err = s.uow.Transaction(ctx, func(uow *repository.ListingUnitOfWork) error {
		if err := uow.Listings.UpdateChecked(ctx, listing); err != nil {
			return err
		}
		if wasRejected {
			return uow.Audits.Append(ctx, &model.AuditEvent{
				SubjectType: model.AuditSubjectListing,
				SubjectID:   listing.ID,
				ActorID:     actor.ID,
				FromState:   model.ListingStatusRejected,
				ToState:     model.ListingStatusDraft,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// Submit 业主提交房源进入审核
func (s *LifecycleService) Submit(ctx context.Context, actor model.Actor, listingID int64, observedVersion int64) (*model.PropertyListing, error) {
	listing, err := s.uow.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != actor.ID {
		return nil, apperr.Permission("只能提交自己的房源")
	}
	if listing.Status != model.ListingStatusDraft {
		return nil, apperr.Statef("当前状态 %s 不允许提交", listing.Status)
	}
	if missing := listing.MissingRequiredFields(); len(missing) > 0 {
		return nil, apperr.Validation("必填字段缺失", missing...)
	}
	if observedVersion != listing.Version {
		return nil, apperr.Conflict("房源已被其他请求修改，请刷新后重试")
	}

	return s.commitTransition(ctx, actor, listing, model.ListingStatusPending, "")
}

// DeleteListing 业主删除房源（软删除），仅 draft/rejected 允许
// 被快照引用的房源不允许删除
func (s *LifecycleService) DeleteListing(ctx context.Context, actor model.Actor, listingID int64) error {
	listing, err := s.uow.Listings.GetByID(ctx, listingID)
	if err != nil {
		return err
	}
	if listing.OwnerID != actor.ID {
		return apperr.Permission("只能删除自己的房源")
	}
	if !listing.Editable() {
		return apperr.Statef("当前状态 %s 不允许删除", listing.Status)
	}

	referenced, err := s.uow.Overlays.ExistsForListing(ctx, listingID)
	if err != nil {
		return err
	}
	if referenced {
		return apperr.State("房源已有对外快照，不允许删除")
	}

	return s.uow.Listings.SoftDelete(ctx, listingID)
}

// ==================== 管理员操作 ====================

// ListForReview 管理员按状态浏览房源
func (s *LifecycleService) ListForReview(ctx context.Context, actor model.Actor, query *dto.ListListingsQuery) ([]model.PropertyListing, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, apperr.Permission("需要管理员权限")
	}
	return s.uow.Listings.List(ctx, repository.ListingFilter{
		Status:   query.Status,
		City:     query.City,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
}

// Approve 审核通过：pending → approved
func (s *LifecycleService) Approve(ctx context.Context, actor model.Actor, listingID int64, observedVersion int64) (*model.PropertyListing, error) {
	listing, err := s.adminLoad(ctx, actor, listingID, model.ListingStatusPending, "审核")
	if err != nil {
		return nil, err
	}
	if observedVersion != listing.Version {
		return nil, apperr.Conflict("房源已被其他请求修改，请刷新后重试")
	}
	return s.commitTransition(ctx, actor, listing, model.ListingStatusApproved, "")
}

// Reject 审核驳回：pending → rejected，原因必填
func (s *LifecycleService) Reject(ctx context.Context, actor model.Actor, listingID int64, reason string, observedVersion int64) (*model.PropertyListing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("驳回原因不能为空", "reason required")
	}
	listing, err := s.adminLoad(ctx, actor, listingID, model.ListingStatusPending, "驳回")
	if err != nil {
		return nil, err
	}
	if observedVersion != listing.Version {
		return nil, apperr.Conflict("房源已被其他请求修改，请刷新后重试")
	}
	listing.RejectionReason = reason
	return s.commitTransition(ctx, actor, listing, model.ListingStatusRejected, reason)
}

// Revoke 撤回已通过房源：approved → pending，原因必填
// 不会触碰快照的上线状态，需要下线必须另行显式 unpublish
func (s *LifecycleService) Revoke(ctx context.Context, actor model.Actor, listingID int64, reason string, observedVersion int64) (*model.PropertyListing, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperr.Validation("撤回原因不能为空", "reason required")
	}
	listing, err := s.adminLoad(ctx, actor, listingID, model.ListingStatusApproved, "撤回")
	if err != nil {
		return nil, err
	}
	if observedVersion != listing.Version {
		return nil, apperr.Conflict("房源已被其他请求修改，请刷新后重试")
	}
	return s.commitTransition(ctx, actor, listing, model.ListingStatusPending, reason)
}

// History 管理员查询主体的审计历史，按时间顺序
func (s *LifecycleService) History(ctx context.Context, actor model.Actor, subjectType string, subjectID int64) ([]model.AuditEvent, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("需要管理员权限")
	}
	return s.uow.Audits.History(ctx, subjectType, subjectID)
}

// ==================== 内部方法 ====================

// adminLoad 管理员操作的公共前置：权限 + 当前状态检查
func (s *LifecycleService) adminLoad(ctx context.Context, actor model.Actor, listingID int64, requiredStatus, action string) (*model.PropertyListing, error) {
	if !actor.IsAdmin() {
		return nil, apperr.Permission("需要管理员权限")
	}
	listing, err := s.uow.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.Status != requiredStatus {
		return nil, apperr.Statef("当前状态 %s 不允许%s", listing.Status, action)
	}
	return listing, nil
}

// commitTransition 提交一次状态转移：转移表检查 + 乐观锁写入 + 审计，同事务
func (s *LifecycleService) commitTransition(ctx context.Context, actor model.Actor, listing *model.PropertyListing, to, reason string) (*model.PropertyListing, error) {
	from := listing.Status
	if !model.CanTransition(from, to) {
		return nil, apperr.Statef("不允许从 %s 转移到 %s", from, to)
	}

	listing.Status = to
	if to != model.ListingStatusRejected {
		listing.RejectionReason = ""
	}

	err := s.uow.Transaction(ctx, func(uow *repository.ListingUnitOfWork) error {
		if err := uow.Listings.UpdateChecked(ctx, listing); err != nil {
			return err
		}
		return uow.Audits.Append(ctx, &model.AuditEvent{
			SubjectType: model.AuditSubjectListing,
			SubjectID:   listing.ID,
			ActorID:     actor.ID,
			FromState:   from,
			ToState:     to,
			Reason:      reason,
		})
	})
	if err != nil {
		// 事务回滚后恢复内存对象，避免调用方拿到未提交的状态
		listing.Status = from
		return nil, err
	}
	return listing, nil
}

// applyListingUpdates 应用编辑请求中的非空字段
func applyListingUpdates(listing *model.PropertyListing, req *dto.UpdateListingRequest) {
	if req.Title != nil {
		listing.Title = strings.TrimSpace(*req.Title)
	}
	if req.PropertyType != nil {
		listing.PropertyType = *req.PropertyType
	}
	if req.ListingType != nil {
		listing.ListingType = *req.ListingType
	}
	if req.City != nil {
		listing.City = *req.City
	}
	if req.Address != nil {
		listing.Address = *req.Address
	}
	if req.AreaSqm != nil {
		listing.AreaSqm = *req.AreaSqm
	}
	if req.Bedrooms != nil {
		listing.Bedrooms = *req.Bedrooms
	}
	if req.Bathrooms != nil {
		listing.Bathrooms = *req.Bathrooms
	}
	if req.Amenities != nil {
		listing.Amenities = datatypes.JSONSlice[string](req.Amenities)
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.Price != nil {
		listing.SetPrice(*req.Price)
	}
	if req.CurrencyCode != nil {
		listing.CurrencyCode = *req.CurrencyCode
	}
}
