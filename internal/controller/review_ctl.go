package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realty_dev_v1_202608/internal/api/dto"
	"realty_dev_v1_202608/internal/middleware"
	"realty_dev_v1_202608/internal/model"
	"realty_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// ReviewController 管理员审核控制器
type ReviewController struct {
	lifecycle *service.LifecycleService
}

func NewReviewController(lifecycle *service.LifecycleService) *ReviewController {
	return &ReviewController{lifecycle: lifecycle}
}

// ==================== API 方法 ====================

// ListListings 按状态浏览房源
// @Summary 管理员按状态分页浏览房源
// @Tags Review
// @Param status query string false "状态过滤"
// @Success 200 {object} dto.ListingListResponse
// @Router /api/admin/listings [get]
func (ctrl *ReviewController) ListListings(c *gin.Context) {
	var query dto.ListListingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	actor := middleware.GetActor(c)
	listings, total, err := ctrl.lifecycle.ListForReview(c.Request.Context(), actor, &query)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, buildListingList(listings, total, &query))
}

// GetListing 管理员查看房源详情
// @Summary 管理员查看任意房源详情
// @Tags Review
// @Param id path int true "房源ID"
// @Success 200 {object} dto.ListingResponse
// @Router /api/admin/listings/{id} [get]
func (ctrl *ReviewController) GetListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor := middleware.GetActor(c)
	listing, err := ctrl.lifecycle.GetListing(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToListingResponse(listing))
}

// Approve 审核通过
// @Summary 审核通过（pending → approved）
// @Tags Review
// @Param id path int true "房源ID"
// @Param body body dto.TransitionRequest true "版本号"
// @Success 200 {object} dto.ListingResponse
// @Router /api/admin/listings/{id}/approve [post]
func (ctrl *ReviewController) Approve(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	actor := middleware.GetActor(c)
	listing, err := ctrl.lifecycle.Approve(c.Request.Context(), actor, id, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToListingResponse(listing))
}

// Reject 审核驳回
// @Summary 审核驳回（pending → rejected，原因必填）
// @Tags Review
// @Param id path int true "房源ID"
// @Param body body dto.ReasonedTransitionRequest true "原因与版本号"
// @Success 200 {object} dto.ListingResponse
// @Router /api/admin/listings/{id}/reject [post]
func (ctrl *ReviewController) Reject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReasonedTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	actor := middleware.GetActor(c)
	listing, err := ctrl.lifecycle.Reject(c.Request.Context(), actor, id, req.Reason, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToListingResponse(listing))
}

// Revoke 撤回已通过房源
// @Summary 撤回已通过房源（approved → pending，原因必填）
// @Tags Review
// @Param id path int true "房源ID"
// @Param body body dto.ReasonedTransitionRequest true "原因与版本号"
// @Success 200 {object} dto.ListingResponse
// @Router /api/admin/listings/{id}/revoke [post]
func (ctrl *ReviewController) Revoke(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.ReasonedTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	actor := middleware.GetActor(c)
	listing, err := ctrl.lifecycle.Revoke(c.Request.Context(), actor, id, req.Reason, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToListingResponse(listing))
}

// History 审计历史
// @Summary 查询主体的审计历史（时间顺序）
// @Tags Review
// @Param subject_type path string true "主体类型 listing/overlay"
// @Param id path int true "主体ID"
// @Success 200 {array} dto.AuditEventResponse
// @Router /api/admin/audit/{subject_type}/{id} [get]
func (ctrl *ReviewController) History(c *gin.Context) {
	subjectType := c.Param("subject_type")
	if subjectType != model.AuditSubjectListing && subjectType != model.AuditSubjectOverlay {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的主体类型",
		})
		return
	}

	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor := middleware.GetActor(c)
	events, err := ctrl.lifecycle.History(c.Request.Context(), actor, subjectType, id)
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]dto.AuditEventResponse, 0, len(events))
	for i := range events {
		items = append(items, dto.ToAuditEventResponse(&events[i]))
	}
	respondOK(c, http.StatusOK, items)
}
