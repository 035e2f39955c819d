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

// ListingController 业主侧房源控制器
type ListingController struct {
	lifecycle *service.LifecycleService
}

func NewListingController(lifecycle *service.LifecycleService) *ListingController {
	return &ListingController{lifecycle: lifecycle}
}

// ==================== API 方法 ====================

// CreateListing 创建房源
// @Summary 创建房源（初始状态 draft）
// @Tags Listing
// @Accept json
// @Produce json
// @Param body body dto.CreateListingRequest true "创建请求"
// @Success 201 {object} dto.ListingResponse
// @Router /api/listings [post]
func (ctrl *ListingController) CreateListing(c *gin.Context) {
	var req dto.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	actor := middleware.GetActor(c)
	listing, err := ctrl.lifecycle.CreateListing(c.Request.Context(), actor, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, dto.ToListingResponse(listing))
}

// GetListing 获取房源详情
// @Summary 获取自己的房源详情
// @Tags Listing
// @Param id path int true "房源ID"
// @Success 200 {object} dto.ListingResponse
// @Router /api/listings/{id} [get]
func (ctrl *ListingController) GetListing(c *gin.Context) {
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

// ListOwn 查询自己的房源列表
// @Summary 按状态分页查询自己的房源
// @Tags Listing
// @Param status query string false "状态过滤"
// @Success 200 {object} dto.ListingListResponse
// @Router /api/listings [get]
func (ctrl *ListingController) ListOwn(c *gin.Context) {
	var query dto.ListListingsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	actor := middleware.GetActor(c)
	listings, total, err := ctrl.lifecycle.ListOwn(c.Request.Context(), actor, &query)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, buildListingList(listings, total, &query))
}

// UpdateListing 编辑房源
// @Summary 编辑房源（draft/rejected 状态）
// @Tags Listing
// @Accept json
// @Param id path int true "房源ID"
// @Param body body dto.UpdateListingRequest true "更新内容"
// @Success 200 {object} dto.ListingResponse
// @Router /api/listings/{id} [patch]
func (ctrl *ListingController) UpdateListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	actor := middleware.GetActor(c)
	listing, err := ctrl.lifecycle.EditListing(c.Request.Context(), actor, id, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToListingResponse(listing))
}

// SubmitListing 提交审核
// @Summary 提交房源进入审核（draft → pending）
// @Tags Listing
// @Param id path int true "房源ID"
// @Param body body dto.TransitionRequest true "版本号"
// @Success 200 {object} dto.ListingResponse
// @Router /api/listings/{id}/submit [post]
func (ctrl *ListingController) SubmitListing(c *gin.Context) {
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
	listing, err := ctrl.lifecycle.Submit(c.Request.Context(), actor, id, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToListingResponse(listing))
}

// DeleteListing 删除房源
// @Summary 删除房源（软删除，draft/rejected 且无快照引用）
// @Tags Listing
// @Param id path int true "房源ID"
// @Success 200 {object} map[string]interface{}
// @Router /api/listings/{id} [delete]
func (ctrl *ListingController) DeleteListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor := middleware.GetActor(c)
	if err := ctrl.lifecycle.DeleteListing(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, nil)
}

// ==================== 内部方法 ====================

func buildListingList(listings []model.PropertyListing, total int64, query *dto.ListListingsQuery) dto.ListingListResponse {
	items := make([]dto.ListingResponse, 0, len(listings))
	for i := range listings {
		items = append(items, dto.ToListingResponse(&listings[i]))
	}

	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}

	return dto.ListingListResponse{
		Items:    items,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}
}
