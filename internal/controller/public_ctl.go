package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realty_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// PublicController 公开只读控制器
type PublicController struct {
	overlay *service.OverlayService
}

func NewPublicController(overlay *service.OverlayService) *PublicController {
	return &PublicController{overlay: overlay}
}

// ==================== API 方法 ====================

// GetListing 公开房源详情
// @Summary 公开读取上线中的房源快照；不存在或未上线统一 404
// @Tags Public
// @Param id path int true "房源ID"
// @Success 200 {object} dto.PublicOverlayResponse
// @Router /api/public/listings/{id} [get]
func (ctrl *PublicController) GetListing(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	resp, err := ctrl.overlay.PublicOverlay(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, resp)
}
