package controller

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"realty_dev_v1_202608/internal/api/dto"
	"realty_dev_v1_202608/internal/middleware"
	"realty_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// OverlayController 管理员快照策划控制器
type OverlayController struct {
	overlay *service.OverlayService
}

func NewOverlayController(overlay *service.OverlayService) *OverlayController {
	return &OverlayController{overlay: overlay}
}

// ==================== API 方法 ====================

// GetOrCreate 获取或创建快照
// @Summary 获取快照，不存在时从房源当前字段克隆创建
// @Tags Overlay
// @Param id path int true "房源ID"
// @Success 200 {object} dto.OverlayResponse
// @Router /api/admin/overlays/{id} [get]
func (ctrl *OverlayController) GetOrCreate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	actor := middleware.GetActor(c)
	overlay, err := ctrl.overlay.GetOrCreateSnapshot(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToOverlayResponse(overlay))
}

// SaveDraft 保存快照草稿
// @Summary 保存快照草稿（multipart：字段 + photos 文件 + side_load_urls）
// @Tags Overlay
// @Accept multipart/form-data
// @Param id path int true "房源ID"
// @Success 200 {object} dto.OverlayResponse
// @Router /api/admin/overlays/{id} [put]
func (ctrl *OverlayController) SaveDraft(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.SaveOverlayRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	uploads, err := readPhotoUploads(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "读取上传文件失败: " + err.Error(),
		})
		return
	}

	actor := middleware.GetActor(c)
	overlay, err := ctrl.overlay.SaveDraft(c.Request.Context(), actor, id, &req, uploads)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToOverlayResponse(overlay))
}

// Publish 上线
// @Summary 上线快照（重新校验 ≥3 照片、标题、价格）
// @Tags Overlay
// @Param id path int true "房源ID"
// @Param body body dto.TransitionRequest true "版本号"
// @Success 200 {object} dto.OverlayResponse
// @Router /api/admin/overlays/{id}/publish [post]
func (ctrl *OverlayController) Publish(c *gin.Context) {
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
	overlay, err := ctrl.overlay.Publish(c.Request.Context(), actor, id, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToOverlayResponse(overlay))
}

// Unpublish 下线
// @Summary 显式下线快照，publishedAt 保留
// @Tags Overlay
// @Param id path int true "房源ID"
// @Param body body dto.TransitionRequest true "版本号"
// @Success 200 {object} dto.OverlayResponse
// @Router /api/admin/overlays/{id}/unpublish [post]
func (ctrl *OverlayController) Unpublish(c *gin.Context) {
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
	overlay, err := ctrl.overlay.Unpublish(c.Request.Context(), actor, id, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToOverlayResponse(overlay))
}

// RemovePhoto 移除照片
// @Summary 按 URL 精确移除一张照片
// @Tags Overlay
// @Param id path int true "房源ID"
// @Param body body dto.RemovePhotoRequest true "URL 与版本号"
// @Success 200 {object} dto.OverlayResponse
// @Router /api/admin/overlays/{id}/photos [delete]
func (ctrl *OverlayController) RemovePhoto(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.RemovePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	actor := middleware.GetActor(c)
	overlay, err := ctrl.overlay.RemovePhoto(c.Request.Context(), actor, id, req.URL, req.Version)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, dto.ToOverlayResponse(overlay))
}

// ==================== 内部方法 ====================

// readPhotoUploads 读取 multipart 中的 photos 文件
func readPhotoUploads(c *gin.Context) ([]service.FileUpload, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}

	files := form.File["photos"]
	uploads := make([]service.FileUpload, 0, len(files))

	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(io.LimitReader(f, maxPhotoSize+1))
		f.Close()
		if err != nil {
			return nil, err
		}
		if int64(len(data)) > maxPhotoSize {
			return nil, &photoTooLargeError{filename: fh.Filename}
		}

		uploads = append(uploads, service.FileUpload{
			Data:        data,
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
		})
	}

	return uploads, nil
}

// 单张照片大小上限 10MB
const maxPhotoSize = 10 << 20

type photoTooLargeError struct {
	filename string
}

func (e *photoTooLargeError) Error() string {
	return "照片 " + e.filename + " 超过 " + strconv.Itoa(maxPhotoSize>>20) + "MB 上限"
}
