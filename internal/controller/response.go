package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"realty_dev_v1_202608/internal/apperr"
)

// ==================== 统一响应 ====================

// respondOK 成功响应
func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"code":    0,
		"message": "success",
		"data":    data,
	})
}

// respondError 业务错误响应，按错误类别映射状态码
// 响应体携带 kind + details，前端可直接展示每一条失败项
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	if e := apperr.AsError(err); e != nil {
		c.JSON(status, gin.H{
			"code":    status,
			"kind":    string(e.Kind),
			"message": e.Message,
			"details": e.Details,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    500,
		"message": "内部错误: " + err.Error(),
	})
}

// parseIDParam 解析路径中的 ID 参数
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	idStr := c.Param(name)
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "无效的 " + name,
		})
		return 0, false
	}
	return id, true
}
