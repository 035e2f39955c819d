package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"realty_dev_v1_202608/internal/api/dto"
	"realty_dev_v1_202608/internal/middleware"
	"realty_dev_v1_202608/internal/service"
)

// ==================== 控制器 ====================

// UserController 账号控制器
type UserController struct {
	userService *service.UserService
}

func NewUserController(userService *service.UserService) *UserController {
	return &UserController{userService: userService}
}

// ==================== API 方法 ====================

// Register 业主注册
// @Summary 业主注册
// @Tags Auth
// @Accept json
// @Param body body dto.RegisterRequest true "注册请求"
// @Success 201 {object} dto.UserInfo
// @Router /api/auth/register [post]
func (ctrl *UserController) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	info, err := ctrl.userService.Register(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, info)
}

// Login 登录
// @Summary 登录换取 Token 对
// @Tags Auth
// @Accept json
// @Param body body dto.LoginRequest true "登录请求"
// @Success 200 {object} dto.LoginResponse
// @Router /api/auth/login [post]
func (ctrl *UserController) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	resp, err := ctrl.userService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, resp)
}

// RefreshToken 刷新 Token
// @Summary 用 Refresh Token 换取新 Token 对
// @Tags Auth
// @Accept json
// @Param body body dto.RefreshTokenRequest true "刷新请求"
// @Success 200 {object} dto.RefreshTokenResponse
// @Router /api/auth/refresh [post]
func (ctrl *UserController) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	resp, err := ctrl.userService.RefreshToken(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, resp)
}

// ChangePassword 修改密码
// @Summary 修改当前账号密码
// @Tags Auth
// @Accept json
// @Param body body dto.ChangePasswordRequest true "修改密码请求"
// @Success 200 {object} map[string]interface{}
// @Router /api/auth/password [put]
func (ctrl *UserController) ChangePassword(c *gin.Context) {
	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    400,
			"message": "参数错误: " + err.Error(),
		})
		return
	}

	userID := middleware.GetUserID(c)
	if err := ctrl.userService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, nil)
}
