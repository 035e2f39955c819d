package router

import (
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"realty_dev_v1_202608/internal/controller"
	"realty_dev_v1_202608/internal/middleware"

	_ "realty_dev_v1_202608/docs"
)

// Controllers 控制器集合
type Controllers struct {
	User    *controller.UserController
	Listing *controller.ListingController
	Review  *controller.ReviewController
	Overlay *controller.OverlayController
	Public  *controller.PublicController
}

// SetupRouter 注册所有路由
func SetupRouter(ctl *Controllers) *gin.Engine {
	r := gin.Default()

	// Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	{
		// auth 鉴权组
		auth := api.Group("/auth")
		{
			auth.POST("/register", ctl.User.Register)
			auth.POST("/login", ctl.User.Login)
			auth.POST("/refresh", ctl.User.RefreshToken)
			auth.PUT("/password", middleware.JWTAuth(), ctl.User.ChangePassword)
		}

		// 业主侧房源管理
		listings := api.Group("/listings", middleware.JWTAuth())
		{
			listings.POST("", ctl.Listing.CreateListing)
			listings.GET("", ctl.Listing.ListOwn)
			listings.GET("/:id", ctl.Listing.GetListing)
			listings.PATCH("/:id", ctl.Listing.UpdateListing)
			listings.DELETE("/:id", ctl.Listing.DeleteListing)
			listings.POST("/:id/submit", ctl.Listing.SubmitListing)
		}

		// 管理端：审核 + 快照策划 + 审计
		admin := api.Group("/admin", middleware.JWTAuth(), middleware.RequireAdmin())
		{
			admin.GET("/listings", ctl.Review.ListListings)
			admin.GET("/listings/:id", ctl.Review.GetListing)
			admin.POST("/listings/:id/approve", ctl.Review.Approve)
			admin.POST("/listings/:id/reject", ctl.Review.Reject)
			admin.POST("/listings/:id/revoke", ctl.Review.Revoke)

			admin.GET("/overlays/:id", ctl.Overlay.GetOrCreate)
			admin.PUT("/overlays/:id", ctl.Overlay.SaveDraft)
			admin.POST("/overlays/:id/publish", ctl.Overlay.Publish)
			admin.POST("/overlays/:id/unpublish", ctl.Overlay.Unpublish)
			admin.DELETE("/overlays/:id/photos", ctl.Overlay.RemovePhoto)

			admin.GET("/audit/:subject_type/:id", ctl.Review.History)
		}

		// 公开只读，匿名访问 + 限流
		public := api.Group("/public", middleware.PublicRateLimit(time.Minute, 120))
		{
			public.GET("/listings/:id", ctl.Public.GetListing)
		}
	}

	return r
}
