package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"realty_dev_v1_202608/internal/controller"
	"realty_dev_v1_202608/internal/middleware"
	"realty_dev_v1_202608/internal/model"
	"realty_dev_v1_202608/internal/repository"
	"realty_dev_v1_202608/internal/router"
	"realty_dev_v1_202608/internal/service"
	"realty_dev_v1_202608/internal/task"
	"realty_dev_v1_202608/pkg/database"
)

// @title Realty Hub API
// @version 1.0
// @description 房源生命周期与对外发布管理
func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 种子管理员账号
	seedAdmin(deps)

	// 4. 启动定时任务
	initTasks(deps)

	// 5. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 6. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	User    repository.UserRepository
	Listing repository.ListingRepository
	Overlay repository.OverlayRepository
	Audit   repository.AuditRepository
	Uow     *repository.ListingUnitOfWork
}

// Services 服务集合
type Services struct {
	User      *service.UserService
	Lifecycle *service.LifecycleService
	Overlay   *service.OverlayService
	Media     *service.MediaService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=realty_admin password=1234 dbname=realty_hub port=5432 sslmode=disable")

	return database.InitDB(dsn,
		// Account
		&model.SysUser{},
		// Listing
		&model.PropertyListing{},
		// Publication
		&model.PublicationOverlay{},
		// Audit
		&model.AuditEvent{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- JWT 配置 --------
	jwtCfg := middleware.DefaultJWTConfig()
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		jwtCfg.SecretKey = secret
	}
	middleware.SetJWTConfig(jwtCfg)

	// -------- Repo 层 --------
	repos := &Repositories{
		User:    repository.NewUserRepository(db),
		Listing: repository.NewListingRepository(db),
		Overlay: repository.NewOverlayRepository(db),
		Audit:   repository.NewAuditRepository(db),
		Uow:     repository.NewListingUnitOfWork(db),
	}

	// -------- 存储 & 媒体服务 --------
	mediaSvc := initMediaService()

	// -------- 业务服务 --------
	services := &Services{
		User:      service.NewUserService(repos.User),
		Lifecycle: service.NewLifecycleService(repos.Uow),
		Overlay:   service.NewOverlayService(repos.Uow, mediaSvc),
		Media:     mediaSvc,
	}

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		User:    controller.NewUserController(services.User),
		Listing: controller.NewListingController(services.Lifecycle),
		Review:  controller.NewReviewController(services.Lifecycle),
		Overlay: controller.NewOverlayController(services.Overlay),
		Public:  controller.NewPublicController(services.Overlay),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// initMediaService 初始化媒体上传服务
func initMediaService() *service.MediaService {
	provider, err := service.NewStorageProvider(&service.StorageConfig{
		Provider:  getEnv("STORAGE_PROVIDER", "s3"),
		Bucket:    getEnv("AWS_BUCKET", ""),
		Region:    getEnv("AWS_REGION", ""),
		AccessKey: getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
		CDNDomain: getEnv("AWS_CDN_DOMAIN", ""),
		BasePath:  getEnv("STORAGE_BASE_PATH", "realty-hub"),
		LocalDir:  getEnv("STORAGE_LOCAL_DIR", "uploads"),
		LocalBase: getEnv("STORAGE_LOCAL_BASE", "/uploads"),
	})
	if err != nil {
		log.Fatalf("存储服务初始化失败: %v", err)
	}
	return service.NewMediaService(provider)
}

// seedAdmin 确保管理员账号存在
func seedAdmin(deps *Dependencies) {
	username := getEnv("ADMIN_USERNAME", "")
	password := getEnv("ADMIN_PASSWORD", "")
	if username == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := deps.Services.User.EnsureAdmin(ctx, username, password); err != nil {
		log.Fatalf("管理员账号初始化失败: %v", err)
	}
	log.Printf("管理员账号已就绪: %s", username)
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	cleanupTask := task.NewCleanupTask(deps.Repos.Listing)
	cleanupTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	// 优雅关闭
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
