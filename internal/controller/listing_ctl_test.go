package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"realty_dev_v1_202608/internal/middleware"
	"realty_dev_v1_202608/internal/model"
	"realty_dev_v1_202608/internal/repository"
	"realty_dev_v1_202608/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试辅助函数 ====================

func setupControllerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(
		&model.PropertyListing{},
		&model.PublicationOverlay{},
		&model.AuditEvent{},
	); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

// fakeAuth 代替 JWT 中间件，把指定用户写入 Context
func fakeAuth(userID int64, username, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextKeyUserID, userID)
		c.Set(middleware.ContextKeyUsername, username)
		c.Set(middleware.ContextKeyRole, role)
		c.Next()
	}
}

func newListingTestRouter(t *testing.T) *gin.Engine {
	db := setupControllerTestDB(t)
	uow := repository.NewListingUnitOfWork(db)
	ctrl := NewListingController(service.NewLifecycleService(uow))

	r := gin.New()
	group := r.Group("/api/listings", fakeAuth(1, "owner1", model.RoleOwner))
	{
		group.POST("", ctrl.CreateListing)
		group.GET("", ctrl.ListOwn)
		group.GET("/:id", ctrl.GetListing)
		group.PATCH("/:id", ctrl.UpdateListing)
		group.POST("/:id/submit", ctrl.SubmitListing)
		group.DELETE("/:id", ctrl.DeleteListing)
	}
	return r
}

func performRequest(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		jsonBytes, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(jsonBytes)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, _ := http.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var resp map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("解析响应失败: %v, body = %s", err, w.Body.String())
	}
	return resp
}

// ==================== 创建 / 查询测试 ====================

func TestListingController_CreateAndGet(t *testing.T) {
	router := newListingTestRouter(t)

	w := performRequest(router, "POST", "/api/listings", map[string]interface{}{
		"title":         "海景公寓",
		"property_type": "apartment",
		"city":          "Qingdao",
		"price":         2800000,
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "draft", data["status"])
	assert.Equal(t, float64(1), data["version"])

	// 详情
	w = performRequest(router, "GET", "/api/listings/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestListingController_GetListing_InvalidID(t *testing.T) {
	router := newListingTestRouter(t)

	for _, path := range []string{"/api/listings/abc", "/api/listings/0", "/api/listings/-1"} {
		w := performRequest(router, "GET", path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "path: %s", path)
	}
}

func TestListingController_GetListing_NotFound(t *testing.T) {
	router := newListingTestRouter(t)

	w := performRequest(router, "GET", "/api/listings/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, "not_found", resp["kind"])
}

// ==================== 提交测试 ====================

func TestListingController_Submit(t *testing.T) {
	router := newListingTestRouter(t)

	performRequest(router, "POST", "/api/listings", map[string]interface{}{
		"title":         "学区房",
		"property_type": "house",
		"city":          "Nanjing",
		"price":         5200000,
	})

	// 缺 version 参数绑定失败
	w := performRequest(router, "POST", "/api/listings/1/submit", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, "POST", "/api/listings/1/submit", map[string]interface{}{"version": 1})
	assert.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])

	// pending 状态不允许再次提交
	w = performRequest(router, "POST", "/api/listings/1/submit", map[string]interface{}{"version": 2})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "state", decodeBody(t, w)["kind"])
}

func TestListingController_Submit_MissingFields(t *testing.T) {
	router := newListingTestRouter(t)

	// 缺价格
	performRequest(router, "POST", "/api/listings", map[string]interface{}{
		"title":         "未完成房源",
		"property_type": "plot",
		"city":          "Chengdu",
	})

	w := performRequest(router, "POST", "/api/listings/1/submit", map[string]interface{}{"version": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	resp := decodeBody(t, w)
	assert.Equal(t, "validation", resp["kind"])
	assert.Contains(t, resp["details"], "price")
}

// ==================== 编辑测试 ====================

func TestListingController_Update_VersionConflict(t *testing.T) {
	router := newListingTestRouter(t)

	performRequest(router, "POST", "/api/listings", map[string]interface{}{
		"title":         "待编辑房源",
		"property_type": "apartment",
		"city":          "Wuhan",
		"price":         1800000,
	})

	w := performRequest(router, "PATCH", "/api/listings/1", map[string]interface{}{
		"title":   "第一次编辑",
		"version": 1,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	// 携带过期版本
	w = performRequest(router, "PATCH", "/api/listings/1", map[string]interface{}{
		"title":   "第二次编辑",
		"version": 1,
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "conflict", decodeBody(t, w)["kind"])
}

// ==================== 删除测试 ====================

func TestListingController_Delete(t *testing.T) {
	router := newListingTestRouter(t)

	performRequest(router, "POST", "/api/listings", map[string]interface{}{
		"title":         "待删除房源",
		"property_type": "apartment",
		"city":          "Xiamen",
		"price":         900000,
	})

	w := performRequest(router, "DELETE", "/api/listings/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, "GET", "/api/listings/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
