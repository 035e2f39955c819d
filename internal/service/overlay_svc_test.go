package service

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"realty_dev_v1_202608/internal/api/dto"
	"realty_dev_v1_202608/internal/apperr"
	"realty_dev_v1_202608/internal/model"
	"realty_dev_v1_202608/internal/repository"
)

// ==================== Mock 实现 ====================

type mockMedia struct {
	uploadFn func(ctx context.Context, files []FileUpload) ([]string, error)
	calls    int
}

func (m *mockMedia) Upload(ctx context.Context, files []FileUpload) ([]string, error) {
	m.calls++
	if m.uploadFn != nil {
		return m.uploadFn(ctx, files)
	}
	urls := make([]string, len(files))
	for i, f := range files {
		if f.SourceURL != "" {
			urls[i] = f.SourceURL
			continue
		}
		urls[i] = fmt.Sprintf("https://cdn.example.com/photo-%d-%d.jpg", m.calls, i)
	}
	return urls, nil
}

// ==================== 测试辅助函数 ====================

func newOverlayTestService(t *testing.T) (*OverlayService, *LifecycleService, *gorm.DB, *mockMedia) {
	db := setupServiceTestDB(t)
	uow := repository.NewListingUnitOfWork(db)
	media := &mockMedia{}
	return NewOverlayService(uow, media), NewLifecycleService(uow), db, media
}

// newApprovedListing 创建并走完审核流程的房源
func newApprovedListing(t *testing.T, lifecycle *LifecycleService) *model.PropertyListing {
	listing := createCompleteDraft(t, lifecycle)
	return submitAndApprove(t, lifecycle, listing)
}

// saveThreePhotos 通过侧载 URL 保存三张照片，使快照满足上线条件
func saveThreePhotos(t *testing.T, svc *OverlayService, overlay *model.PublicationOverlay) *model.PublicationOverlay {
	overlay, err := svc.SaveDraft(context.Background(), testAdmin, overlay.ListingID, &dto.SaveOverlayRequest{
		SideLoadURLs: []string{
			"https://photos.example.com/1.jpg",
			"https://photos.example.com/2.jpg",
			"https://photos.example.com/3.jpg",
		},
		Version: overlay.Version,
	}, nil)
	if err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}
	return overlay
}

// ==================== 快照创建测试 ====================

func TestOverlayService_GetOrCreateSnapshot(t *testing.T) {
	svc, lifecycle, _, _ := newOverlayTestService(t)
	ctx := context.Background()

	listing := newApprovedListing(t, lifecycle)

	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}
	if overlay.Title != listing.Title {
		t.Errorf("Title = %s, want %s", overlay.Title, listing.Title)
	}
	if len(overlay.Photos) != 0 {
		t.Errorf("新建快照照片数 = %d, want 0", len(overlay.Photos))
	}
	if overlay.IsLive {
		t.Error("新建快照不应处于上线状态")
	}

	// 重复调用返回同一条记录
	again, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("第二次 GetOrCreateSnapshot() error = %v", err)
	}
	if again.ID != overlay.ID {
		t.Errorf("重复调用返回了不同记录: %d vs %d", again.ID, overlay.ID)
	}
}

func TestOverlayService_Snapshot_NoResync(t *testing.T) {
	svc, lifecycle, db, _ := newOverlayTestService(t)
	ctx := context.Background()

	listing := createCompleteDraft(t, lifecycle)
	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}
	originalTitle := overlay.Title

	// 业主随后修改房源标题
	newTitle := "业主改过的标题"
	if _, err := lifecycle.EditListing(ctx, testOwner, listing.ID, &dto.UpdateListingRequest{
		Title:   &newTitle,
		Version: listing.Version,
	}); err != nil {
		t.Fatalf("EditListing() error = %v", err)
	}

	// 快照绝不回同步
	overlay, err = svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}
	if overlay.Title != originalTitle {
		t.Errorf("快照标题被回同步: %s", overlay.Title)
	}

	var stored model.PublicationOverlay
	db.Where("listing_id = ?", listing.ID).First(&stored)
	if stored.Title != originalTitle {
		t.Errorf("持久化快照标题 = %s, want %s", stored.Title, originalTitle)
	}
}

func TestOverlayService_GetOrCreateSnapshot_NotAdmin(t *testing.T) {
	svc, lifecycle, _, _ := newOverlayTestService(t)

	listing := createCompleteDraft(t, lifecycle)
	_, err := svc.GetOrCreateSnapshot(context.Background(), testOwner, listing.ID)
	if !apperr.IsKind(err, apperr.KindPermission) {
		t.Errorf("GetOrCreateSnapshot() error = %v, want PermissionError", err)
	}
}

// ==================== 保存草稿测试 ====================

func TestOverlayService_SaveDraft_SnapshotMissing(t *testing.T) {
	svc, lifecycle, _, _ := newOverlayTestService(t)

	listing := createCompleteDraft(t, lifecycle)
	_, err := svc.SaveDraft(context.Background(), testAdmin, listing.ID, &dto.SaveOverlayRequest{Version: 1}, nil)
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("SaveDraft() error = %v, want StateError", err)
	}
}

func TestOverlayService_SaveDraft_AppendPhotos(t *testing.T) {
	svc, lifecycle, _, _ := newOverlayTestService(t)
	ctx := context.Background()

	listing := newApprovedListing(t, lifecycle)
	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}

	overlay = saveThreePhotos(t, svc, overlay)
	if len(overlay.Photos) != 3 {
		t.Fatalf("len(Photos) = %d, want 3", len(overlay.Photos))
	}

	// 第二批追加在末尾，不重排已有照片
	overlay, err = svc.SaveDraft(ctx, testAdmin, listing.ID, &dto.SaveOverlayRequest{
		Version: overlay.Version,
	}, []FileUpload{
		{Data: []byte("fake-jpeg"), Filename: "back-yard.jpg", ContentType: "image/jpeg"},
	})
	if err != nil {
		t.Fatalf("SaveDraft() error = %v", err)
	}
	if len(overlay.Photos) != 4 {
		t.Fatalf("len(Photos) = %d, want 4", len(overlay.Photos))
	}
	if overlay.Photos[0] != "https://photos.example.com/1.jpg" {
		t.Errorf("Photos[0] = %s, 原有顺序被打乱", overlay.Photos[0])
	}
}

func TestOverlayService_SaveDraft_UploadFailure(t *testing.T) {
	svc, lifecycle, db, media := newOverlayTestService(t)
	ctx := context.Background()

	listing := newApprovedListing(t, lifecycle)
	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}
	overlay = saveThreePhotos(t, svc, overlay)

	// 整批上传失败
	media.uploadFn = func(ctx context.Context, files []FileUpload) ([]string, error) {
		return nil, apperr.Upload("第 2 个文件下载失败")
	}

	newTitle := "不应落盘的标题"
	_, err = svc.SaveDraft(ctx, testAdmin, listing.ID, &dto.SaveOverlayRequest{
		Title:        &newTitle,
		SideLoadURLs: []string{"https://photos.example.com/broken.jpg"},
		Version:      overlay.Version,
	}, nil)
	if !apperr.IsKind(err, apperr.KindUpload) {
		t.Fatalf("SaveDraft() error = %v, want UploadError", err)
	}

	// 快照保持原样：照片、字段、版本都不变
	var stored model.PublicationOverlay
	db.Where("listing_id = ?", listing.ID).First(&stored)
	if len(stored.Photos) != 3 {
		t.Errorf("len(Photos) = %d, want 3", len(stored.Photos))
	}
	if stored.Title == newTitle {
		t.Error("上传失败后字段不应落盘")
	}
	if stored.Version != overlay.Version {
		t.Errorf("Version = %d, want %d", stored.Version, overlay.Version)
	}
}

func TestOverlayService_SaveDraft_StaleVersion(t *testing.T) {
	svc, lifecycle, _, _ := newOverlayTestService(t)
	ctx := context.Background()

	listing := newApprovedListing(t, lifecycle)
	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}
	observed := overlay.Version

	saveThreePhotos(t, svc, overlay)

	// 基于过期版本重放
	_, err = svc.SaveDraft(ctx, testAdmin, listing.ID, &dto.SaveOverlayRequest{
		Version: observed,
	}, nil)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Errorf("旧版本 SaveDraft() error = %v, want ConflictError", err)
	}
}

// ==================== 上线 / 下线测试 ====================

func TestOverlayService_Publish_UnmetConditions(t *testing.T) {
	svc, lifecycle, db, _ := newOverlayTestService(t)
	ctx := context.Background()

	listing := newApprovedListing(t, lifecycle)
	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}

	// 照片为 0，上线必须失败并点名缺什么
	_, err = svc.Publish(ctx, testAdmin, listing.ID, overlay.Version)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("Publish() error = %v, want ValidationError", err)
	}
	e := apperr.AsError(err)
	if len(e.Details) == 0 {
		t.Error("上线失败应列出未满足的条件")
	}

	var stored model.PublicationOverlay
	db.Where("listing_id = ?", listing.ID).First(&stored)
	if stored.IsLive {
		t.Error("校验失败后不应上线")
	}
}

func TestOverlayService_PublishFlow(t *testing.T) {
	svc, lifecycle, db, _ := newOverlayTestService(t)
	ctx := context.Background()

	listing := newApprovedListing(t, lifecycle)
	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}
	overlay = saveThreePhotos(t, svc, overlay)

	overlay, err = svc.Publish(ctx, testAdmin, listing.ID, overlay.Version)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !overlay.IsLive {
		t.Error("IsLive = false, want true")
	}
	if overlay.PublishedAt == nil {
		t.Error("PublishedAt 应已设置")
	}

	// 审计 hidden → live
	var event model.AuditEvent
	db.Where("subject_type = ?", model.AuditSubjectOverlay).Last(&event)
	if event.FromState != model.OverlayStateHidden || event.ToState != model.OverlayStateLive {
		t.Errorf("审计 %s → %s, want hidden → live", event.FromState, event.ToState)
	}

	// 重复上线
	_, err = svc.Publish(ctx, testAdmin, listing.ID, overlay.Version)
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("重复 Publish() error = %v, want StateError", err)
	}
}

func TestOverlayService_Unpublish(t *testing.T) {
	svc, lifecycle, db, _ := newOverlayTestService(t)
	ctx := context.Background()

	listing := newApprovedListing(t, lifecycle)
	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}
	overlay = saveThreePhotos(t, svc, overlay)
	overlay, err = svc.Publish(ctx, testAdmin, listing.ID, overlay.Version)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	publishedAt := overlay.PublishedAt

	overlay, err = svc.Unpublish(ctx, testAdmin, listing.ID, overlay.Version)
	if err != nil {
		t.Fatalf("Unpublish() error = %v", err)
	}
	if overlay.IsLive {
		t.Error("IsLive = true, want false")
	}
	// 下线保留历史上线时间
	if overlay.PublishedAt == nil || !overlay.PublishedAt.Equal(*publishedAt) {
		t.Errorf("PublishedAt = %v, want %v", overlay.PublishedAt, publishedAt)
	}

	var event model.AuditEvent
	db.Where("subject_type = ?", model.AuditSubjectOverlay).Last(&event)
	if event.FromState != model.OverlayStateLive || event.ToState != model.OverlayStateHidden {
		t.Errorf("审计 %s → %s, want live → hidden", event.FromState, event.ToState)
	}

	// 未上线状态不能再下线
	_, err = svc.Unpublish(ctx, testAdmin, listing.ID, overlay.Version)
	if !apperr.IsKind(err, apperr.KindState) {
		t.Errorf("重复 Unpublish() error = %v, want StateError", err)
	}
}

// ==================== 移除照片测试 ====================

func TestOverlayService_RemovePhoto(t *testing.T) {
	svc, lifecycle, _, _ := newOverlayTestService(t)
	ctx := context.Background()

	listing := newApprovedListing(t, lifecycle)
	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}
	overlay = saveThreePhotos(t, svc, overlay)

	// 不在列表中的 URL
	_, err = svc.RemovePhoto(ctx, testAdmin, listing.ID, "https://photos.example.com/404.jpg", overlay.Version)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("移除不存在照片 error = %v, want ValidationError", err)
	}

	// 移除中间一张，剩余顺序不变
	overlay, err = svc.RemovePhoto(ctx, testAdmin, listing.ID, "https://photos.example.com/2.jpg", overlay.Version)
	if err != nil {
		t.Fatalf("RemovePhoto() error = %v", err)
	}
	if len(overlay.Photos) != 2 {
		t.Fatalf("len(Photos) = %d, want 2", len(overlay.Photos))
	}
	if overlay.Photos[0] != "https://photos.example.com/1.jpg" ||
		overlay.Photos[1] != "https://photos.example.com/3.jpg" {
		t.Errorf("Photos = %v, 顺序被破坏", overlay.Photos)
	}
}

func TestOverlayService_RemovePhoto_LiveGuard(t *testing.T) {
	svc, lifecycle, db, _ := newOverlayTestService(t)
	ctx := context.Background()

	listing := newApprovedListing(t, lifecycle)
	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}
	overlay = saveThreePhotos(t, svc, overlay)
	overlay, err = svc.Publish(ctx, testAdmin, listing.ID, overlay.Version)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	// 上线中恰好 3 张，移除会破坏下限
	_, err = svc.RemovePhoto(ctx, testAdmin, listing.ID, "https://photos.example.com/1.jpg", overlay.Version)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("上线下限 RemovePhoto() error = %v, want ValidationError", err)
	}

	var stored model.PublicationOverlay
	db.Where("listing_id = ?", listing.ID).First(&stored)
	if len(stored.Photos) != 3 {
		t.Errorf("len(Photos) = %d, want 3", len(stored.Photos))
	}
}

// ==================== 公开读取 / 解耦测试 ====================

func TestOverlayService_PublicOverlay(t *testing.T) {
	svc, lifecycle, _, _ := newOverlayTestService(t)
	ctx := context.Background()

	listing := newApprovedListing(t, lifecycle)
	overlay, err := svc.GetOrCreateSnapshot(ctx, testAdmin, listing.ID)
	if err != nil {
		t.Fatalf("GetOrCreateSnapshot() error = %v", err)
	}
	overlay = saveThreePhotos(t, svc, overlay)

	// 未上线对公开侧是 NotFound
	_, err = svc.PublicOverlay(ctx, listing.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("未上线公开读取 error = %v, want NotFound", err)
	}

	overlay, err = svc.Publish(ctx, testAdmin, listing.ID, overlay.Version)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	resp, err := svc.PublicOverlay(ctx, listing.ID)
	if err != nil {
		t.Fatalf("PublicOverlay() error = %v", err)
	}
	if len(resp.Photos) != 3 {
		t.Errorf("len(Photos) = %d, want 3", len(resp.Photos))
	}

	// 房源侧撤回不影响已上线快照，需要下线必须显式 unpublish
	if _, err := lifecycle.Revoke(ctx, testAdmin, listing.ID, "复核资质", listing.Version); err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if _, err := svc.PublicOverlay(ctx, listing.ID); err != nil {
		t.Errorf("撤回后公开读取 error = %v, 快照应保持上线", err)
	}

	overlay, err = svc.Unpublish(ctx, testAdmin, listing.ID, overlay.Version)
	if err != nil {
		t.Fatalf("Unpublish() error = %v", err)
	}
	_, err = svc.PublicOverlay(ctx, listing.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("下线后公开读取 error = %v, want NotFound", err)
	}
}
