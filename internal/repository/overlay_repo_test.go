package repository

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"realty_dev_v1_202608/internal/apperr"
	"realty_dev_v1_202608/internal/model"
)

// ==================== 查询语义测试 ====================

func TestOverlayRepo_GetByListingID_Absent(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOverlayRepository(db)

	// 尚无快照是正常分支，不是错误
	overlay, err := repo.GetByListingID(context.Background(), 123)
	if err != nil {
		t.Fatalf("GetByListingID() error = %v", err)
	}
	if overlay != nil {
		t.Errorf("overlay = %v, want nil", overlay)
	}
}

func TestOverlayRepo_GetLiveByListingID(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOverlayRepository(db)
	ctx := context.Background()

	hidden := &model.PublicationOverlay{
		ListingID: 1,
		Title:     "未上线快照",
		Photos:    datatypes.JSONSlice[string]{"a.jpg"},
		Version:   1,
	}
	if err := repo.Create(ctx, hidden); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 存在但未上线，与完全不存在同样表现为 NotFound
	_, err := repo.GetLiveByListingID(ctx, 1)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("未上线查询 error = %v, want NotFound", err)
	}
	_, err = repo.GetLiveByListingID(ctx, 999)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("不存在查询 error = %v, want NotFound", err)
	}

	db.Model(hidden).Update("is_live", true)
	got, err := repo.GetLiveByListingID(ctx, 1)
	if err != nil {
		t.Fatalf("上线后查询 error = %v", err)
	}
	if got.Title != "未上线快照" {
		t.Errorf("Title = %s", got.Title)
	}
}

func TestOverlayRepo_UpdateChecked_Conflict(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOverlayRepository(db)
	ctx := context.Background()

	overlay := &model.PublicationOverlay{
		ListingID: 7,
		Photos:    datatypes.JSONSlice[string]{},
		Version:   1,
	}
	if err := repo.Create(ctx, overlay); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first := *overlay
	second := *overlay

	first.Photos = datatypes.JSONSlice[string]{"a.jpg"}
	if err := repo.UpdateChecked(ctx, &first); err != nil {
		t.Fatalf("第一次 UpdateChecked() error = %v", err)
	}

	second.Photos = datatypes.JSONSlice[string]{"b.jpg"}
	err := repo.UpdateChecked(ctx, &second)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("第二次 UpdateChecked() error = %v, want ConflictError", err)
	}

	var stored model.PublicationOverlay
	db.Where("listing_id = ?", 7).First(&stored)
	if len(stored.Photos) != 1 || stored.Photos[0] != "a.jpg" {
		t.Errorf("Photos = %v, want [a.jpg]", stored.Photos)
	}
}

func TestOverlayRepo_ExistsForListing(t *testing.T) {
	db := setupRepoTestDB(t)
	repo := NewOverlayRepository(db)
	ctx := context.Background()

	exists, err := repo.ExistsForListing(ctx, 5)
	if err != nil || exists {
		t.Errorf("ExistsForListing() = (%v, %v), want (false, nil)", exists, err)
	}

	db.Create(&model.PublicationOverlay{ListingID: 5, Version: 1})

	exists, err = repo.ExistsForListing(ctx, 5)
	if err != nil || !exists {
		t.Errorf("ExistsForListing() = (%v, %v), want (true, nil)", exists, err)
	}
}
