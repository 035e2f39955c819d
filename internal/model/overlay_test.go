package model

import (
	"testing"

	"gorm.io/datatypes"
)

// ==================== 克隆测试 ====================

func TestSnapshotFromListing(t *testing.T) {
	listing := &PropertyListing{
		Title:        "江景三居室",
		PropertyType: "apartment",
		ListingType:  ListingTypeRent,
		City:         "Chongqing",
		AreaSqm:      128.5,
		Bedrooms:     3,
		Bathrooms:    2,
		Description:  "带阳台，拎包入住",
		PriceAmount:  680000,
		PriceDivisor: 100,
		CurrencyCode: "CNY",
		Status:       ListingStatusApproved,
	}
	listing.ID = 42

	overlay := SnapshotFromListing(listing)

	if overlay.ListingID != 42 {
		t.Errorf("ListingID = %d, want 42", overlay.ListingID)
	}
	if overlay.Title != listing.Title {
		t.Errorf("Title = %s, want %s", overlay.Title, listing.Title)
	}
	if overlay.PriceAmount != listing.PriceAmount {
		t.Errorf("PriceAmount = %d, want %d", overlay.PriceAmount, listing.PriceAmount)
	}

	// 照片永远从空开始，不从房源继承
	if len(overlay.Photos) != 0 {
		t.Errorf("len(Photos) = %d, want 0", len(overlay.Photos))
	}
	if overlay.IsLive {
		t.Error("新建快照不应处于上线状态")
	}
	if overlay.PublishedAt != nil {
		t.Error("新建快照 PublishedAt 应为 nil")
	}
	if overlay.Version != 1 {
		t.Errorf("Version = %d, want 1", overlay.Version)
	}
}

// ==================== 上线条件测试 ====================

func TestPublicationOverlay_UnmetPublishConditions(t *testing.T) {
	overlay := &PublicationOverlay{}

	unmet := overlay.UnmetPublishConditions()
	if len(unmet) != 3 {
		t.Fatalf("len(unmet) = %d, want 3: %v", len(unmet), unmet)
	}

	overlay.Title = "对外标题"
	overlay.PriceAmount = 100000
	overlay.Photos = datatypes.JSONSlice[string]{"a.jpg", "b.jpg"}

	unmet = overlay.UnmetPublishConditions()
	if len(unmet) != 1 {
		t.Fatalf("len(unmet) = %d, want 1: %v", len(unmet), unmet)
	}
	if unmet[0] != "minimum 3 photos required" {
		t.Errorf("unmet[0] = %s", unmet[0])
	}

	overlay.Photos = append(overlay.Photos, "c.jpg")
	if unmet = overlay.UnmetPublishConditions(); len(unmet) != 0 {
		t.Errorf("unmet = %v, want empty", unmet)
	}
}

func TestPublicationOverlay_State(t *testing.T) {
	overlay := &PublicationOverlay{}
	if overlay.State() != OverlayStateHidden {
		t.Errorf("State() = %s, want %s", overlay.State(), OverlayStateHidden)
	}
	overlay.IsLive = true
	if overlay.State() != OverlayStateLive {
		t.Errorf("State() = %s, want %s", overlay.State(), OverlayStateLive)
	}
}
