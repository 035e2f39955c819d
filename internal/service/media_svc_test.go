package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"realty_dev_v1_202608/internal/apperr"
)

// ==================== Mock 实现 ====================

type fakeProvider struct {
	uploaded []string
	deleted  []string
	failAt   int // 第 N 次上传失败 (1 起始，0 表示不失败)
	calls    int
}

func (p *fakeProvider) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	p.calls++
	if p.failAt > 0 && p.calls == p.failAt {
		return "", errors.New("storage unavailable")
	}
	url := fmt.Sprintf("https://cdn.example.com/%d-%s", p.calls, filename)
	p.uploaded = append(p.uploaded, url)
	return url, nil
}

func (p *fakeProvider) Delete(ctx context.Context, url string) error {
	p.deleted = append(p.deleted, url)
	return nil
}

// ==================== 整批上传测试 ====================

func TestMediaService_Upload(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewMediaService(provider)

	urls, err := svc.Upload(context.Background(), []FileUpload{
		{Data: []byte("a"), Filename: "living-room.jpg", ContentType: "image/jpeg"},
		{Data: []byte("b"), Filename: "kitchen.jpg", ContentType: "image/jpeg"},
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("len(urls) = %d, want 2", len(urls))
	}
	// URL 顺序与文件顺序一致
	if urls[0] != provider.uploaded[0] || urls[1] != provider.uploaded[1] {
		t.Errorf("urls = %v, uploaded = %v", urls, provider.uploaded)
	}
}

func TestMediaService_Upload_AllOrNothing(t *testing.T) {
	provider := &fakeProvider{failAt: 3}
	svc := NewMediaService(provider)

	_, err := svc.Upload(context.Background(), []FileUpload{
		{Data: []byte("a"), Filename: "1.jpg"},
		{Data: []byte("b"), Filename: "2.jpg"},
		{Data: []byte("c"), Filename: "3.jpg"},
	})
	if !apperr.IsKind(err, apperr.KindUpload) {
		t.Fatalf("Upload() error = %v, want UploadError", err)
	}

	// 已上传的前两个对象被回滚删除
	if len(provider.deleted) != 2 {
		t.Errorf("len(deleted) = %d, want 2", len(provider.deleted))
	}
	for i, url := range provider.uploaded {
		if provider.deleted[i] != url {
			t.Errorf("deleted[%d] = %s, want %s", i, provider.deleted[i], url)
		}
	}
}

func TestMediaService_Upload_EmptyData(t *testing.T) {
	provider := &fakeProvider{}
	svc := NewMediaService(provider)

	_, err := svc.Upload(context.Background(), []FileUpload{
		{Data: []byte("a"), Filename: "1.jpg"},
		{Data: nil, Filename: "empty.jpg"},
	})
	if !apperr.IsKind(err, apperr.KindUpload) {
		t.Fatalf("Upload() error = %v, want UploadError", err)
	}
	if len(provider.deleted) != 1 {
		t.Errorf("len(deleted) = %d, want 1", len(provider.deleted))
	}
}

func TestMediaService_Upload_EmptyBatch(t *testing.T) {
	svc := NewMediaService(&fakeProvider{})

	urls, err := svc.Upload(context.Background(), nil)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if len(urls) != 0 {
		t.Errorf("len(urls) = %d, want 0", len(urls))
	}
}
