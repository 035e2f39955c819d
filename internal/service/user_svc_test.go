package service

import (
	"context"
	"testing"

	"realty_dev_v1_202608/internal/api/dto"
	"realty_dev_v1_202608/internal/apperr"
	"realty_dev_v1_202608/internal/model"
	"realty_dev_v1_202608/internal/repository"
)

func newUserTestService(t *testing.T) *UserService {
	db := setupServiceTestDB(t)
	return NewUserService(repository.NewUserRepository(db))
}

// ==================== 注册 / 登录测试 ====================

func TestUserService_Register(t *testing.T) {
	svc := newUserTestService(t)
	ctx := context.Background()

	info, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "landlord01",
		Password: "secret123",
		Email:    "landlord@example.com",
	})
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	// 开放注册只产生业主账号
	if info.Role != model.RoleOwner {
		t.Errorf("Role = %s, want owner", info.Role)
	}

	// 用户名占用
	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Username: "landlord01",
		Password: "other",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("重复注册 error = %v, want ValidationError", err)
	}
}

func TestUserService_Login(t *testing.T) {
	svc := newUserTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, &dto.RegisterRequest{
		Username: "landlord02",
		Password: "secret123",
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{
		Username: "landlord02",
		Password: "secret123",
	})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("登录应返回 token 对")
	}

	// 密码错误与账号不存在同样的错误信息
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "landlord02", Password: "wrong"})
	if !apperr.IsKind(err, apperr.KindPermission) {
		t.Errorf("错误密码 error = %v, want PermissionError", err)
	}
	_, err = svc.Login(ctx, &dto.LoginRequest{Username: "nobody", Password: "x"})
	if !apperr.IsKind(err, apperr.KindPermission) {
		t.Errorf("不存在账号 error = %v, want PermissionError", err)
	}
}

// ==================== 种子账号测试 ====================

func TestUserService_EnsureAdmin(t *testing.T) {
	svc := newUserTestService(t)
	ctx := context.Background()

	if err := svc.EnsureAdmin(ctx, "admin", "admin-pass"); err != nil {
		t.Fatalf("EnsureAdmin() error = %v", err)
	}
	// 幂等
	if err := svc.EnsureAdmin(ctx, "admin", "other-pass"); err != nil {
		t.Fatalf("重复 EnsureAdmin() error = %v", err)
	}

	resp, err := svc.Login(ctx, &dto.LoginRequest{Username: "admin", Password: "admin-pass"})
	if err != nil {
		t.Fatalf("管理员登录 error = %v", err)
	}
	if resp.User.Role != model.RoleAdmin {
		t.Errorf("Role = %s, want admin", resp.User.Role)
	}
}
