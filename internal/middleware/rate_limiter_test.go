package middleware

import (
	"testing"
	"time"
)

func TestPublicRateLimiter_Allow(t *testing.T) {
	limiter := &PublicRateLimiter{}

	// 窗口内前 N 次放行
	for i := 0; i < 3; i++ {
		if !limiter.Allow("ip-a", time.Minute, 3) {
			t.Fatalf("第 %d 次请求被拒绝", i+1)
		}
	}
	if limiter.Allow("ip-a", time.Minute, 3) {
		t.Error("超出配额的请求应被拒绝")
	}

	// 不同 key 互不影响
	if !limiter.Allow("ip-b", time.Minute, 3) {
		t.Error("其他客户端不应受影响")
	}
}

func TestPublicRateLimiter_WindowReset(t *testing.T) {
	limiter := &PublicRateLimiter{}

	window := 30 * time.Millisecond
	if !limiter.Allow("ip-c", window, 1) {
		t.Fatal("首次请求应放行")
	}
	if limiter.Allow("ip-c", window, 1) {
		t.Fatal("窗口内第二次请求应被拒绝")
	}

	time.Sleep(window + 10*time.Millisecond)
	if !limiter.Allow("ip-c", window, 1) {
		t.Error("新窗口内的请求应放行")
	}
}
