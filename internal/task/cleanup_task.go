package task

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"realty_dev_v1_202608/internal/repository"
)

// ==================== 清理任务 ====================

// CleanupTask 定时物理清除软删除房源
// 仍被对外快照引用的房源永远不会被物理删除
type CleanupTask struct {
	listingRepo repository.ListingRepository
	Cron        *cron.Cron

	retainDays int
	batchSize  int
}

// NewCleanupTask 创建清理任务
func NewCleanupTask(listingRepo repository.ListingRepository) *CleanupTask {
	return &CleanupTask{
		listingRepo: listingRepo,
		Cron:        cron.New(cron.WithSeconds()),
		retainDays:  30, // 软删除保留30天
		batchSize:   100,
	}
}

// Start 启动定时任务
func (t *CleanupTask) Start() {
	// 每天凌晨 3 点执行
	_, err := t.Cron.AddFunc("0 0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		t.purgeJob(ctx)
	})
	if err != nil {
		log.Fatalf("无法启动清理定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("[CleanupTask] 软删除清理任务已启动 (每天 03:00)")
}

// Stop 停止定时任务
func (t *CleanupTask) Stop() {
	t.Cron.Stop()
}

// purgeJob 执行一次清理
func (t *CleanupTask) purgeJob(ctx context.Context) {
	before := time.Now().AddDate(0, 0, -t.retainDays)

	listings, err := t.listingRepo.FindPurgeable(ctx, before, t.batchSize)
	if err != nil {
		log.Printf("[CleanupTask] 查询可清理房源失败: %v", err)
		return
	}

	if len(listings) == 0 {
		return
	}

	var purged int
	for i := range listings {
		if err := t.listingRepo.Purge(ctx, listings[i].ID); err != nil {
			log.Printf("[CleanupTask] 清理房源 %d 失败: %v", listings[i].ID, err)
			continue
		}
		purged++
	}

	log.Printf("[CleanupTask] 本轮清理完成: %d/%d", purged, len(listings))
}
