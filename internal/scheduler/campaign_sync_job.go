package scheduler

import (
	"time"

	"github.com/blues/cfl/internal/config"
	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/logger"
	"github.com/blues/cfl/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// CampaignSyncJob 活动快照同步任务
// 周期性把内存账本的推导状态反规范化写入快照表，供审计和UI读取；
// 快照只是账本的影子，账本从不读它
type CampaignSyncJob struct {
	registry *ledger.Registry
	db       *gorm.DB
	config   *config.Config
}

// NewCampaignSyncJob 创建活动快照同步任务
func NewCampaignSyncJob(registry *ledger.Registry, db *gorm.DB, cfg *config.Config) *CampaignSyncJob {
	return &CampaignSyncJob{
		registry: registry,
		db:       db,
		config:   cfg,
	}
}

// GetName 获取任务名称
func (j *CampaignSyncJob) GetName() string {
	return "campaign_snapshot_sync"
}

// GetSchedule 获取调度配置
func (j *CampaignSyncJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignSyncJob) Execute() {
	logger.Info("Starting campaign snapshot sync task")

	syncedCount := 0
	for _, campaign := range j.registry.AllCampaigns() {
		detail := campaign.Detail()

		updates := map[string]interface{}{
			"title":             detail.Title,
			"description":       detail.Description,
			"image_url":         detail.ImageURL,
			"goal_amount":       detail.GoalAmount,
			"total_raised":      detail.TotalRaised,
			"fee_percent":       detail.FeePercent,
			"deadline":          detail.Deadline,
			"status":            statusLabel(detail),
			"funds_withdrawn":   detail.FundsWithdrawn,
			"contributor_count": detail.ContributorCount,
			"creator":           string(detail.Creator),
		}

		result := j.db.Model(&model.CampaignModel{}).
			Where("campaign_id = ?", detail.ID).
			Updates(updates)
		if result.Error != nil {
			logger.Error("Failed to sync campaign %d snapshot: %v", detail.ID, result.Error)
			continue
		}

		// 快照行不存在时补建（创建通知落库失败的兜底）
		if result.RowsAffected == 0 {
			record := model.CampaignModel{
				CampaignId:       detail.ID,
				Creator:          string(detail.Creator),
				Title:            detail.Title,
				Description:      detail.Description,
				ImageURL:         detail.ImageURL,
				GoalAmount:       detail.GoalAmount,
				TotalRaised:      detail.TotalRaised,
				FeePercent:       detail.FeePercent,
				Deadline:         detail.Deadline,
				Status:           statusLabel(detail),
				FundsWithdrawn:   detail.FundsWithdrawn,
				ContributorCount: detail.ContributorCount,
			}
			if err := j.db.Create(&record).Error; err != nil {
				logger.Error("Failed to create campaign %d snapshot: %v", detail.ID, err)
				continue
			}
		}

		syncedCount++
	}

	logger.Info("Campaign snapshot sync completed. Synced %d campaigns", syncedCount)
}

// statusLabel 推导状态到快照标签的映射
func statusLabel(detail ledger.CampaignDetail) model.CampaignStatus {
	switch {
	case detail.FundsWithdrawn:
		return model.CampaignStatusSettled
	case detail.IsActive:
		return model.CampaignStatusActive
	case detail.GoalReached:
		return model.CampaignStatusSucceeded
	default:
		return model.CampaignStatusFailed
	}
}
