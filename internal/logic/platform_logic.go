package logic

import (
	"fmt"

	"github.com/blues/cfl/internal/model"
	"gorm.io/gorm"
)

// PlatformLogic 平台维度统计逻辑（基于审计快照表）
type PlatformLogic struct {
	db *gorm.DB
}

// NewPlatformLogic 创建平台统计逻辑
func NewPlatformLogic(db *gorm.DB) *PlatformLogic {
	return &PlatformLogic{db: db}
}

// GetPlatformStats 获取平台统计信息
func (l *PlatformLogic) GetPlatformStats() (map[string]interface{}, error) {
	// 统计活动总数
	var totalCampaigns int64
	l.db.Model(&model.CampaignModel{}).Count(&totalCampaigns)

	// 统计各状态活动数量
	var activeCampaigns int64
	l.db.Model(&model.CampaignModel{}).
		Where("status = ?", model.CampaignStatusActive).
		Count(&activeCampaigns)

	var succeededCampaigns int64
	l.db.Model(&model.CampaignModel{}).
		Where("status = ?", model.CampaignStatusSucceeded).
		Count(&succeededCampaigns)

	var settledCampaigns int64
	l.db.Model(&model.CampaignModel{}).
		Where("status = ?", model.CampaignStatusSettled).
		Count(&settledCampaigns)

	var failedCampaigns int64
	l.db.Model(&model.CampaignModel{}).
		Where("status = ?", model.CampaignStatusFailed).
		Count(&failedCampaigns)

	// 统计累计募集金额
	var totalRaised int64
	l.db.Model(&model.CampaignModel{}).
		Select("COALESCE(SUM(total_raised), 0)").
		Scan(&totalRaised)

	// 统计累计平台手续费收入
	var totalFees int64
	l.db.Model(&model.SettlementRecordModel{}).
		Select("COALESCE(SUM(platform_fee), 0)").
		Scan(&totalFees)

	// 统计出资人总数（去重）
	var totalContributors int64
	l.db.Model(&model.ContributeRecordModel{}).
		Distinct("contributor").
		Count(&totalContributors)

	return map[string]interface{}{
		"totalCampaigns":     totalCampaigns,
		"activeCampaigns":    activeCampaigns,
		"succeededCampaigns": succeededCampaigns,
		"settledCampaigns":   settledCampaigns,
		"failedCampaigns":    failedCampaigns,
		"totalRaised":        fmt.Sprintf("%d", totalRaised),
		"totalPlatformFees":  fmt.Sprintf("%d", totalFees),
		"totalContributors":  totalContributors,
	}, nil
}

// GetFeeChangeHistory 获取手续费变更历史
func (l *PlatformLogic) GetFeeChangeHistory() ([]model.FeeChangeRecordModel, error) {
	var records []model.FeeChangeRecordModel
	if err := l.db.Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("获取手续费变更历史失败: %w", err)
	}
	return records, nil
}
