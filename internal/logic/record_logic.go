package logic

import (
	"fmt"

	"github.com/blues/cfl/internal/model"
	"gorm.io/gorm"
)

// RecordLogic 审计记录查询逻辑
type RecordLogic struct {
	db *gorm.DB
}

// NewRecordLogic 创建审计记录查询逻辑
func NewRecordLogic(db *gorm.DB) *RecordLogic {
	return &RecordLogic{db: db}
}

// GetCampaignContributeRecords 获取活动出资记录（分页，倒序）
func (l *RecordLogic) GetCampaignContributeRecords(campaignId int64, page, pageSize int) ([]model.ContributeRecordModel, int64, error) {
	var records []model.ContributeRecordModel
	var total int64

	// 获取总数
	if err := l.db.Model(&model.ContributeRecordModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 获取数据
	offset := (page - 1) * pageSize
	if err := l.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetCampaignRefundRecords 获取活动退款记录（分页，倒序）
func (l *RecordLogic) GetCampaignRefundRecords(campaignId int64, page, pageSize int) ([]model.RefundRecordModel, int64, error) {
	var records []model.RefundRecordModel
	var total int64

	if err := l.db.Model(&model.RefundRecordModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := l.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

// GetCampaignSettlement 获取活动结算记录，没有则返回nil
func (l *RecordLogic) GetCampaignSettlement(campaignId int64) (*model.SettlementRecordModel, error) {
	var record model.SettlementRecordModel
	err := l.db.Where("campaign_id = ?", campaignId).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("获取结算记录失败: %w", err)
	}
	return &record, nil
}

// GetContributeStats 获取活动出资统计信息
func (l *RecordLogic) GetContributeStats(campaignId int64) (map[string]interface{}, error) {
	var stats struct {
		TotalContributions int64 `json:"total_contributions"`
		TotalAmount        int64 `json:"total_amount"`
		UniqueContributors int64 `json:"unique_contributors"`
	}

	// 总出资记录数
	if err := l.db.Model(&model.ContributeRecordModel{}).Where("campaign_id = ?", campaignId).Count(&stats.TotalContributions).Error; err != nil {
		return nil, fmt.Errorf("获取总出资记录数失败: %w", err)
	}

	// 总出资金额
	if err := l.db.Model(&model.ContributeRecordModel{}).Where("campaign_id = ?", campaignId).Select("COALESCE(SUM(amount), 0)").Scan(&stats.TotalAmount).Error; err != nil {
		return nil, fmt.Errorf("获取总出资金额失败: %w", err)
	}

	// 唯一出资人数量
	if err := l.db.Model(&model.ContributeRecordModel{}).Where("campaign_id = ?", campaignId).Select("COUNT(DISTINCT contributor)").Scan(&stats.UniqueContributors).Error; err != nil {
		return nil, fmt.Errorf("获取唯一出资人数量失败: %w", err)
	}

	// 平均出资金额
	averageAmount := int64(0)
	if stats.TotalContributions > 0 {
		averageAmount = stats.TotalAmount / stats.TotalContributions
	}

	return map[string]interface{}{
		"total_contributions": stats.TotalContributions,
		"total_amount":        stats.TotalAmount,
		"unique_contributors": stats.UniqueContributors,
		"average_amount":      averageAmount,
	}, nil
}
