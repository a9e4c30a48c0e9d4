package model

import (
	"time"
)

// CampaignModel 活动目录快照
// 由定时任务从内存账本反规范化写入，只服务审计和UI读取，
// 权威状态始终在账本内实时推导
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	CampaignId  int64  `json:"campaign_id" gorm:"uniqueIndex;not null"`
	Title       string `json:"title" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`
	ImageURL    string `json:"image_url"`

	// 众筹信息
	GoalAmount  int64 `json:"goal_amount" gorm:"not null"`
	TotalRaised int64 `json:"total_raised" gorm:"default:0"`
	FeePercent  int64 `json:"fee_percent" gorm:"default:0"`

	// 时间信息
	Deadline time.Time `json:"deadline" gorm:"not null"`

	// 状态（推导结果的快照，非权威）
	Status           CampaignStatus `json:"status" gorm:"default:'active'"`
	FundsWithdrawn   bool           `json:"funds_withdrawn" gorm:"default:false"`
	ContributorCount int            `json:"contributor_count" gorm:"default:0"`

	// 创建者信息
	Creator string `json:"creator" gorm:"not null"`
}

// CampaignStatus 活动状态快照标签
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"    // 进行中
	CampaignStatusSucceeded CampaignStatus = "succeeded" // 成功待提取
	CampaignStatusSettled   CampaignStatus = "settled"   // 已结算
	CampaignStatusFailed    CampaignStatus = "failed"    // 失败可退款
)

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
