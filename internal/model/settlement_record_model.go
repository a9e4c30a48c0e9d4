package model

import (
	"time"
)

// SettlementRecordModel 结算记录（成功活动的提取明细）
type SettlementRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId    int64  `json:"campaign_id" gorm:"not null;uniqueIndex"`
	Creator       string `json:"creator" gorm:"not null"`
	TotalAmount   int64  `json:"total_amount" gorm:"not null"`   // 总金额
	PlatformFee   int64  `json:"platform_fee" gorm:"default:0"`  // 平台手续费
	CreatorAmount int64  `json:"creator_amount" gorm:"not null"` // 创建者获得金额
}

// TableName 自定义表名
func (SettlementRecordModel) TableName() string {
	return "settlement_record"
}
