package model

import (
	"time"
)

// ContributeRecordModel 出资记录
type ContributeRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId  int64  `json:"campaign_id" gorm:"not null;index"`
	Contributor string `json:"contributor" gorm:"not null"`
	Amount      int64  `json:"amount" gorm:"not null"`
	ChainLabel  string `json:"chain_label" gorm:"not null"`
	NewTotal    int64  `json:"new_total" gorm:"not null"`
}

// TableName 自定义表名
func (ContributeRecordModel) TableName() string {
	return "contribute_record"
}
