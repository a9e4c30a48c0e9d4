package model

import (
	"time"
)

// FeeChangeRecordModel 平台手续费变更记录
type FeeChangeRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OldFeePercent int64  `json:"old_fee_percent" gorm:"not null"`
	NewFeePercent int64  `json:"new_fee_percent" gorm:"not null"`
	ChangedBy     string `json:"changed_by" gorm:"not null"`
}

// TableName 自定义表名
func (FeeChangeRecordModel) TableName() string {
	return "fee_change_record"
}
