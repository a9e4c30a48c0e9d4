package ledger

import "time"

// CampaignCreatedEvent 活动创建通知
type CampaignCreatedEvent struct {
	CampaignID int64     `json:"campaign_id"`
	Creator    Address   `json:"creator"`
	Title      string    `json:"title"`
	GoalAmount int64     `json:"goal_amount"`
	Deadline   time.Time `json:"deadline"`
	Ordinal    int64     `json:"ordinal"`
}

// ContributionEvent 出资记录通知
type ContributionEvent struct {
	CampaignID  int64   `json:"campaign_id"`
	Contributor Address `json:"contributor"`
	Amount      int64   `json:"amount"`
	ChainLabel  string  `json:"chain_label"`
	NewTotal    int64   `json:"new_total"`
}

// WithdrawalEvent 提取通知
type WithdrawalEvent struct {
	CampaignID    int64   `json:"campaign_id"`
	Creator       Address `json:"creator"`
	CreatorAmount int64   `json:"creator_amount"`
	Fee           int64   `json:"fee"`
}

// RefundEvent 退款通知
type RefundEvent struct {
	CampaignID  int64   `json:"campaign_id"`
	Contributor Address `json:"contributor"`
	Amount      int64   `json:"amount"`
}

// FeeChangedEvent 手续费变更通知
type FeeChangedEvent struct {
	OldFeePercent int64   `json:"old_fee_percent"`
	NewFeePercent int64   `json:"new_fee_percent"`
	ChangedBy     Address `json:"changed_by"`
}

// Notifier 通知接收方（审计、UI等协作方消费）
type Notifier interface {
	CampaignCreated(e CampaignCreatedEvent)
	ContributionRecorded(e ContributionEvent)
	Withdrawal(e WithdrawalEvent)
	Refund(e RefundEvent)
	FeeChanged(e FeeChangedEvent)
}

// NopNotifier 空通知器
type NopNotifier struct{}

func (NopNotifier) CampaignCreated(CampaignCreatedEvent)   {}
func (NopNotifier) ContributionRecorded(ContributionEvent) {}
func (NopNotifier) Withdrawal(WithdrawalEvent)             {}
func (NopNotifier) Refund(RefundEvent)                     {}
func (NopNotifier) FeeChanged(FeeChangedEvent)             {}
