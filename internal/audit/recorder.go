// Package audit 把账本通知异步落库为审计记录
// 审计表只是账本活动的历史留痕，绝不反向驱动账本状态
package audit

import (
	"sync"

	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/logger"
	"github.com/blues/cfl/internal/model"
	"github.com/panjf2000/ants/v2"
	"gorm.io/gorm"
)

// Recorder 审计记录器，实现 ledger.Notifier
// 写库走协程池，不占用账本操作的调用路径
type Recorder struct {
	db   *gorm.DB
	pool *ants.Pool
	wg   sync.WaitGroup
}

// NewRecorder 创建审计记录器
func NewRecorder(db *gorm.DB, workers int) (*Recorder, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Recorder{db: db, pool: pool}, nil
}

// submit 提交一个落库任务
func (r *Recorder) submit(task func()) {
	r.wg.Add(1)
	err := r.pool.Submit(func() {
		defer r.wg.Done()
		task()
	})
	if err != nil {
		r.wg.Done()
		logger.Error("Failed to submit audit task: %v", err)
	}
}

// CampaignCreated 落库活动创建快照
func (r *Recorder) CampaignCreated(e ledger.CampaignCreatedEvent) {
	r.submit(func() {
		record := model.CampaignModel{
			CampaignId: e.CampaignID,
			Creator:    string(e.Creator),
			Title:      e.Title,
			GoalAmount: e.GoalAmount,
			Deadline:   e.Deadline,
			Status:     model.CampaignStatusActive,
		}
		if err := r.db.Create(&record).Error; err != nil {
			logger.Error("Failed to record campaign creation %d: %v", e.CampaignID, err)
		}
	})
}

// ContributionRecorded 落库出资记录
func (r *Recorder) ContributionRecorded(e ledger.ContributionEvent) {
	r.submit(func() {
		record := model.ContributeRecordModel{
			CampaignId:  e.CampaignID,
			Contributor: string(e.Contributor),
			Amount:      e.Amount,
			ChainLabel:  e.ChainLabel,
			NewTotal:    e.NewTotal,
		}
		if err := r.db.Create(&record).Error; err != nil {
			logger.Error("Failed to record contribution for campaign %d: %v", e.CampaignID, err)
		}
	})
}

// Withdrawal 落库结算记录
func (r *Recorder) Withdrawal(e ledger.WithdrawalEvent) {
	r.submit(func() {
		record := model.SettlementRecordModel{
			CampaignId:    e.CampaignID,
			Creator:       string(e.Creator),
			TotalAmount:   e.CreatorAmount + e.Fee,
			PlatformFee:   e.Fee,
			CreatorAmount: e.CreatorAmount,
		}
		if err := r.db.Create(&record).Error; err != nil {
			logger.Error("Failed to record settlement for campaign %d: %v", e.CampaignID, err)
		}
	})
}

// Refund 落库退款记录
func (r *Recorder) Refund(e ledger.RefundEvent) {
	r.submit(func() {
		record := model.RefundRecordModel{
			CampaignId:  e.CampaignID,
			Contributor: string(e.Contributor),
			Amount:      e.Amount,
		}
		if err := r.db.Create(&record).Error; err != nil {
			logger.Error("Failed to record refund for campaign %d: %v", e.CampaignID, err)
		}
	})
}

// FeeChanged 落库手续费变更记录
func (r *Recorder) FeeChanged(e ledger.FeeChangedEvent) {
	r.submit(func() {
		record := model.FeeChangeRecordModel{
			OldFeePercent: e.OldFeePercent,
			NewFeePercent: e.NewFeePercent,
			ChangedBy:     string(e.ChangedBy),
		}
		if err := r.db.Create(&record).Error; err != nil {
			logger.Error("Failed to record fee change: %v", err)
		}
	})
}

// Wait 等待已提交的落库任务全部完成
func (r *Recorder) Wait() {
	r.wg.Wait()
}

// Close 排空任务并释放协程池
func (r *Recorder) Close() {
	r.wg.Wait()
	r.pool.Release()
}
