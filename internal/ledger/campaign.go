package ledger

import (
	"context"
	"math"
	"math/big"
	"sync"
	"time"
)

// Campaign 单个众筹活动的托管账本
// 活动阶段（进行中/成功待提取/已结算/失败可退款）不落任何状态字段，
// 全部由时间和累计金额在读取时推导
type Campaign struct {
	mu sync.Mutex

	id          int64
	creator     Address
	title       string
	description string
	imageURL    string
	goalAmount  int64
	deadline    time.Time

	// 创建时从注册表快照的手续费参数，之后注册表改费率不影响已有活动
	feePercent   int64
	feeRecipient Address

	totalRaised    int64
	fundsWithdrawn bool
	feePaid        bool
	refundedTotal  int64

	contributions        map[Address]int64
	contributorOrder     []Address
	contributionsByChain map[string]int64
	originOfContributor  map[Address]string

	clock    Clock
	resolver OriginResolver
	bank     Bank
	notifier Notifier
}

// CampaignDetail 活动详情快照
type CampaignDetail struct {
	ID               int64         `json:"id"`
	Creator          Address       `json:"creator"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	ImageURL         string        `json:"image_url"`
	GoalAmount       int64         `json:"goal_amount"`
	Deadline         time.Time     `json:"deadline"`
	TotalRaised      int64         `json:"total_raised"`
	FundsWithdrawn   bool          `json:"funds_withdrawn"`
	IsActive         bool          `json:"is_active"`
	GoalReached      bool          `json:"goal_reached"`
	ProgressPercent  int64         `json:"progress_percent"`
	TimeRemaining    time.Duration `json:"time_remaining"`
	ContributorCount int           `json:"contributor_count"`
	FeePercent       int64         `json:"fee_percent"`
}

// Contribute 记录一笔出资
// 账本变更顺序：先完成来源解析（可能失败），再一次性写入所有账目，
// 本操作只记录存入，不向外转移任何价值
func (c *Campaign) Contribute(ctx context.Context, contributor Address, amount int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if !c.isActiveAt(now) {
		return ErrNotActive
	}
	if amount <= 0 {
		return ErrZeroAmount
	}
	if contributor == c.creator {
		return ErrCreatorSelfContribution
	}

	// 首次出资时解析跨链来源，解析器故障导致整个操作失败，不默认任何标签
	label, known := c.originOfContributor[contributor]
	if !known {
		origin, resolved, err := c.resolver.Resolve(ctx, contributor)
		if err != nil {
			return err
		}
		if resolved {
			label = origin.Namespace
		} else {
			label = NativeChainLabel
		}
	}

	// 溢出检查全部先于任何账目写入，保证操作失败时账本零变更
	newTotal, err := addChecked(c.totalRaised, amount)
	if err != nil {
		return err
	}
	newBalance, err := addChecked(c.contributions[contributor], amount)
	if err != nil {
		return err
	}
	newChainTotal, err := addChecked(c.contributionsByChain[label], amount)
	if err != nil {
		return err
	}

	if !known {
		c.contributorOrder = append(c.contributorOrder, contributor)
		c.originOfContributor[contributor] = label
	}
	c.contributions[contributor] = newBalance
	c.totalRaised = newTotal
	c.contributionsByChain[label] = newChainTotal

	c.notifier.ContributionRecorded(ContributionEvent{
		CampaignID:  c.id,
		Contributor: contributor,
		Amount:      amount,
		ChainLabel:  label,
		NewTotal:    newTotal,
	})
	return nil
}

// Withdraw 创建者提取募集资金，成功后活动进入已结算终态
// 先置提取标志再对外转账（先改状态后转移，封死重入窗口），
// 任一转账失败则提取标志回滚；已付出的手续费无法追回，
// 单独记账，重试时跳过该笔，保证不重复支付
func (c *Campaign) Withdraw(caller Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.creator {
		return ErrUnauthorized
	}
	now := c.clock.Now()
	if !now.After(c.deadline) {
		return ErrStillActive
	}
	if c.totalRaised < c.goalAmount {
		return ErrGoalNotReached
	}
	if c.fundsWithdrawn {
		return ErrAlreadyWithdrawn
	}

	fee, err := mulDivChecked(c.totalRaised, c.feePercent, 10000)
	if err != nil {
		return err
	}
	creatorAmount := c.totalRaised - fee

	c.fundsWithdrawn = true
	if fee > 0 && !c.feePaid {
		if err := c.bank.Transfer(c.feeRecipient, fee); err != nil {
			c.fundsWithdrawn = false
			return err
		}
		c.feePaid = true
	}
	if err := c.bank.Transfer(c.creator, creatorAmount); err != nil {
		c.fundsWithdrawn = false
		return err
	}

	c.notifier.Withdrawal(WithdrawalEvent{
		CampaignID:    c.id,
		Creator:       c.creator,
		CreatorAmount: creatorAmount,
		Fee:           fee,
	})
	return nil
}

// ClaimRefund 失败活动的出资人取回自己的出资，每个出资人恰好一次
// 先清零余额再转账；totalRaised、出资人列表和按链聚合保持历史总量不变
func (c *Campaign) ClaimRefund(caller Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	if !now.After(c.deadline) {
		return ErrStillActive
	}
	if c.totalRaised >= c.goalAmount {
		return ErrGoalWasReached
	}
	amount := c.contributions[caller]
	if amount <= 0 {
		return ErrNoContribution
	}

	c.contributions[caller] = 0
	c.refundedTotal += amount
	if err := c.bank.Transfer(caller, amount); err != nil {
		c.contributions[caller] = amount
		c.refundedTotal -= amount
		return err
	}

	c.notifier.Refund(RefundEvent{
		CampaignID:  c.id,
		Contributor: caller,
		Amount:      amount,
	})
	return nil
}

// isActiveAt 进行中 = 未过截止时间且资金未提取
func (c *Campaign) isActiveAt(now time.Time) bool {
	return !now.After(c.deadline) && !c.fundsWithdrawn
}

// IsActive 活动是否进行中
func (c *Campaign) IsActive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isActiveAt(c.clock.Now())
}

// GoalReached 是否达到目标金额，每次读取实时推导，从不缓存
func (c *Campaign) GoalReached() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalRaised >= c.goalAmount
}

// TimeRemaining 剩余时间，活动结束后为0
func (c *Campaign) TimeRemaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	remaining := c.deadline.Sub(c.clock.Now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ProgressPercent 完成百分比（向下取整）
func (c *Campaign) ProgressPercent() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.progressPercent()
}

func (c *Campaign) progressPercent() int64 {
	if c.goalAmount == 0 {
		return 0
	}
	if c.totalRaised <= math.MaxInt64/100 {
		return c.totalRaised * 100 / c.goalAmount
	}
	// 极大金额退化到大整数运算，避免溢出
	result := new(big.Int).Mul(big.NewInt(c.totalRaised), big.NewInt(100))
	result.Quo(result, big.NewInt(c.goalAmount))
	return result.Int64()
}

// ID 活动序号
func (c *Campaign) ID() int64 {
	return c.id
}

// Creator 创建者地址
func (c *Campaign) Creator() Address {
	return c.creator
}

// Title 活动标题
func (c *Campaign) Title() string {
	return c.title
}

// Deadline 截止时间
func (c *Campaign) Deadline() time.Time {
	return c.deadline
}

// GoalAmount 目标金额
func (c *Campaign) GoalAmount() int64 {
	return c.goalAmount
}

// TotalRaised 累计募集金额（毛额，退款不扣减）
func (c *Campaign) TotalRaised() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalRaised
}

// FundsWithdrawn 资金是否已提取
func (c *Campaign) FundsWithdrawn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fundsWithdrawn
}

// RefundedTotal 已退款总额
func (c *Campaign) RefundedTotal() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refundedTotal
}

// ContributorCount 出资人数量（去重）
func (c *Campaign) ContributorCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.contributorOrder)
}

// Contributors 出资人列表，按首次出资顺序
func (c *Campaign) Contributors() []Address {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Address, len(c.contributorOrder))
	copy(out, c.contributorOrder)
	return out
}

// ContributionOf 某出资人的当前可退款余额
func (c *Campaign) ContributionOf(contributor Address) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contributions[contributor]
}

// OriginOf 某出资人的归属链标签，首次出资时固定
func (c *Campaign) OriginOf(contributor Address) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	label, ok := c.originOfContributor[contributor]
	return label, ok
}

// ChainTotals 按链归属的累计出资
func (c *Campaign) ChainTotals() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int64, len(c.contributionsByChain))
	for label, total := range c.contributionsByChain {
		out[label] = total
	}
	return out
}

// Detail 活动详情快照
func (c *Campaign) Detail() CampaignDetail {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	remaining := c.deadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	return CampaignDetail{
		ID:               c.id,
		Creator:          c.creator,
		Title:            c.title,
		Description:      c.description,
		ImageURL:         c.imageURL,
		GoalAmount:       c.goalAmount,
		Deadline:         c.deadline,
		TotalRaised:      c.totalRaised,
		FundsWithdrawn:   c.fundsWithdrawn,
		IsActive:         c.isActiveAt(now),
		GoalReached:      c.totalRaised >= c.goalAmount,
		ProgressPercent:  c.progressPercent(),
		TimeRemaining:    remaining,
		ContributorCount: len(c.contributorOrder),
		FeePercent:       c.feePercent,
	}
}

// addChecked 带溢出检查的加法
func addChecked(a, b int64) (int64, error) {
	if a > math.MaxInt64-b {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// mulDivChecked 带溢出检查的 a*b/d（向下取整）
func mulDivChecked(a, b, d int64) (int64, error) {
	if b == 0 {
		return 0, nil
	}
	if a > math.MaxInt64/b {
		return 0, ErrOverflow
	}
	return a * b / d, nil
}
