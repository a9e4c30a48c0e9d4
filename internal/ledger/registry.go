package ledger

import (
	"errors"
	"strings"
	"sync"
	"time"
)

// 创建准入策略常量
const (
	MinDurationDays        = 7
	MaxDurationDays        = 90
	CreationCooldown       = 24 * time.Hour
	MaxCampaignsPerCreator = 10

	// MaxFeePercent 手续费率上限，基点（500 = 5%）
	MaxFeePercent = 500

	// MaxTitleLength 标题最大长度
	MaxTitleLength = 100
)

// Registry 活动注册表：负责创建准入（防薅策略）、全局目录和平台手续费状态
type Registry struct {
	mu sync.Mutex

	campaigns          []*Campaign
	campaignsByCreator map[Address][]*Campaign
	lastCreationTime   map[Address]time.Time
	creationCount      map[Address]int

	feePercent   int64
	feeRecipient Address

	clock    Clock
	resolver OriginResolver
	bank     Bank
	notifier Notifier
}

// RegistryConfig 注册表构造参数
type RegistryConfig struct {
	FeePercent   int64
	FeeRecipient Address
	Clock        Clock
	Resolver     OriginResolver
	Bank         Bank
	Notifier     Notifier
}

// NewRegistry 创建注册表
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	if cfg.FeeRecipient == "" {
		return nil, errors.New("fee recipient is required")
	}
	if cfg.FeePercent < 0 || cfg.FeePercent > MaxFeePercent {
		return nil, ErrFeeTooHigh
	}
	if cfg.Resolver == nil {
		return nil, errors.New("origin resolver is required")
	}
	if cfg.Bank == nil {
		return nil, errors.New("bank is required")
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NopNotifier{}
	}

	return &Registry{
		campaignsByCreator: make(map[Address][]*Campaign),
		lastCreationTime:   make(map[Address]time.Time),
		creationCount:      make(map[Address]int),
		feePercent:         cfg.FeePercent,
		feeRecipient:       cfg.FeeRecipient,
		clock:              cfg.Clock,
		resolver:           cfg.Resolver,
		bank:               cfg.Bank,
		notifier:           cfg.Notifier,
	}, nil
}

// CreateCampaignInput 创建活动参数
type CreateCampaignInput struct {
	Creator      Address
	Title        string
	Description  string
	ImageURL     string
	GoalAmount   int64
	DurationDays int
}

// CreateCampaign 创建新活动
// 校验顺序固定：目标金额 → 标题 → 时长 → 数量上限 → 冷却期，
// 冷却期检查对创建者的首个活动整体跳过
func (r *Registry) CreateCampaign(in CreateCampaignInput) (*Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if in.GoalAmount <= 0 {
		return nil, ErrInvalidGoal
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || len(in.Title) > MaxTitleLength {
		return nil, ErrInvalidTitle
	}
	if in.DurationDays < MinDurationDays || in.DurationDays > MaxDurationDays {
		return nil, ErrInvalidDuration
	}
	if r.creationCount[in.Creator] >= MaxCampaignsPerCreator {
		return nil, ErrCreatorLimitReached
	}
	now := r.clock.Now()
	if last, ok := r.lastCreationTime[in.Creator]; ok {
		if now.Sub(last) < CreationCooldown {
			return nil, ErrCooldownActive
		}
	}

	deadline := now.Add(time.Duration(in.DurationDays) * 24 * time.Hour)
	ordinal := int64(len(r.campaigns)) + 1

	campaign := &Campaign{
		id:           ordinal,
		creator:      in.Creator,
		title:        in.Title,
		description:  in.Description,
		imageURL:     in.ImageURL,
		goalAmount:   in.GoalAmount,
		deadline:     deadline,
		// 手续费参数在创建时刻快照，后续费率变更不回溯
		feePercent:   r.feePercent,
		feeRecipient: r.feeRecipient,

		contributions:        make(map[Address]int64),
		contributionsByChain: make(map[string]int64),
		originOfContributor:  make(map[Address]string),

		clock:    r.clock,
		resolver: r.resolver,
		bank:     r.bank,
		notifier: r.notifier,
	}

	r.campaigns = append(r.campaigns, campaign)
	r.campaignsByCreator[in.Creator] = append(r.campaignsByCreator[in.Creator], campaign)
	r.lastCreationTime[in.Creator] = now
	r.creationCount[in.Creator]++

	r.notifier.CampaignCreated(CampaignCreatedEvent{
		CampaignID: campaign.id,
		Creator:    in.Creator,
		Title:      in.Title,
		GoalAmount: in.GoalAmount,
		Deadline:   deadline,
		Ordinal:    ordinal,
	})
	return campaign, nil
}

// CanCreateCampaign 节流准入预检（只覆盖数量上限和冷却期，不做输入校验）
// 必须与CreateCampaign的节流检查保持一致：返回可创建则紧随其后的
// 创建调用不会因节流原因失败
func (r *Registry) CanCreateCampaign(creator Address) (bool, string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.creationCount[creator] >= MaxCampaignsPerCreator {
		return false, ErrCreatorLimitReached.Code
	}
	if last, ok := r.lastCreationTime[creator]; ok {
		if r.clock.Now().Sub(last) < CreationCooldown {
			return false, ErrCooldownActive.Code
		}
	}
	return true, ""
}

// Campaign 按序号查找活动
func (r *Registry) Campaign(id int64) (*Campaign, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if id < 1 || id > int64(len(r.campaigns)) {
		return nil, false
	}
	return r.campaigns[id-1], true
}

// AllCampaigns 全部活动，创建顺序
func (r *Registry) AllCampaigns() []*Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Campaign, len(r.campaigns))
	copy(out, r.campaigns)
	return out
}

// CampaignsByCreator 某创建者的活动，创建顺序
func (r *Registry) CampaignsByCreator(creator Address) []*Campaign {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.campaignsByCreator[creator]
	out := make([]*Campaign, len(list))
	copy(out, list)
	return out
}

// ActiveCampaigns 当前进行中的活动，状态在调用时逐个实时计算
func (r *Registry) ActiveCampaigns() []*Campaign {
	all := r.AllCampaigns()
	out := make([]*Campaign, 0, len(all))
	for _, campaign := range all {
		if campaign.IsActive() {
			out = append(out, campaign)
		}
	}
	return out
}

// UpdatePlatformFee 更新平台手续费率，仅手续费接收方可操作
// 只影响之后创建的活动
func (r *Registry) UpdatePlatformFee(newFeePercent int64, caller Address) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.feeRecipient {
		return ErrUnauthorized
	}
	if newFeePercent < 0 || newFeePercent > MaxFeePercent {
		return ErrFeeTooHigh
	}

	old := r.feePercent
	r.feePercent = newFeePercent

	r.notifier.FeeChanged(FeeChangedEvent{
		OldFeePercent: old,
		NewFeePercent: newFeePercent,
		ChangedBy:     caller,
	})
	return nil
}

// FeePercent 当前手续费率（基点）
func (r *Registry) FeePercent() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.feePercent
}

// FeeRecipient 手续费接收方
func (r *Registry) FeeRecipient() Address {
	return r.feeRecipient
}

// CreatorCampaignCount 某创建者已创建的活动数量
func (r *Registry) CreatorCampaignCount(creator Address) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creationCount[creator]
}

// TimeSinceLastCreation 距上次创建的时长，ok为false表示从未创建过
func (r *Registry) TimeSinceLastCreation(creator Address) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	last, ok := r.lastCreationTime[creator]
	if !ok {
		return 0, false
	}
	return r.clock.Now().Sub(last), true
}
