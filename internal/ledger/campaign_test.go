package ledger_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/origin"
	"github.com/blues/cfl/internal/payout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock 可手动推进的测试时钟
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier 捕获所有通知供断言
type recordingNotifier struct {
	mu            sync.Mutex
	created       []ledger.CampaignCreatedEvent
	contributions []ledger.ContributionEvent
	withdrawals   []ledger.WithdrawalEvent
	refunds       []ledger.RefundEvent
	feeChanges    []ledger.FeeChangedEvent
}

func (n *recordingNotifier) CampaignCreated(e ledger.CampaignCreatedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, e)
}

func (n *recordingNotifier) ContributionRecorded(e ledger.ContributionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contributions = append(n.contributions, e)
}

func (n *recordingNotifier) Withdrawal(e ledger.WithdrawalEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.withdrawals = append(n.withdrawals, e)
}

func (n *recordingNotifier) Refund(e ledger.RefundEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refunds = append(n.refunds, e)
}

func (n *recordingNotifier) FeeChanged(e ledger.FeeChangedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.feeChanges = append(n.feeChanges, e)
}

// countingResolver 记录每个身份被解析的次数
type countingResolver struct {
	inner ledger.OriginResolver
	mu    sync.Mutex
	calls map[ledger.Address]int
}

func newCountingResolver(inner ledger.OriginResolver) *countingResolver {
	return &countingResolver{inner: inner, calls: make(map[ledger.Address]int)}
}

func (r *countingResolver) Resolve(ctx context.Context, identity ledger.Address) (ledger.Origin, bool, error) {
	r.mu.Lock()
	r.calls[identity]++
	r.mu.Unlock()
	return r.inner.Resolve(ctx, identity)
}

// faultyResolver 总是故障的解析器
type faultyResolver struct{}

func (faultyResolver) Resolve(context.Context, ledger.Address) (ledger.Origin, bool, error) {
	return ledger.Origin{}, false, errors.New("resolver unavailable")
}

// failingBank 总是转账失败的银行
type failingBank struct{}

func (failingBank) Transfer(ledger.Address, int64) error {
	return errors.New("transfer rejected")
}

// flakyBank 指定序号的转账失败，其余委托内部银行
type flakyBank struct {
	inner    *payout.MemoryBank
	mu       sync.Mutex
	calls    int
	failCall int
}

func (b *flakyBank) Transfer(to ledger.Address, amount int64) error {
	b.mu.Lock()
	b.calls++
	call := b.calls
	b.mu.Unlock()
	if call == b.failCall {
		return errors.New("transfer rejected")
	}
	return b.inner.Transfer(to, amount)
}

type testEnv struct {
	clock    *fakeClock
	resolver *countingResolver
	bank     *payout.MemoryBank
	notifier *recordingNotifier
	registry *ledger.Registry
}

const (
	feeRecipient = ledger.Address("0xfee0000000000000000000000000000000000001")
	creator      = ledger.Address("0xc12ea100000000000000000000000000000000aa")
	alice        = ledger.Address("0xa11ce00000000000000000000000000000000001")
	bob          = ledger.Address("0xb0b0000000000000000000000000000000000002")
	carol        = ledger.Address("0xca201000000000000000000000000000000000c3")
)

func newTestEnv(t *testing.T, feePercent int64) *testEnv {
	t.Helper()

	static := origin.NewStaticResolver(nil)
	static.Set(alice, ledger.Origin{Namespace: "eip155", ChainID: "11155111"})
	static.Set(bob, ledger.Origin{Namespace: "solana", ChainID: "devnet"})

	env := &testEnv{
		clock:    newFakeClock(),
		resolver: newCountingResolver(static),
		bank:     payout.NewMemoryBank(),
		notifier: &recordingNotifier{},
	}

	registry, err := ledger.NewRegistry(ledger.RegistryConfig{
		FeePercent:   feePercent,
		FeeRecipient: feeRecipient,
		Clock:        env.clock,
		Resolver:     env.resolver,
		Bank:         env.bank,
		Notifier:     env.notifier,
	})
	require.NoError(t, err)
	env.registry = registry
	return env
}

func (env *testEnv) createCampaign(t *testing.T, goal int64) *ledger.Campaign {
	t.Helper()
	campaign, err := env.registry.CreateCampaign(ledger.CreateCampaignInput{
		Creator:      creator,
		Title:        "Community Hardware Fund",
		Description:  "Build the thing",
		GoalAmount:   goal,
		DurationDays: 30,
	})
	require.NoError(t, err)
	return campaign
}

func TestContributeRecordsByChain(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)
	ctx := context.Background()

	// alice从eip155桥接，bob从solana桥接，carol未跨链
	require.NoError(t, campaign.Contribute(ctx, alice, 2))
	require.NoError(t, campaign.Contribute(ctx, bob, 3))
	require.NoError(t, campaign.Contribute(ctx, carol, 1))

	assert.Equal(t, int64(6), campaign.TotalRaised())
	assert.Equal(t, 3, campaign.ContributorCount())
	assert.Equal(t, []ledger.Address{alice, bob, carol}, campaign.Contributors())

	totals := campaign.ChainTotals()
	assert.Equal(t, int64(2), totals["eip155"])
	assert.Equal(t, int64(3), totals["solana"])
	assert.Equal(t, int64(1), totals[ledger.NativeChainLabel])

	label, ok := campaign.OriginOf(carol)
	require.True(t, ok)
	assert.Equal(t, ledger.NativeChainLabel, label)
}

func TestContributeResolvesOriginOnce(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)
	ctx := context.Background()

	require.NoError(t, campaign.Contribute(ctx, alice, 5))
	require.NoError(t, campaign.Contribute(ctx, alice, 5))
	require.NoError(t, campaign.Contribute(ctx, alice, 5))

	// 来源解析只在首次出资时发生，之后走memoized标签
	assert.Equal(t, 1, env.resolver.calls[alice])
	assert.Equal(t, int64(15), campaign.ContributionOf(alice))
}

func TestContributeGuards(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)
	ctx := context.Background()

	assert.ErrorIs(t, campaign.Contribute(ctx, alice, 0), ledger.ErrZeroAmount)
	assert.ErrorIs(t, campaign.Contribute(ctx, alice, -5), ledger.ErrZeroAmount)
	assert.ErrorIs(t, campaign.Contribute(ctx, creator, 10), ledger.ErrCreatorSelfContribution)

	// 截止后出资被拒绝
	env.clock.Advance(31 * 24 * time.Hour)
	assert.ErrorIs(t, campaign.Contribute(ctx, alice, 10), ledger.ErrNotActive)
	assert.Equal(t, int64(0), campaign.TotalRaised())
}

func TestContributeResolverFaultFailsOperation(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)

	env.resolver.inner = faultyResolver{}
	err := campaign.Contribute(context.Background(), alice, 10)
	require.Error(t, err)

	// 解析器故障时账本零变更
	assert.Equal(t, int64(0), campaign.TotalRaised())
	assert.Equal(t, 0, campaign.ContributorCount())
	assert.Empty(t, env.notifier.contributions)
}

func TestContributionEventFields(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)

	require.NoError(t, campaign.Contribute(context.Background(), alice, 7))

	require.Len(t, env.notifier.contributions, 1)
	event := env.notifier.contributions[0]
	assert.Equal(t, campaign.ID(), event.CampaignID)
	assert.Equal(t, alice, event.Contributor)
	assert.Equal(t, int64(7), event.Amount)
	assert.Equal(t, "eip155", event.ChainLabel)
	assert.Equal(t, int64(7), event.NewTotal)
}

func TestWithdrawPaysFeeAndCreator(t *testing.T) {
	// 目标1000，费率2.5%（250基点），募满后提取：手续费25，创建者975
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 1000)
	ctx := context.Background()

	require.NoError(t, campaign.Contribute(ctx, alice, 1000))
	env.clock.Advance(31 * 24 * time.Hour)

	require.NoError(t, campaign.Withdraw(creator))

	assert.Equal(t, int64(25), env.bank.Balance(feeRecipient))
	assert.Equal(t, int64(975), env.bank.Balance(creator))
	assert.True(t, campaign.FundsWithdrawn())
	assert.False(t, campaign.IsActive())

	require.Len(t, env.notifier.withdrawals, 1)
	event := env.notifier.withdrawals[0]
	assert.Equal(t, int64(25), event.Fee)
	assert.Equal(t, int64(975), event.CreatorAmount)
	// 手续费+创建者所得 == 募集总额
	assert.Equal(t, campaign.TotalRaised(), event.Fee+event.CreatorAmount)
}

func TestWithdrawZeroFeeSkipsFeeTransfer(t *testing.T) {
	env := newTestEnv(t, 0)
	campaign := env.createCampaign(t, 100)
	ctx := context.Background()

	require.NoError(t, campaign.Contribute(ctx, alice, 100))
	env.clock.Advance(31 * 24 * time.Hour)

	require.NoError(t, campaign.Withdraw(creator))
	assert.Equal(t, int64(0), env.bank.Balance(feeRecipient))
	assert.Equal(t, int64(100), env.bank.Balance(creator))
}

func TestWithdrawGuards(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)
	ctx := context.Background()

	require.NoError(t, campaign.Contribute(ctx, alice, 100))

	// 活动未结束
	assert.ErrorIs(t, campaign.Withdraw(creator), ledger.ErrStillActive)
	// 非创建者
	assert.ErrorIs(t, campaign.Withdraw(alice), ledger.ErrUnauthorized)

	env.clock.Advance(31 * 24 * time.Hour)
	require.NoError(t, campaign.Withdraw(creator))

	// 提取恰好一次
	assert.ErrorIs(t, campaign.Withdraw(creator), ledger.ErrAlreadyWithdrawn)
}

func TestWithdrawGoalNotReached(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)
	ctx := context.Background()

	require.NoError(t, campaign.Contribute(ctx, alice, 99))
	env.clock.Advance(31 * 24 * time.Hour)

	assert.ErrorIs(t, campaign.Withdraw(creator), ledger.ErrGoalNotReached)
	assert.False(t, campaign.FundsWithdrawn())
}

func TestWithdrawTransferFailureRollsBack(t *testing.T) {
	env := newTestEnv(t, 250)
	ctx := context.Background()

	registry, err := ledger.NewRegistry(ledger.RegistryConfig{
		FeePercent:   250,
		FeeRecipient: feeRecipient,
		Clock:        env.clock,
		Resolver:     env.resolver,
		Bank:         failingBank{},
		Notifier:     env.notifier,
	})
	require.NoError(t, err)
	campaign, err := registry.CreateCampaign(ledger.CreateCampaignInput{
		Creator:      creator,
		Title:        "Doomed",
		GoalAmount:   100,
		DurationDays: 7,
	})
	require.NoError(t, err)
	require.NoError(t, campaign.Contribute(ctx, alice, 100))
	env.clock.Advance(8 * 24 * time.Hour)

	require.Error(t, campaign.Withdraw(creator))
	// 转账失败时提取标志回滚，操作可重试
	assert.False(t, campaign.FundsWithdrawn())
	assert.Empty(t, env.notifier.withdrawals)
}

func TestWithdrawRetrySkipsPaidFee(t *testing.T) {
	// 手续费转账成功、创建者转账失败：重试时不再重复支付手续费
	env := newTestEnv(t, 250)
	bank := &flakyBank{inner: payout.NewMemoryBank(), failCall: 2}
	ctx := context.Background()

	registry, err := ledger.NewRegistry(ledger.RegistryConfig{
		FeePercent:   250,
		FeeRecipient: feeRecipient,
		Clock:        env.clock,
		Resolver:     env.resolver,
		Bank:         bank,
		Notifier:     env.notifier,
	})
	require.NoError(t, err)
	campaign, err := registry.CreateCampaign(ledger.CreateCampaignInput{
		Creator:      creator,
		Title:        "Flaky Payout",
		GoalAmount:   1000,
		DurationDays: 7,
	})
	require.NoError(t, err)
	require.NoError(t, campaign.Contribute(ctx, alice, 1000))
	env.clock.Advance(8 * 24 * time.Hour)

	require.Error(t, campaign.Withdraw(creator))
	assert.False(t, campaign.FundsWithdrawn())
	assert.Equal(t, int64(25), bank.inner.Balance(feeRecipient))

	require.NoError(t, campaign.Withdraw(creator))
	assert.True(t, campaign.FundsWithdrawn())
	assert.Equal(t, int64(25), bank.inner.Balance(feeRecipient))
	assert.Equal(t, int64(975), bank.inner.Balance(creator))
	require.Len(t, env.notifier.withdrawals, 1)
}

func TestClaimRefundTransferFailureRestoresBalance(t *testing.T) {
	env := newTestEnv(t, 250)
	ctx := context.Background()

	registry, err := ledger.NewRegistry(ledger.RegistryConfig{
		FeePercent:   250,
		FeeRecipient: feeRecipient,
		Clock:        env.clock,
		Resolver:     env.resolver,
		Bank:         failingBank{},
		Notifier:     env.notifier,
	})
	require.NoError(t, err)
	campaign, err := registry.CreateCampaign(ledger.CreateCampaignInput{
		Creator:      creator,
		Title:        "Doomed",
		GoalAmount:   200,
		DurationDays: 7,
	})
	require.NoError(t, err)
	require.NoError(t, campaign.Contribute(ctx, alice, 100))
	env.clock.Advance(8 * 24 * time.Hour)

	require.Error(t, campaign.ClaimRefund(alice))
	// 转账失败时余额恢复，退款可重试
	assert.Equal(t, int64(100), campaign.ContributionOf(alice))
	assert.Equal(t, int64(0), campaign.RefundedTotal())
	assert.Empty(t, env.notifier.refunds)
}

func TestClaimRefundAfterFailedCampaign(t *testing.T) {
	// 目标10，只募到9：失败后出资人取回恰好9
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 10)
	ctx := context.Background()

	require.NoError(t, campaign.Contribute(ctx, alice, 9))
	env.clock.Advance(31 * 24 * time.Hour)

	assert.False(t, campaign.GoalReached())
	assert.ErrorIs(t, campaign.Withdraw(creator), ledger.ErrGoalNotReached)

	require.NoError(t, campaign.ClaimRefund(alice))
	assert.Equal(t, int64(9), env.bank.Balance(alice))

	// 每个出资人恰好退一次
	assert.ErrorIs(t, campaign.ClaimRefund(alice), ledger.ErrNoContribution)

	// 历史总量保持不变
	assert.Equal(t, int64(9), campaign.TotalRaised())
	assert.Equal(t, 1, campaign.ContributorCount())
	assert.Equal(t, int64(9), campaign.ChainTotals()["eip155"])

	require.Len(t, env.notifier.refunds, 1)
	assert.Equal(t, int64(9), env.notifier.refunds[0].Amount)
}

func TestClaimRefundGuards(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)
	ctx := context.Background()

	require.NoError(t, campaign.Contribute(ctx, alice, 50))

	// 活动未结束
	assert.ErrorIs(t, campaign.ClaimRefund(alice), ledger.ErrStillActive)

	require.NoError(t, campaign.Contribute(ctx, bob, 50))
	env.clock.Advance(31 * 24 * time.Hour)

	// 目标已达成，不可退款
	assert.ErrorIs(t, campaign.ClaimRefund(alice), ledger.ErrGoalWasReached)
}

func TestClaimRefundNonContributor(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)

	require.NoError(t, campaign.Contribute(context.Background(), alice, 10))
	env.clock.Advance(31 * 24 * time.Hour)

	assert.ErrorIs(t, campaign.ClaimRefund(carol), ledger.ErrNoContribution)
}

func TestConservationInvariant(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)
	ctx := context.Background()

	require.NoError(t, campaign.Contribute(ctx, alice, 30))
	require.NoError(t, campaign.Contribute(ctx, bob, 20))
	require.NoError(t, campaign.Contribute(ctx, carol, 10))
	env.clock.Advance(31 * 24 * time.Hour)

	require.NoError(t, campaign.ClaimRefund(alice))
	require.NoError(t, campaign.ClaimRefund(carol))

	// totalRaised == 未退余额之和 + 已退总额
	remaining := campaign.ContributionOf(alice) + campaign.ContributionOf(bob) + campaign.ContributionOf(carol)
	assert.Equal(t, campaign.TotalRaised(), remaining+campaign.RefundedTotal())
	assert.Equal(t, int64(40), campaign.RefundedTotal())
}

func TestOverflowIsRejected(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)
	ctx := context.Background()

	require.NoError(t, campaign.Contribute(ctx, alice, math.MaxInt64-1))
	err := campaign.Contribute(ctx, bob, 2)
	assert.ErrorIs(t, err, ledger.ErrOverflow)

	// 溢出时账本零变更
	assert.Equal(t, int64(math.MaxInt64-1), campaign.TotalRaised())
	assert.Equal(t, 1, campaign.ContributorCount())
}

func TestProgressPercent(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 200)
	ctx := context.Background()

	assert.Equal(t, int64(0), campaign.ProgressPercent())

	require.NoError(t, campaign.Contribute(ctx, alice, 50))
	assert.Equal(t, int64(25), campaign.ProgressPercent())

	require.NoError(t, campaign.Contribute(ctx, bob, 99))
	// 向下取整：149*100/200 = 74
	assert.Equal(t, int64(74), campaign.ProgressPercent())

	require.NoError(t, campaign.Contribute(ctx, carol, 151))
	assert.Equal(t, int64(150), campaign.ProgressPercent())
	assert.True(t, campaign.GoalReached())
}

func TestTimeRemaining(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)

	assert.Equal(t, 30*24*time.Hour, campaign.TimeRemaining())

	env.clock.Advance(10 * 24 * time.Hour)
	assert.Equal(t, 20*24*time.Hour, campaign.TimeRemaining())

	env.clock.Advance(100 * 24 * time.Hour)
	assert.Equal(t, time.Duration(0), campaign.TimeRemaining())
}

func TestDetailSnapshot(t *testing.T) {
	env := newTestEnv(t, 250)
	campaign := env.createCampaign(t, 100)

	require.NoError(t, campaign.Contribute(context.Background(), alice, 40))

	detail := campaign.Detail()
	assert.Equal(t, campaign.ID(), detail.ID)
	assert.Equal(t, creator, detail.Creator)
	assert.Equal(t, "Community Hardware Fund", detail.Title)
	assert.Equal(t, int64(100), detail.GoalAmount)
	assert.Equal(t, int64(40), detail.TotalRaised)
	assert.True(t, detail.IsActive)
	assert.False(t, detail.GoalReached)
	assert.Equal(t, int64(40), detail.ProgressPercent)
	assert.Equal(t, 1, detail.ContributorCount)
	assert.Equal(t, int64(250), detail.FeePercent)
}
