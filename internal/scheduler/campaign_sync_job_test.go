package scheduler_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/blues/cfl/internal/config"
	"github.com/blues/cfl/internal/database"
	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/model"
	"github.com/blues/cfl/internal/origin"
	"github.com/blues/cfl/internal/payout"
	"github.com/blues/cfl/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
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

func setup(t *testing.T) (*ledger.Registry, *fakeClock, *gorm.DB, *scheduler.CampaignSyncJob) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	registry, err := ledger.NewRegistry(ledger.RegistryConfig{
		FeePercent:   250,
		FeeRecipient: "0xfee0000000000000000000000000000000000001",
		Clock:        clock,
		Resolver:     origin.NewStaticResolver(nil),
		Bank:         payout.NewMemoryBank(),
	})
	require.NoError(t, err)

	cfg := &config.Config{Task: config.TaskConfig{Interval: 60}}
	job := scheduler.NewCampaignSyncJob(registry, db, cfg)
	return registry, clock, db, job
}

func TestCampaignSyncJobCreatesSnapshot(t *testing.T) {
	registry, _, db, job := setup(t)

	campaign, err := registry.CreateCampaign(ledger.CreateCampaignInput{
		Creator:      "0xc12ea100000000000000000000000000000000aa",
		Title:        "Community Hardware Fund",
		GoalAmount:   100,
		DurationDays: 30,
	})
	require.NoError(t, err)
	require.NoError(t, campaign.Contribute(context.Background(), "0xa11ce00000000000000000000000000000000001", 40))

	job.Execute()

	var snapshot model.CampaignModel
	require.NoError(t, db.Where("campaign_id = ?", campaign.ID()).First(&snapshot).Error)
	assert.Equal(t, model.CampaignStatusActive, snapshot.Status)
	assert.Equal(t, int64(40), snapshot.TotalRaised)
	assert.Equal(t, 1, snapshot.ContributorCount)
}

func TestCampaignSyncJobTracksDerivedStatus(t *testing.T) {
	registry, clock, db, job := setup(t)

	campaign, err := registry.CreateCampaign(ledger.CreateCampaignInput{
		Creator:      "0xc12ea100000000000000000000000000000000aa",
		Title:        "Community Hardware Fund",
		GoalAmount:   100,
		DurationDays: 30,
	})
	require.NoError(t, err)
	require.NoError(t, campaign.Contribute(context.Background(), "0xa11ce00000000000000000000000000000000001", 100))

	// 截止后达标：成功待提取
	clock.Advance(31 * 24 * time.Hour)
	job.Execute()

	var snapshot model.CampaignModel
	require.NoError(t, db.Where("campaign_id = ?", campaign.ID()).First(&snapshot).Error)
	assert.Equal(t, model.CampaignStatusSucceeded, snapshot.Status)

	// 提取后：已结算
	require.NoError(t, campaign.Withdraw("0xc12ea100000000000000000000000000000000aa"))
	job.Execute()

	require.NoError(t, db.Where("campaign_id = ?", campaign.ID()).First(&snapshot).Error)
	assert.Equal(t, model.CampaignStatusSettled, snapshot.Status)
	assert.True(t, snapshot.FundsWithdrawn)
}

func TestCampaignSyncJobMarksFailed(t *testing.T) {
	registry, clock, db, job := setup(t)

	campaign, err := registry.CreateCampaign(ledger.CreateCampaignInput{
		Creator:      "0xc12ea100000000000000000000000000000000aa",
		Title:        "Underfunded",
		GoalAmount:   100,
		DurationDays: 7,
	})
	require.NoError(t, err)
	require.NoError(t, campaign.Contribute(context.Background(), "0xa11ce00000000000000000000000000000000001", 10))

	clock.Advance(8 * 24 * time.Hour)
	job.Execute()

	var snapshot model.CampaignModel
	require.NoError(t, db.Where("campaign_id = ?", campaign.ID()).First(&snapshot).Error)
	assert.Equal(t, model.CampaignStatusFailed, snapshot.Status)
}
