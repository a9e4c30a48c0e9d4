package audit_test

import (
	"testing"
	"time"

	"github.com/blues/cfl/internal/audit"
	"github.com/blues/cfl/internal/database"
	"github.com/blues/cfl/internal/ledger"
	"github.com/blues/cfl/internal/model"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type RecorderTestSuite struct {
	suite.Suite
	db       *gorm.DB
	recorder *audit.Recorder
}

func (s *RecorderTestSuite) SetupTest() {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(s.T(), err)
	require.NoError(s.T(), database.Migrate(db))
	s.db = db

	recorder, err := audit.NewRecorder(db, 2)
	require.NoError(s.T(), err)
	s.recorder = recorder
}

func (s *RecorderTestSuite) TearDownTest() {
	s.recorder.Close()
}

func (s *RecorderTestSuite) TestRecordsCampaignCreation() {
	s.recorder.CampaignCreated(ledger.CampaignCreatedEvent{
		CampaignID: 1,
		Creator:    "0xc12ea100000000000000000000000000000000aa",
		Title:      "Community Hardware Fund",
		GoalAmount: 1000,
		Deadline:   time.Now().Add(30 * 24 * time.Hour),
		Ordinal:    1,
	})
	s.recorder.Wait()

	var record model.CampaignModel
	s.Require().NoError(s.db.Where("campaign_id = ?", 1).First(&record).Error)
	s.Equal("Community Hardware Fund", record.Title)
	s.Equal(model.CampaignStatusActive, record.Status)
}

func (s *RecorderTestSuite) TestRecordsContribution() {
	s.recorder.ContributionRecorded(ledger.ContributionEvent{
		CampaignID:  1,
		Contributor: "0xa11ce00000000000000000000000000000000001",
		Amount:      50,
		ChainLabel:  "eip155",
		NewTotal:    50,
	})
	s.recorder.Wait()

	var record model.ContributeRecordModel
	s.Require().NoError(s.db.Where("campaign_id = ?", 1).First(&record).Error)
	s.Equal(int64(50), record.Amount)
	s.Equal("eip155", record.ChainLabel)
}

func (s *RecorderTestSuite) TestRecordsSettlement() {
	s.recorder.Withdrawal(ledger.WithdrawalEvent{
		CampaignID:    2,
		Creator:       "0xc12ea100000000000000000000000000000000aa",
		CreatorAmount: 975,
		Fee:           25,
	})
	s.recorder.Wait()

	var record model.SettlementRecordModel
	s.Require().NoError(s.db.Where("campaign_id = ?", 2).First(&record).Error)
	s.Equal(int64(1000), record.TotalAmount)
	s.Equal(int64(25), record.PlatformFee)
	s.Equal(int64(975), record.CreatorAmount)
}

func (s *RecorderTestSuite) TestRecordsRefundAndFeeChange() {
	s.recorder.Refund(ledger.RefundEvent{
		CampaignID:  3,
		Contributor: "0xa11ce00000000000000000000000000000000001",
		Amount:      9,
	})
	s.recorder.FeeChanged(ledger.FeeChangedEvent{
		OldFeePercent: 250,
		NewFeePercent: 100,
		ChangedBy:     "0xfee0000000000000000000000000000000000001",
	})
	s.recorder.Wait()

	var refund model.RefundRecordModel
	s.Require().NoError(s.db.Where("campaign_id = ?", 3).First(&refund).Error)
	s.Equal(int64(9), refund.Amount)

	var feeChange model.FeeChangeRecordModel
	s.Require().NoError(s.db.First(&feeChange).Error)
	s.Equal(int64(250), feeChange.OldFeePercent)
	s.Equal(int64(100), feeChange.NewFeePercent)
}

func TestRecorderTestSuite(t *testing.T) {
	suite.Run(t, new(RecorderTestSuite))
}
