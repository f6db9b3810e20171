package application

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	analysis "github.com/wyfcoding/optionsdesk/internal/analysis/domain"
	"github.com/wyfcoding/optionsdesk/internal/structure/domain"
	"github.com/wyfcoding/optionsdesk/internal/structure/infrastructure/persistence/mysql"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"github.com/wyfcoding/optionsdesk/pkg/mq"
	"github.com/wyfcoding/optionsdesk/pkg/testutil"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2025, 3, 21, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*StructureService, *gorm.DB) {
	t.Helper()
	gdb := testutil.NewDB(t, append(mysql.Models(), &mq.OutboxMessage{})...)
	svc := NewStructureService(db.NewTransactor(gdb), mysql.NewStructureRepository(gdb), mq.NewOutbox(gdb))
	svc.now = func() time.Time { return fixedNow }
	return svc, gdb
}

func dec(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func straddle() CreateStructureCommand {
	expiry := fixedNow.Add(365 * 24 * time.Hour)
	return CreateStructureCommand{
		Tag: "ATM straddle",
		Legs: []LegInput{
			{OptionType: "call", Strike: decimal.NewFromInt(100), ExpiryDate: expiry, Quantity: 1, TradePrice: decimal.NewFromInt(9), ImpliedVolatility: dec("20")},
			{OptionType: "PUT", Strike: decimal.NewFromInt(100), ExpiryDate: expiry, Quantity: 1, TradePrice: decimal.NewFromInt(5), ImpliedVolatility: dec("20")},
		},
	}
}

func TestCreate_Defaults(t *testing.T) {
	svc, _ := setup(t)

	view, err := svc.Create(context.Background(), 1, straddle())
	require.NoError(t, err)
	assert.True(t, domain.DefaultMultiplier.Equal(view.Multiplier))
	assert.Equal(t, domain.StatusActive, view.Status)
	require.Len(t, view.Legs, 2)
	assert.Equal(t, analysis.OptionTypePut, view.Legs[1].OptionType)
	assert.True(t, domain.DefaultCommission.Equal(view.Legs[0].OpeningCommission))
	assert.Equal(t, fixedNow, view.Legs[0].OpeningDate)
	assert.True(t, view.RealizedPnL.IsZero())

	_, err = svc.Create(context.Background(), 1, CreateStructureCommand{Tag: "empty"})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestCloseAndReopen_Persisted(t *testing.T) {
	svc, gdb := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, straddle())
	require.NoError(t, err)

	closed, err := svc.Close(ctx, 1, created.ID, CloseStructureCommand{Spot: 100, RiskFreeRate: 0.05})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, closed.Status)

	got, err := svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, got.Status)
	require.Len(t, got.Legs, 2)
	assert.Equal(t, "10.4506", got.Legs[0].ClosingPrice.Decimal.String())
	assert.Equal(t, "5.5735", got.Legs[1].ClosingPrice.Decimal.String())
	// (10.4506 − 9)·5 − 4 + (5.5735 − 5)·5 − 4
	assert.Equal(t, "2.1205", got.RealizedPnL.String())
	assert.True(t, closed.RealizedPnL.Equal(got.RealizedPnL))

	var msgs []mq.OutboxMessage
	require.NoError(t, gdb.Find(&msgs).Error)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.StructureClosedEventType, msgs[0].EventType)

	_, err = svc.Close(ctx, 1, created.ID, CloseStructureCommand{Spot: 100, RiskFreeRate: 0.05})
	assert.ErrorIs(t, err, domain.ErrAlreadyClosed)

	_, err = svc.Reopen(ctx, 1, created.ID)
	require.NoError(t, err)
	got, err = svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, got.Status)
	assert.Nil(t, got.ClosingDate)
	for _, leg := range got.Legs {
		assert.True(t, leg.IsOpen())
		assert.Nil(t, leg.ClosingDate)
	}
}

func TestUpdate_ReplacesLegs(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, straddle())
	require.NoError(t, err)

	tag := "call only"
	legs := straddle().Legs[:1]
	legs[0].ClosingPrice = dec("12")
	updated, err := svc.Update(ctx, 1, created.ID, UpdateStructureCommand{Tag: &tag, Multiplier: dec("25"), Legs: legs})
	require.NoError(t, err)
	assert.Equal(t, "call only", updated.Tag)

	got, err := svc.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	require.Len(t, got.Legs, 1)
	assert.False(t, got.Legs[0].IsOpen())
	require.NotNil(t, got.Legs[0].ClosingDate)
	// (12 − 9)·25 − 4
	assert.Equal(t, "71", got.RealizedPnL.String())

	multiplier := dec("10")
	got2, err := svc.Update(ctx, 1, created.ID, UpdateStructureCommand{Multiplier: multiplier})
	require.NoError(t, err)
	assert.Len(t, got2.Legs, 1)
}

func TestOwnershipAndDelete(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, straddle())
	require.NoError(t, err)

	_, err = svc.Get(ctx, 2, created.ID)
	assert.ErrorIs(t, err, domain.ErrStructureForbidden)
	_, err = svc.Close(ctx, 2, created.ID, CloseStructureCommand{Spot: 100})
	assert.ErrorIs(t, err, domain.ErrStructureForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, 2, created.ID), domain.ErrStructureForbidden)

	require.NoError(t, svc.Delete(ctx, 1, created.ID))
	_, err = svc.Get(ctx, 1, created.ID)
	assert.ErrorIs(t, err, domain.ErrStructureNotFound)

	items, err := svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestPayoff(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, straddle())
	require.NoError(t, err)

	res, err := svc.Payoff(ctx, 1, created.ID, analysis.PriceRange{Min: 80, Max: 120, Step: 2})
	require.NoError(t, err)
	assert.Equal(t, []float64{86, 114}, res.BreakEvenPoints)
	assert.InDelta(t, -14.0, res.MaxLoss, 1e-9)
	assert.True(t, res.MaxProfitUnbounded)
}

func TestShare_RecordsShareAndEvent(t *testing.T) {
	svc, gdb := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, straddle())
	require.NoError(t, err)

	share, err := svc.Share(ctx, 1, created.ID, ShareStructureCommand{AdminEmail: " Desk.Admin@Example.com "})
	require.NoError(t, err)
	assert.NotZero(t, share.ID)
	assert.Equal(t, created.ID, share.StructureID)
	assert.Equal(t, "desk.admin@example.com", share.Email)
	assert.Equal(t, fixedNow, share.SharedAt)

	var msgs []mq.OutboxMessage
	require.NoError(t, gdb.Where("event_type = ?", domain.StructureSharedEventType).Find(&msgs).Error)
	require.Len(t, msgs, 1)
	var event domain.StructureSharedEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Payload), &event))
	assert.Equal(t, "desk.admin@example.com", event.AdminEmail)
	assert.Equal(t, "ATM straddle", event.Tag)

	// 重复分享只刷新时间，事件照常登记
	later := fixedNow.Add(time.Hour)
	svc.now = func() time.Time { return later }
	again, err := svc.Share(ctx, 1, created.ID, ShareStructureCommand{AdminEmail: "desk.admin@example.com"})
	require.NoError(t, err)
	assert.Equal(t, share.ID, again.ID)

	shares, err := svc.Shares(ctx, 1, created.ID)
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.True(t, later.Equal(shares[0].SharedAt))

	var count int64
	require.NoError(t, gdb.Model(&mq.OutboxMessage{}).Where("event_type = ?", domain.StructureSharedEventType).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	require.NoError(t, svc.Delete(ctx, 1, created.ID))
	require.NoError(t, gdb.Model(&domain.Share{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestShare_Rejections(t *testing.T) {
	svc, gdb := setup(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, 1, straddle())
	require.NoError(t, err)

	for _, email := range []string{"", "not-an-email", "admin@"} {
		_, err := svc.Share(ctx, 1, created.ID, ShareStructureCommand{AdminEmail: email})
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err), email)
	}
	_, err = svc.Share(ctx, 2, created.ID, ShareStructureCommand{AdminEmail: "admin@example.com"})
	assert.ErrorIs(t, err, domain.ErrStructureForbidden)
	_, err = svc.Share(ctx, 1, created.ID+100, ShareStructureCommand{AdminEmail: "admin@example.com"})
	assert.ErrorIs(t, err, domain.ErrStructureNotFound)
	_, err = svc.Shares(ctx, 2, created.ID)
	assert.ErrorIs(t, err, domain.ErrStructureForbidden)

	var count int64
	require.NoError(t, gdb.Model(&domain.Share{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, gdb.Model(&mq.OutboxMessage{}).Count(&count).Error)
	assert.Zero(t, count)
}
