package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	portfolio "github.com/wyfcoding/optionsdesk/internal/portfolio/domain"
	portfoliomysql "github.com/wyfcoding/optionsdesk/internal/portfolio/infrastructure/persistence/mysql"
	"github.com/wyfcoding/optionsdesk/internal/risk/domain"
	"github.com/wyfcoding/optionsdesk/internal/risk/infrastructure/messaging"
	"github.com/wyfcoding/optionsdesk/internal/risk/infrastructure/persistence/mysql"
	"github.com/wyfcoding/optionsdesk/pkg/apperr"
	"github.com/wyfcoding/optionsdesk/pkg/db"
	"github.com/wyfcoding/optionsdesk/pkg/metrics"
	"github.com/wyfcoding/optionsdesk/pkg/mq"
	"github.com/wyfcoding/optionsdesk/pkg/testutil"
	"gorm.io/gorm"
)

type fixture struct {
	db         *gorm.DB
	svc        *AlertService
	portfolios portfolio.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()
	models := append(mysql.Models(), portfoliomysql.Models()...)
	gdb := testutil.NewDB(t, append(models, &mq.OutboxMessage{})...)
	portfolios := portfoliomysql.NewPortfolioRepository(gdb)
	publisher := messaging.NewOutboxEventPublisher(mq.NewOutbox(gdb))
	return fixture{
		db:         gdb,
		svc:        NewAlertService(db.NewTransactor(gdb), mysql.NewAlertRepository(gdb), portfolios, publisher, metrics.New()),
		portfolios: portfolios,
	}
}

func (f fixture) outbox(t *testing.T) []mq.OutboxMessage {
	t.Helper()
	var msgs []mq.OutboxMessage
	require.NoError(t, f.db.Order("created_at ASC").Find(&msgs).Error)
	return msgs
}

func (f fixture) newPortfolio(t *testing.T, userID uint, value string) *portfolio.Portfolio {
	t.Helper()
	p := &portfolio.Portfolio{
		UserID:     userID,
		Name:       "Core",
		TotalValue: decimal.RequireFromString(value),
		RiskLevel:  portfolio.RiskMedium,
	}
	require.NoError(t, f.portfolios.Save(context.Background(), p))
	return p
}

func TestCreate_WarningDoesNotNotify(t *testing.T) {
	f := setup(t)

	alert, err := f.svc.Create(context.Background(), 1, CreateAlertCommand{
		AlertType: "delta_exposure",
		Severity:  "warning",
		Message:   "net delta above 50",
	})
	require.NoError(t, err)
	assert.False(t, alert.NotifiedOwner)
	assert.False(t, alert.IsRead)
	assert.Empty(t, f.outbox(t))
}

func TestCreate_CriticalEnqueuesEvent(t *testing.T) {
	f := setup(t)

	alert, err := f.svc.Create(context.Background(), 1, CreateAlertCommand{
		AlertType: "margin_call",
		Severity:  "critical",
		Message:   "margin below maintenance",
	})
	require.NoError(t, err)
	assert.True(t, alert.NotifiedOwner)

	msgs := f.outbox(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, domain.RiskAlertRaisedEventType, msgs[0].EventType)

	var event domain.RiskAlertRaisedEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Payload), &event))
	assert.Equal(t, alert.ID, event.AlertID)
	assert.Equal(t, domain.SeverityCritical, event.Severity)
}

func TestCreate_CriticalWithoutRelayIsNotNotified(t *testing.T) {
	f := setup(t)
	svc := NewAlertService(db.NewTransactor(f.db), mysql.NewAlertRepository(f.db), f.portfolios,
		messaging.NewAlertPublisher(mq.NewOutbox(f.db), false), metrics.New())

	alert, err := svc.Create(context.Background(), 1, CreateAlertCommand{
		AlertType: "margin_call",
		Severity:  "critical",
		Message:   "margin below maintenance",
	})
	require.NoError(t, err)
	assert.False(t, alert.NotifiedOwner)
	assert.Empty(t, f.outbox(t))

	stored, err := svc.Get(context.Background(), 1, alert.ID)
	require.NoError(t, err)
	assert.False(t, stored.NotifiedOwner)
}

func TestCreate_Validation(t *testing.T) {
	f := setup(t)
	_, err := f.svc.Create(context.Background(), 1, CreateAlertCommand{AlertType: "x", Severity: "loud", Message: "m"})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
	_, err = f.svc.Create(context.Background(), 1, CreateAlertCommand{AlertType: "x", Severity: "info"})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))
}

func TestListMarkReadDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, 1, CreateAlertCommand{AlertType: "a", Severity: "info", Message: "first"})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, 1, CreateAlertCommand{AlertType: "b", Severity: "info", Message: "second"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, 2, CreateAlertCommand{AlertType: "c", Severity: "info", Message: "other user"})
	require.NoError(t, err)

	items, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)

	assert.ErrorIs(t, f.svc.MarkAsRead(ctx, 2, first.ID), domain.ErrAlertForbidden)
	assert.ErrorIs(t, f.svc.MarkAsRead(ctx, 1, 9999), domain.ErrAlertNotFound)
	require.NoError(t, f.svc.MarkAsRead(ctx, 1, first.ID))

	items, err = f.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.True(t, items[1].IsRead)
	assert.False(t, items[0].IsRead)

	assert.ErrorIs(t, f.svc.Delete(ctx, 2, first.ID), domain.ErrAlertForbidden)
	require.NoError(t, f.svc.Delete(ctx, 1, first.ID))
	items, err = f.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestCheckRiskThresholds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.newPortfolio(t, 1, "100000")

	res, err := f.svc.CheckRiskThresholds(ctx, 1, CheckThresholdCommand{PortfolioID: p.ID, CurrentValue: 95000, RiskThreshold: 10})
	require.NoError(t, err)
	assert.False(t, res.ThresholdExceeded)
	assert.Nil(t, res.Severity)

	res, err = f.svc.CheckRiskThresholds(ctx, 1, CheckThresholdCommand{PortfolioID: p.ID, CurrentValue: 85000, RiskThreshold: 10})
	require.NoError(t, err)
	require.True(t, res.ThresholdExceeded)
	assert.Equal(t, domain.SeverityWarning, *res.Severity)
	assert.Empty(t, f.outbox(t))

	res, err = f.svc.CheckRiskThresholds(ctx, 1, CheckThresholdCommand{PortfolioID: p.ID, CurrentValue: 75000, RiskThreshold: 10})
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityCritical, *res.Severity)
	assert.InDelta(t, 25.0, res.LossPercentage, 1e-9)
	assert.Len(t, f.outbox(t), 1)

	alerts, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, domain.AlertTypeRiskThreshold, alerts[0].AlertType)
	assert.Equal(t, domain.SeverityCritical, alerts[0].Severity)
	assert.True(t, alerts[0].NotifiedOwner)
	require.NotNil(t, alerts[0].PortfolioID)
	assert.Equal(t, p.ID, *alerts[0].PortfolioID)
	assert.Contains(t, alerts[0].Message, "25.00%")
}

func TestCheckRiskThresholds_Errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.newPortfolio(t, 1, "100000")
	empty := f.newPortfolio(t, 1, "0")

	_, err := f.svc.CheckRiskThresholds(ctx, 2, CheckThresholdCommand{PortfolioID: p.ID, CurrentValue: 1, RiskThreshold: 10})
	assert.ErrorIs(t, err, portfolio.ErrPortfolioForbidden)

	_, err = f.svc.CheckRiskThresholds(ctx, 1, CheckThresholdCommand{PortfolioID: 9999, CurrentValue: 1, RiskThreshold: 10})
	assert.ErrorIs(t, err, portfolio.ErrPortfolioNotFound)

	_, err = f.svc.CheckRiskThresholds(ctx, 1, CheckThresholdCommand{PortfolioID: empty.ID, CurrentValue: 1, RiskThreshold: 10})
	assert.ErrorIs(t, err, domain.ErrInvalidBaseline)

	alerts, err := f.svc.List(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestGetAndUpdate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	alert, err := f.svc.Create(ctx, 1, CreateAlertCommand{AlertType: "vega", Severity: "info", Message: "vega high"})
	require.NoError(t, err)

	got, err := f.svc.Get(ctx, 1, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "vega high", got.Message)

	_, err = f.svc.Get(ctx, 2, alert.ID)
	assert.ErrorIs(t, err, domain.ErrAlertForbidden)

	severity, msg, read := "warning", "vega above limit", true
	updated, err := f.svc.Update(ctx, 1, alert.ID, UpdateAlertCommand{Severity: &severity, Message: &msg, IsRead: &read})
	require.NoError(t, err)
	assert.Equal(t, domain.SeverityWarning, updated.Severity)
	assert.True(t, updated.IsRead)
	assert.Equal(t, "vega", updated.AlertType)

	got, err = f.svc.Get(ctx, 1, alert.ID)
	require.NoError(t, err)
	assert.Equal(t, "vega above limit", got.Message)
	assert.True(t, got.IsRead)

	bad := "loud"
	_, err = f.svc.Update(ctx, 1, alert.ID, UpdateAlertCommand{Severity: &bad})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	empty := ""
	_, err = f.svc.Update(ctx, 1, alert.ID, UpdateAlertCommand{Message: &empty})
	assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err))

	_, err = f.svc.Update(ctx, 1, 9999, UpdateAlertCommand{Message: &msg})
	assert.ErrorIs(t, err, domain.ErrAlertNotFound)
}
