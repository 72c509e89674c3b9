package app

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/slaguard/internal/config"
	"github.com/alexanderramin/slaguard/internal/contract"
	"github.com/alexanderramin/slaguard/internal/domain"
	"github.com/alexanderramin/slaguard/internal/notify"
	"github.com/alexanderramin/slaguard/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_EndToEnd(t *testing.T) {
	database := testutil.NewTestDB(t)
	sink := &testutil.RecordingSink{}
	cfg := config.Default()
	cfg.SupervisorID = "sup-1"
	cfg.ManagerID = "mgr-1"

	c, err := New(database, cfg, Options{Sink: sink})
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	n, err := c.Rules.EnsureCatalog(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	due := time.Now().UTC().Add(-time.Hour)
	res, err := c.WorkItems.Create(ctx, &domain.WorkItem{Title: "Boiler leak", DueDeadline: &due})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Effects.ViolationsDetected)
	require.NotNil(t, res.WorkItem.EscalatedTo)
	assert.Equal(t, "mgr-1", *res.WorkItem.EscalatedTo)
	assert.NotEmpty(t, sink.OfKind(notify.KindEscalation))

	sw := c.Sweep.Run(ctx)
	assert.Equal(t, contract.OutcomeNoAction, sw.Outcome)
	assert.Equal(t, 1, sw.ItemsScanned)
}

func TestNew_BadRedisURL(t *testing.T) {
	cfg := config.Default()
	cfg.RedisURL = "not a url"
	_, err := New(testutil.NewTestDB(t), cfg, Options{})
	require.Error(t, err)
}

func TestNew_OTelInstruments(t *testing.T) {
	cfg := config.Default()
	cfg.OTel = true
	c, err := New(testutil.NewTestDB(t), cfg, Options{})
	require.NoError(t, err)
	assert.NotNil(t, c.Scheduler)
	assert.NoError(t, c.Close())
}

func TestNew_UnreachableRedisFallsBackToLogSink(t *testing.T) {
	cfg := config.Default()
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	c, err := New(testutil.NewTestDB(t), cfg, Options{})
	require.NoError(t, err)
	defer c.Close()

	assert.Nil(t, c.redis)
	sw := c.Sweep.Run(context.Background())
	assert.NotEqual(t, contract.OutcomeFailed, sw.Outcome, "local lease keeps sweeps running")
}
