package backend

import (
	"testing"
	"time"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleTrialEnd(t *testing.T) {
	backend := newTestBackend(t)

	_, err := backend.ScheduleTrialEnd("chan1", "member1", "Gatekeeper", 2)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = backend.ScheduleTrialEnd("chan1", "member1", "Gatekeeper", 15)
	assert.ErrorIs(t, err, common.ErrValidation)

	event, err := backend.ScheduleTrialEnd("chan1", "member1", "Gatekeeper", 7)
	require.NoError(t, err)
	assert.Equal(t, model.TrialActionEnd, event.Action)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), event.FireAt, time.Minute)
}

func TestRescheduleReplacesEvent(t *testing.T) {
	backend := newTestBackend(t)

	_, err := backend.ScheduleTrialEnd("chan1", "member1", "Gatekeeper", 7)
	require.NoError(t, err)
	_, err = backend.DelayTrial("chan1", "member1", "Gatekeeper", 5, 7)
	require.NoError(t, err)

	var count int64
	backend.DB.Model(&model.TrialEvent{}).Count(&count)
	assert.EqualValues(t, 1, count, "one pending event per channel and member")

	event, err := backend.TrialEventFor("chan1", "member1")
	require.NoError(t, err)
	assert.Equal(t, model.TrialActionStart, event.Action)
}

func TestDelayTrialValidation(t *testing.T) {
	backend := newTestBackend(t)

	_, err := backend.DelayTrial("chan1", "member1", "Gatekeeper", 0, 7)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = backend.DelayTrial("chan1", "member1", "Gatekeeper", 31, 7)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = backend.DelayTrial("chan1", "member1", "Gatekeeper", 5, 2)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestSweepTrialEvents(t *testing.T) {
	backend := newTestBackend(t)

	// A delayed trial whose start date has arrived.
	event := &model.TrialEvent{
		ChannelID: "chan1",
		MemberID:  "member1",
		FireAt:    time.Now().Add(-time.Minute),
		Action:    model.TrialActionStart,
		Type:      "Gatekeeper",
		Days:      7,
	}
	require.NoError(t, backend.DB.Create(event).Error)

	require.NoError(t, backend.SweepTrialEvents())

	select {
	case due := <-backend.TrialChan:
		assert.Equal(t, model.TrialActionStart, due.Action)
		assert.Equal(t, "member1", due.Event.MemberID)
	default:
		t.Fatal("expected a start notification")
	}

	// The start event became the end event, seven days out.
	rewritten, err := backend.TrialEventFor("chan1", "member1")
	require.NoError(t, err)
	assert.Equal(t, model.TrialActionEnd, rewritten.Action)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), rewritten.FireAt, time.Minute)

	// Force the end event due and sweep again.
	require.NoError(t, backend.DB.Model(rewritten).Update("fire_at", time.Now().Add(-time.Minute)).Error)
	require.NoError(t, backend.SweepTrialEvents())

	select {
	case due := <-backend.TrialChan:
		assert.Equal(t, model.TrialActionEnd, due.Action)
	default:
		t.Fatal("expected an end notification")
	}

	_, err = backend.TrialEventFor("chan1", "member1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRemoveTrialEvent(t *testing.T) {
	backend := newTestBackend(t)

	_, err := backend.ScheduleTrialEnd("chan1", "member1", "Gatekeeper", 7)
	require.NoError(t, err)
	require.NoError(t, backend.RemoveTrialEvent("chan1", "member1"))

	_, err = backend.TrialEventFor("chan1", "member1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
