package backend

import (
	"testing"
	"time"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenTicketOnePerType(t *testing.T) {
	backend := newTestBackend(t)

	_, err := backend.OpenTicket("guild1", "chan1", "user1", model.TicketClan)
	require.NoError(t, err)

	_, err = backend.OpenTicket("guild1", "chan2", "user1", model.TicketClan)
	assert.ErrorIs(t, err, common.ErrValidation, "second clan ticket for the same user")

	// A different type and a different user are both fine.
	_, err = backend.OpenTicket("guild1", "chan3", "user1", model.TicketSupport)
	require.NoError(t, err)
	_, err = backend.OpenTicket("guild1", "chan4", "user2", model.TicketClan)
	require.NoError(t, err)
}

func TestTicketTimerLifecycle(t *testing.T) {
	backend := newTestBackend(t)
	_, err := backend.OpenTicket("guild1", "chan1", "user1", model.TicketClan)
	require.NoError(t, err)

	timer, err := backend.ArmTicketTimer("chan1", "user1", "staff1", 6*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(6*time.Hour), timer.FireAt, time.Minute)

	// Re-arming replaces, never stacks.
	_, err = backend.ArmTicketTimer("chan1", "user1", "staff1", 3*time.Hour)
	require.NoError(t, err)
	var count int64
	backend.DB.Model(&model.TicketTimer{}).Count(&count)
	assert.EqualValues(t, 1, count)

	disarmed, err := backend.DisarmTicketTimer("chan1")
	require.NoError(t, err)
	assert.True(t, disarmed)

	disarmed, err = backend.DisarmTicketTimer("chan1")
	require.NoError(t, err)
	assert.False(t, disarmed, "nothing left to disarm")
}

func TestSweepTicketTimers(t *testing.T) {
	backend := newTestBackend(t)
	_, err := backend.OpenTicket("guild1", "chan1", "user1", model.TicketClan)
	require.NoError(t, err)

	_, err = backend.ArmTicketTimer("chan1", "user1", "staff1", -time.Minute)
	require.NoError(t, err)

	require.NoError(t, backend.SweepTicketTimers())

	select {
	case expired := <-backend.TicketChan:
		assert.Equal(t, "chan1", expired.Ticket.ChannelID)
		assert.Equal(t, "user1", expired.Ticket.OwnerID)
	default:
		t.Fatal("expected an expiry notification")
	}

	var count int64
	backend.DB.Model(&model.TicketTimer{}).Count(&count)
	assert.Zero(t, count, "fired timer must be consumed")
}

func TestCleanupChannel(t *testing.T) {
	backend := newTestBackend(t)
	_, err := backend.OpenTicket("guild1", "chan1", "user1", model.TicketClan)
	require.NoError(t, err)
	_, err = backend.ArmTicketTimer("chan1", "user1", "staff1", time.Hour)
	require.NoError(t, err)
	_, err = backend.StartSession("user1", "chan1", []Account{{Tag: "#AAA", Name: "Main"}})
	require.NoError(t, err)
	_, err = backend.ScheduleTrialEnd("chan1", "user1", "Gatekeeper", 7)
	require.NoError(t, err)

	require.NoError(t, backend.CleanupChannel("chan1"))

	for name, value := range map[string]any{
		"tickets":    &model.Ticket{},
		"timers":     &model.TicketTimer{},
		"sessions":   &model.Session{},
		"selections": &model.Selection{},
		"events":     &model.TrialEvent{},
	} {
		var count int64
		backend.DB.Model(value).Count(&count)
		assert.Zero(t, count, "leftover %s after cleanup", name)
	}
}

func TestMemberChannels(t *testing.T) {
	backend := newTestBackend(t)
	_, err := backend.OpenTicket("guild1", "chan1", "user1", model.TicketClan)
	require.NoError(t, err)
	_, err = backend.OpenTicket("guild1", "chan2", "user1", model.TicketSupport)
	require.NoError(t, err)
	_, err = backend.OpenTicket("guild1", "chan3", "user2", model.TicketClan)
	require.NoError(t, err)

	channels, err := backend.MemberChannels("user1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"chan1", "chan2"}, channels)
}

func TestCleanupOrphans(t *testing.T) {
	backend := newTestBackend(t)
	_, err := backend.OpenTicket("guild1", "chan1", "user1", model.TicketClan)
	require.NoError(t, err)
	_, err = backend.OpenTicket("guild1", "chan2", "user2", model.TicketClan)
	require.NoError(t, err)

	require.NoError(t, backend.CleanupOrphans(map[string]bool{"chan1": true}))

	_, err = backend.TicketByChannel("chan1")
	assert.NoError(t, err)
	_, err = backend.TicketByChannel("chan2")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
