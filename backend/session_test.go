package backend

import (
	"testing"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestSession(t *testing.T, backend *Backend) *model.Session {
	t.Helper()
	session, err := backend.StartSession("user1", "chan1", []Account{
		{Tag: "#AAA", Name: "Main"},
		{Tag: "#BBB", Name: "Alt"},
	})
	require.NoError(t, err)
	return session
}

func TestSessionRoundTrip(t *testing.T) {
	backend := newTestBackend(t)
	session := startTestSession(t, backend)

	loaded, err := backend.SessionByToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCollecting, loaded.State)
	require.Len(t, loaded.Selections, 2)
	assert.False(t, loaded.Complete())
	assert.Equal(t, 0, loaded.Selected())

	_, err = backend.SessionByToken("no-such-token")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSelectClan(t *testing.T) {
	backend := newTestBackend(t)
	session := startTestSession(t, backend)

	updated, err := backend.SelectClan(session.Token, "user1", "#AAA", "#CLAN1")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Selected())
	assert.False(t, updated.Complete())

	updated, err = backend.SelectClan(session.Token, "user1", "#BBB", "#CLAN2")
	require.NoError(t, err)
	assert.True(t, updated.Complete())
}

func TestSelectClanErrors(t *testing.T) {
	backend := newTestBackend(t)
	session := startTestSession(t, backend)

	_, err := backend.SelectClan(session.Token, "intruder", "#AAA", "#CLAN1")
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = backend.SelectClan(session.Token, "user1", "#ZZZ", "#CLAN1")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestCancelSessionIsIdempotent(t *testing.T) {
	backend := newTestBackend(t)
	session := startTestSession(t, backend)

	_, err := backend.SelectClan(session.Token, "user1", "#AAA", "#CLAN1")
	require.NoError(t, err)

	cancelled, err := backend.CancelSession(session.Token, "user1")
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled.Selected())

	cancelled, err = backend.CancelSession(session.Token, "user1")
	require.NoError(t, err)
	assert.Equal(t, 0, cancelled.Selected())

	_, err = backend.CancelSession(session.Token, "intruder")
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestConfirmSession(t *testing.T) {
	backend := newTestBackend(t)
	session := startTestSession(t, backend)

	// No clan chosen yet.
	_, err := backend.ConfirmSession(session.Token, "user1")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = backend.SelectClan(session.Token, "user1", "#AAA", "#CLAN1")
	require.NoError(t, err)

	_, err = backend.ConfirmSession(session.Token, "intruder")
	assert.ErrorIs(t, err, common.ErrForbidden)

	// A partial selection is enough to confirm.
	confirmed, err := backend.ConfirmSession(session.Token, "user1")
	require.NoError(t, err)
	assert.Equal(t, model.SessionConfirmed, confirmed.State)
	assert.Equal(t, 1, confirmed.Selected())
}

func TestDeleteSessionByMessage(t *testing.T) {
	backend := newTestBackend(t)
	session := startTestSession(t, backend)
	require.NoError(t, backend.SetSessionMessage(session.Token, "msg1"))

	require.NoError(t, backend.DeleteSessionByMessage("msg1"))

	_, err := backend.SessionByToken(session.Token)
	assert.ErrorIs(t, err, common.ErrNotFound)

	var count int64
	backend.DB.Model(&model.Selection{}).Count(&count)
	assert.Zero(t, count, "selections must go with the session")
}

func TestConfirmedSessionIsFinal(t *testing.T) {
	backend := newTestBackend(t)
	session := startTestSession(t, backend)
	_, err := backend.SelectClan(session.Token, "user1", "#AAA", "#CLAN1")
	require.NoError(t, err)
	_, err = backend.ConfirmSession(session.Token, "user1")
	require.NoError(t, err)

	_, err = backend.ConfirmSession(session.Token, "user1")
	assert.ErrorIs(t, err, common.ErrValidation, "re-confirm")

	_, err = backend.SelectClan(session.Token, "user1", "#BBB", "#CLAN2")
	assert.ErrorIs(t, err, common.ErrValidation, "select on a confirmed session")

	_, err = backend.CancelSession(session.Token, "user1")
	assert.ErrorIs(t, err, common.ErrValidation, "cancel on a confirmed session")

	require.NoError(t, backend.DeleteSessionByToken(session.Token))
	_, err = backend.SessionByToken(session.Token)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
