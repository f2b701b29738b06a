package backend

import (
	"testing"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaffPositions(t *testing.T) {
	backend := newTestBackend(t)

	questions := []string{"Why do you want the role?", "How active are you?"}
	require.NoError(t, backend.AddPosition("Gatekeeper", "gk", questions))

	err := backend.AddPosition("Gatekeeper", "gk", questions)
	assert.ErrorIs(t, err, common.ErrValidation, "duplicate position name")

	position, err := backend.PositionByName("Gatekeeper")
	require.NoError(t, err)
	assert.True(t, position.Open)
	require.Len(t, position.Questions, 2)
	assert.Equal(t, questions[0], position.Questions[0].Question)

	require.NoError(t, backend.SetPositionOpen("Gatekeeper", false))
	position, err = backend.PositionByName("Gatekeeper")
	require.NoError(t, err)
	assert.False(t, position.Open)

	require.NoError(t, backend.RemovePosition("Gatekeeper"))
	_, err = backend.PositionByName("Gatekeeper")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestEditQuestion(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.AddPosition("Coach", "coach", []string{"First?", "Second?"}))

	require.NoError(t, backend.EditQuestion("Coach", 1, "Second, revised?", "hint"))

	err := backend.EditQuestion("Coach", 5, "Out of range?", "")
	assert.ErrorIs(t, err, common.ErrNotFound)

	position, err := backend.PositionByName("Coach")
	require.NoError(t, err)
	assert.Equal(t, "Second, revised?", position.Questions[1].Question)
	assert.Equal(t, "hint", position.Questions[1].Placeholder)
}

func TestSettingsDefaults(t *testing.T) {
	backend := newTestBackend(t)

	settings, err := backend.Settings("guild1")
	require.NoError(t, err)
	assert.Equal(t, "guild1", settings.GuildID)
	assert.Equal(t, DefaultMinFWATownHall, settings.MinFWATownHall)

	settings.ModeratorRoleID = "role1"
	settings.MinFWATownHall = 15
	require.NoError(t, backend.SaveSettings(settings))

	loaded, err := backend.Settings("guild1")
	require.NoError(t, err)
	assert.Equal(t, "role1", loaded.ModeratorRoleID)
	assert.Equal(t, 15, loaded.MinFWATownHall)
}
