package bot

import (
	"errors"
	"testing"

	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomIDRoundTrip(t *testing.T) {
	id := buildCustomID(idClanSelect, "some-token", "1")
	assert.Equal(t, "clan_select|some-token|1", id)

	head, args := parseCustomID(id)
	assert.Equal(t, idClanSelect, head)
	assert.Equal(t, []string{"some-token", "1"}, args)
}

func TestParseCustomIDWithoutArgs(t *testing.T) {
	head, args := parseCustomID(idClanStart)
	assert.Equal(t, idClanStart, head)
	assert.Empty(t, args)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░░░░░░░", progressBar(0, 0))
	assert.Equal(t, "██████████", progressBar(4, 4))
	assert.Equal(t, "█████░░░░░", progressBar(2, 4))
}

func TestDisabledRows(t *testing.T) {
	rows := disabledRows([]discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{CustomID: "menu"},
		}},
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.Button{CustomID: "button", Label: "Go"},
		}},
	})

	require.Len(t, rows, 2)
	menu := rows[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	assert.True(t, menu.Disabled)
	button := rows[1].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	assert.True(t, button.Disabled)
	assert.Equal(t, "Go", button.Label)
}

func TestOperatorReportCarriesRespondButton(t *testing.T) {
	report := operatorReport("user1", errors.New("boom"))

	require.Len(t, report.Components, 1)
	row := report.Components[0].(discordgo.ActionsRow)
	button := row.Components[0].(discordgo.Button)
	assert.Equal(t, "bug_respond_button|user1", button.CustomID)

	require.Len(t, report.Embeds, 1)
	assert.Contains(t, report.Embeds[0].Description, "boom")
}

func TestMaintenanceEmbedReusesRouterText(t *testing.T) {
	assert.Contains(t, maintenanceEmbed().Description, maintenanceMessage)
}

func TestEmojiPrefix(t *testing.T) {
	assert.Empty(t, emojiPrefix(&model.Clan{}))
	assert.Equal(t, "⚔️ ", emojiPrefix(&model.Clan{EmojiName: "⚔️"}))
}
