package bot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/afo-tools/afo-alliance-bot/coc"
	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/bwmarrin/discordgo"
)

// OperatorID receives unexpected-error reports by DM. Empty disables
// routing.
var OperatorID = ""

const maintenanceMessage = "It seems that Clash of Clans is having a maintenance break. Please try again later."

// replyError turns an error into user-facing feedback. Expected kinds
// get a plain ephemeral message; anything else is logged in full and
// forwarded to the operator while the user sees a generic apology.
func (bot *AllianceBot) replyError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) {
	var content string
	switch {
	case errors.Is(err, common.ErrNotFound) || errors.Is(err, coc.ErrNotFound):
		content = "That player, clan or session could not be found."
	case errors.Is(err, coc.ErrInvalidTag):
		content = "That tag is not a valid Clash of Clans tag."
	case errors.Is(err, common.ErrForbidden):
		content = "You are not allowed to do that."
	case errors.Is(err, common.ErrValidation):
		content = fmt.Sprintf("Invalid input: %s", userFacing(err))
	case errors.Is(err, common.ErrTimeout):
		content = "This interaction timed out. Use the restart button to try again."
	case errors.Is(err, common.ErrMaintenance) || errors.Is(err, coc.ErrMaintenance):
		content = maintenanceMessage
	default:
		bot.Logger.Errorf("unexpected error handling interaction: %s", err.Error())
		bot.notifyOperator(i, err)
		content = "An unexpected error has occurred. The developers have been notified, please try again."
	}

	replyErr := bot.replyEphemeral(s, i, content)
	if replyErr != nil {
		// The interaction may already be acknowledged; fall back to a followup.
		_, replyErr = s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		if replyErr != nil {
			bot.Logger.Errorf("error delivering error reply: %s", replyErr.Error())
		}
	}
}

// userFacing strips the wrapped sentinel suffix from a validation error.
func userFacing(err error) string {
	return strings.TrimSuffix(err.Error(), ": "+common.ErrValidation.Error())
}

func (bot *AllianceBot) notifyOperator(i *discordgo.InteractionCreate, err error) {
	if OperatorID == "" {
		return
	}
	channel, dmErr := bot.Discord.UserChannelCreate(OperatorID)
	if dmErr != nil {
		bot.Logger.Errorf("error opening operator DM: %s", dmErr.Error())
		return
	}
	reporter := "unknown"
	if i.Member != nil && i.Member.User != nil {
		reporter = i.Member.User.ID
	} else if i.User != nil {
		reporter = i.User.ID
	}
	_, dmErr = bot.Discord.ChannelMessageSendComplex(channel.ID, operatorReport(reporter, err))
	if dmErr != nil {
		bot.Logger.Errorf("error sending operator report: %s", dmErr.Error())
	}
}

// operatorReport renders the error for the operator DM, with a button
// to answer the reporter directly.
func operatorReport(reporter string, err error) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       "Unexpected bot error",
			Description: fmt.Sprintf("```\n%s\n```", err.Error()),
			Fields: []*discordgo.MessageEmbedField{
				{Name: "Reported by", Value: fmt.Sprintf("<@%s>", reporter)},
			},
			Color: embedColor,
		}},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Respond to reporter",
					Style:    discordgo.PrimaryButton,
					CustomID: buildCustomID(idBugRespond, reporter),
				},
			}},
		},
	}
}

// onBugRespond opens the response modal for the reporter named in the
// button's custom ID.
func (bot *AllianceBot) onBugRespond(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("malformed bug respond id: %w", common.ErrValidation)
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: modalPrefix + buildCustomID(idBugRespond, args[0]),
			Title:    "Respond to reporter",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.TextInput{
						CustomID:    "bug_response",
						Label:       "Message to the reporter",
						Style:       discordgo.TextInputParagraph,
						Required:    true,
						MaxLength:   2000,
						Placeholder: "We looked into your report...",
					},
				}},
			},
		},
	})
}

// onBugRespondModal relays the operator's answer to the reporter by DM.
func (bot *AllianceBot) onBugRespondModal(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("malformed bug respond modal id: %w", common.ErrValidation)
	}
	values := modalValues(i)
	if len(values) == 0 || values[0] == "" {
		return fmt.Errorf("empty response: %w", common.ErrValidation)
	}
	response := values[0]
	channel, err := bot.Discord.UserChannelCreate(args[0])
	if err != nil {
		return err
	}
	_, err = bot.Discord.ChannelMessageSendEmbed(channel.ID, &discordgo.MessageEmbed{
		Title:       "About your bug report",
		Description: response,
		Color:       embedColor,
	})
	if err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, "Response delivered.")
}
