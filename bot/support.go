package bot

import (
	"fmt"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
)

// The simple ticket types post a fixed questionnaire and ping the
// responsible role; no multi-step flow is involved.

func (bot *AllianceBot) onSupportStart(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return bot.startQuestionnaire(s, i, "Support",
		func(settings *model.GuildSettings) string { return settings.ModeratorRoleID },
		[]string{
			"What do you need help with?",
			"Which clan or channel is this about?",
		})
}

func (bot *AllianceBot) onCoachingStart(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return bot.startQuestionnaire(s, i, "Coaching",
		func(settings *model.GuildSettings) string { return settings.CoachRoleID },
		[]string{
			"What is your player tag?",
			"What do you want to improve? (attacks, bases, upgrade order)",
			"When are you usually available?",
		})
}

func (bot *AllianceBot) onPartnerStart(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return bot.startQuestionnaire(s, i, "Partnership",
		func(settings *model.GuildSettings) string { return settings.AdministrationRoleID },
		[]string{
			"Which community or clan do you represent?",
			"How large is your community?",
			"What kind of partnership do you have in mind?",
		})
}

func (bot *AllianceBot) onChampionsStart(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	return bot.startQuestionnaire(s, i, "Champions CWL",
		func(settings *model.GuildSettings) string { return settings.RecruitmentRoleID },
		[]string{
			"What is your player tag?",
			"What league did you play your last CWL in, and what was your hit rate?",
			"Post screenshots of your recent CWL performance.",
		})
}

func (bot *AllianceBot) startQuestionnaire(s *discordgo.Session, i *discordgo.InteractionCreate, title string,
	role func(*model.GuildSettings) string, questions []string) error {
	user := interactionUser(i)
	ticket, err := bot.Backend.TicketByChannel(i.ChannelID)
	if err != nil {
		return err
	}
	if ticket.OwnerID != user.ID {
		return fmt.Errorf("only the ticket owner can start this: %w", common.ErrForbidden)
	}
	settings, err := bot.Backend.Settings(ticket.GuildID)
	if err != nil {
		return err
	}

	description := "Please answer these right here in the channel:"
	for n, question := range questions {
		description += fmt.Sprintf("\n**%d.** %s", n+1, question)
	}
	content := ""
	if roleID := role(settings); roleID != "" {
		content = fmt.Sprintf("<@&%s>", roleID)
	}
	_, err = s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Content: content,
		Embeds: []*discordgo.MessageEmbed{{
			Title:       fmt.Sprintf("%s Questions", title),
			Description: description,
			Color:       embedColor,
		}},
	})
	if err != nil {
		return err
	}
	bot.ackComponent(s, i)
	return nil
}
