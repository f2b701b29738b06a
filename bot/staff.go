package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
)

// staffMenuRow renders the position picker for a staff ticket. Only
// open positions are offered.
func (bot *AllianceBot) staffMenuRow() discordgo.MessageComponent {
	positions, err := bot.Backend.Positions()
	if err != nil {
		bot.Logger.Errorf("error loading staff positions: %s", err.Error())
	}
	var options []discordgo.SelectMenuOption
	for _, position := range positions {
		if !position.Open {
			continue
		}
		options = append(options, discordgo.SelectMenuOption{
			Label: position.Name,
			Value: position.Name,
		})
	}
	if len(options) == 0 {
		options = append(options, discordgo.SelectMenuOption{
			Label: "No positions are open right now",
			Value: "none",
		})
	}
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.SelectMenu{
			CustomID:    idStaffStartMenu,
			Placeholder: "Pick a position",
			Options:     options,
		},
	}}
}

// onStaffMenu opens the interview modal for the picked position.
func (bot *AllianceBot) onStaffMenu(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	ticket, err := bot.Backend.TicketByChannel(i.ChannelID)
	if err != nil {
		return err
	}
	if ticket.OwnerID != user.ID {
		return fmt.Errorf("only the applicant can fill in this form: %w", common.ErrForbidden)
	}

	values := i.MessageComponentData().Values
	if len(values) == 0 || values[0] == "none" {
		return fmt.Errorf("no position selected: %w", common.ErrValidation)
	}
	position, err := bot.Backend.PositionByName(values[0])
	if err != nil {
		return err
	}
	if !position.Open {
		return fmt.Errorf("applications for %s are closed: %w", position.Name, common.ErrValidation)
	}

	// Modals carry at most five inputs.
	questions := position.Questions
	if len(questions) > 5 {
		questions = questions[:5]
	}
	rows := make([]discordgo.MessageComponent, 0, len(questions))
	for n, question := range questions {
		style := discordgo.TextInputShort
		if question.Paragraph {
			style = discordgo.TextInputParagraph
		}
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    fmt.Sprintf("staff_answer_%d", n),
				Label:       question.Question,
				Style:       style,
				Placeholder: question.Placeholder,
				Required:    true,
				MaxLength:   1000,
			},
		}})
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   modalPrefix + buildCustomID("staff_form", position.Name),
			Title:      fmt.Sprintf("%s Application", position.Name),
			Components: rows,
		},
	})
}

// onStaffFormModal posts the summary with the trial controls and hands
// the channel over to the reviewers.
func (bot *AllianceBot) onStaffFormModal(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("malformed staff form id: %w", common.ErrValidation)
	}
	user := interactionUser(i)
	position, err := bot.Backend.PositionByName(args[0])
	if err != nil {
		return err
	}
	settings, err := bot.Backend.Settings(bot.guildOf(i))
	if err != nil {
		return err
	}

	answers := modalValues(i)
	fields := make([]*discordgo.MessageEmbedField, 0, len(answers))
	for n, answer := range answers {
		label := fmt.Sprintf("Question %d", n+1)
		if n < len(position.Questions) {
			label = position.Questions[n].Question
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: label, Value: answer})
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s Application of %s", position.Name, user.Username),
		Description: fmt.Sprintf("Submitted by <@%s>.", user.ID),
		Fields:      fields,
		Color:       embedColor,
	}

	_, err = s.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@&%s> <@&%s> A new application is in.",
			settings.ModeratorRoleID, settings.AdministrationRoleID),
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Start Trial", Style: discordgo.SuccessButton,
					CustomID: buildCustomID(idStartTrial, position.Name)},
				discordgo.Button{Label: "Delay Trial", Style: discordgo.SecondaryButton,
					CustomID: buildCustomID(idDelayTrial, position.Name)},
				discordgo.Button{Label: "Deny", Style: discordgo.DangerButton,
					CustomID: idDenyTrial},
			}},
		},
	})
	if err != nil {
		return err
	}

	_, err = s.ChannelEdit(i.ChannelID, &discordgo.ChannelEdit{
		Name: fmt.Sprintf("%s┃%s", position.Prefix, strings.ToLower(user.Username)),
	})
	if err != nil {
		bot.Logger.Errorf("error renaming staff ticket %s: %s", i.ChannelID, err.Error())
	}
	return bot.replyEphemeral(s, i, "Thanks! The team will review your application shortly.")
}

// onTrialButton asks the reviewer for the duration via a modal.
func (bot *AllianceBot) onTrialButton(s *discordgo.Session, i *discordgo.InteractionCreate, head string, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("malformed trial button id: %w", common.ErrValidation)
	}
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	trialType := args[0]

	rows := []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.TextInput{
				CustomID:    "trial_days",
				Label:       fmt.Sprintf("Trial duration in days (%d-%d)", 3, 14),
				Style:       discordgo.TextInputShort,
				Placeholder: "7",
				Required:    true,
				MaxLength:   2,
			},
		}},
	}
	title := "Start Trial"
	if head == idDelayTrial {
		title = "Delay Trial"
		rows = append([]discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    "delay_days",
					Label:       fmt.Sprintf("Start the trial in how many days? (%d-%d)", 1, 30),
					Style:       discordgo.TextInputShort,
					Placeholder: "3",
					Required:    true,
					MaxLength:   2,
				},
			}},
		}, rows...)
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID:   modalPrefix + buildCustomID(head, trialType),
			Title:      title,
			Components: rows,
		},
	})
}

// onTrialStartModal starts the trial immediately and moves the channel
// into the trials category.
func (bot *AllianceBot) onTrialStartModal(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("malformed trial modal id: %w", common.ErrValidation)
	}
	ticket, err := bot.Backend.TicketByChannel(i.ChannelID)
	if err != nil {
		return err
	}
	values := modalValues(i)
	if len(values) < 1 {
		return fmt.Errorf("missing trial duration: %w", common.ErrValidation)
	}
	days, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil {
		return fmt.Errorf("%q is not a number of days: %w", values[0], common.ErrValidation)
	}
	event, err := bot.Backend.ScheduleTrialEnd(i.ChannelID, ticket.OwnerID, args[0], days)
	if err != nil {
		return err
	}
	bot.startTrialSideEffects(i.ChannelID, ticket, event)
	return bot.replyEphemeral(s, i, fmt.Sprintf("Trial started, ends <t:%d:R>.", event.FireAt.Unix()))
}

// onTrialDelayModal schedules the trial to start later.
func (bot *AllianceBot) onTrialDelayModal(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("malformed trial modal id: %w", common.ErrValidation)
	}
	ticket, err := bot.Backend.TicketByChannel(i.ChannelID)
	if err != nil {
		return err
	}
	values := modalValues(i)
	if len(values) < 2 {
		return fmt.Errorf("missing delay or duration: %w", common.ErrValidation)
	}
	delayDays, err := strconv.Atoi(strings.TrimSpace(values[0]))
	if err != nil {
		return fmt.Errorf("%q is not a number of days: %w", values[0], common.ErrValidation)
	}
	trialDays, err := strconv.Atoi(strings.TrimSpace(values[1]))
	if err != nil {
		return fmt.Errorf("%q is not a number of days: %w", values[1], common.ErrValidation)
	}
	event, err := bot.Backend.DelayTrial(i.ChannelID, ticket.OwnerID, args[0], delayDays, trialDays)
	if err != nil {
		return err
	}
	bot.sendText(i.ChannelID, fmt.Sprintf(
		"<@%s> Your %d day trial will start <t:%d:R>.", ticket.OwnerID, trialDays, event.FireAt.Unix()))
	return bot.replyEphemeral(s, i, "Trial delayed.")
}

// onDenyTrial closes the application without a trial.
func (bot *AllianceBot) onDenyTrial(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	ticket, err := bot.Backend.TicketByChannel(i.ChannelID)
	if err != nil {
		return err
	}
	if err := bot.Backend.RemoveTrialEvent(i.ChannelID, ticket.OwnerID); err != nil {
		return err
	}
	bot.sendText(i.ChannelID, fmt.Sprintf(
		"<@%s> Your application was not accepted this time. Thank you for applying, and feel free to try again later.",
		ticket.OwnerID))
	return bot.replyEphemeral(s, i, "Application denied.")
}

// startTrialSideEffects pins the trial embed and moves the channel.
func (bot *AllianceBot) startTrialSideEffects(channelID string, ticket *model.Ticket, event *model.TrialEvent) {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("%s Trial", event.Type),
		Description: fmt.Sprintf("<@%s> is on a %d day trial, ending <t:%d:F>.",
			ticket.OwnerID, event.Days, event.FireAt.Unix()),
		Color: embedColor,
	}
	message, err := bot.Discord.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		bot.Logger.Errorf("error announcing trial in %s: %s", channelID, err.Error())
	} else if err := bot.Discord.ChannelMessagePin(channelID, message.ID); err != nil {
		bot.Logger.Errorf("error pinning trial message in %s: %s", channelID, err.Error())
	}

	settings, err := bot.Backend.Settings(ticket.GuildID)
	if err != nil {
		bot.Logger.Errorf("error loading settings for guild %s: %s", ticket.GuildID, err.Error())
		return
	}
	if settings.StaffTrialsCategoryID != "" {
		_, err = bot.Discord.ChannelEdit(channelID, &discordgo.ChannelEdit{
			ParentID: settings.StaffTrialsCategoryID,
		})
		if err != nil {
			bot.Logger.Errorf("error moving trial channel %s: %s", channelID, err.Error())
		}
	}
}

// handleTrialDue reacts to the sweeper. A starting trial gets its
// announcement, an ending one gets the vote prompt.
func (bot *AllianceBot) handleTrialDue(due common.TrialDueNotification) {
	event := due.Event
	ticket, err := bot.Backend.TicketByChannel(event.ChannelID)
	if err != nil {
		bot.Logger.Infof("Trial event for %s has no ticket, skipping: %s", event.ChannelID, err.Error())
		return
	}

	switch due.Action {
	case model.TrialActionStart:
		bot.startTrialSideEffects(event.ChannelID, ticket, &event)
		bot.sendText(event.ChannelID, fmt.Sprintf("<@%s> Your trial starts today, good luck!", event.MemberID))
	case model.TrialActionEnd:
		settings, err := bot.Backend.Settings(ticket.GuildID)
		if err != nil {
			bot.Logger.Errorf("error loading settings for guild %s: %s", ticket.GuildID, err.Error())
			return
		}
		_, err = bot.Discord.ChannelMessageSendComplex(event.ChannelID, &discordgo.MessageSend{
			Content: fmt.Sprintf("<@&%s> The trial of <@%s> has ended.", settings.ModeratorRoleID, event.MemberID),
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "Trial Complete",
				Description: "Open the vote to decide the outcome.",
				Color:       embedColor,
			}},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Open Vote", Style: discordgo.PrimaryButton,
						CustomID: buildCustomID(idVoteStart, event.Type)},
				}},
			},
		})
		if err != nil {
			bot.Logger.Errorf("error sending vote prompt to %s: %s", event.ChannelID, err.Error())
		}
	}
}

// requireStaff rejects interactions from members without a reviewer
// role.
func (bot *AllianceBot) requireStaff(i *discordgo.InteractionCreate) error {
	if i.Member == nil {
		return fmt.Errorf("this only works inside the server: %w", common.ErrForbidden)
	}
	settings, err := bot.Backend.Settings(bot.guildOf(i))
	if err != nil {
		return err
	}
	for _, role := range i.Member.Roles {
		switch role {
		case settings.ModeratorRoleID, settings.AdministrationRoleID,
			settings.LeaderRoleID, settings.DevelopmentRoleID:
			return nil
		}
	}
	return fmt.Errorf("this is reserved for staff members: %w", common.ErrForbidden)
}

func (bot *AllianceBot) guildOf(i *discordgo.InteractionCreate) string {
	if i.GuildID != "" {
		return i.GuildID
	}
	return bot.GuildID
}

// modalValues collects the text inputs of a modal submit in order.
func modalValues(i *discordgo.InteractionCreate) []string {
	var values []string
	for _, component := range i.ModalSubmitData().Components {
		row, ok := component.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				values = append(values, input.Value)
			}
		}
	}
	return values
}
