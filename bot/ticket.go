package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
)

// TicketKind maps one ticket type to its category binding, channel
// prefix and opening content. The lookup table replaces string dispatch.
type TicketKind struct {
	Prefix      string
	Title       string
	Description string
	StartID     string
	StartLabel  string
	Category    func(*model.GuildSettings) string
}

var TicketKinds = map[model.TicketType]TicketKind{
	model.TicketClan: {
		Prefix:      "apply",
		Title:       "Clan Application",
		Description: "Press the button below to start the interview. A staff member will review your application once it is complete.",
		StartID:     idClanStart,
		StartLabel:  "Start Interview",
		Category:    func(s *model.GuildSettings) string { return s.ClanTicketsCategoryID },
	},
	model.TicketFWA: {
		Prefix:      "fwa",
		Title:       "FWA Application",
		Description: "Press the button below to start the FWA interview. Have your war-weight screenshots ready.",
		StartID:     idFWAStart,
		StartLabel:  "Start Interview",
		Category:    func(s *model.GuildSettings) string { return s.FWATicketsCategoryID },
	},
	model.TicketStaff: {
		Prefix:      "staff",
		Title:       "Staff Application",
		Description: "Pick the position you want to apply for in the menu below.",
		StartID:     idStaffStartMenu,
		StartLabel:  "",
		Category:    func(s *model.GuildSettings) string { return s.StaffApplyCategoryID },
	},
	model.TicketCoaching: {
		Prefix:      "coach",
		Title:       "Coaching Request",
		Description: "Press the button below and answer the questions; a coach will pick your request up.",
		StartID:     idCoachingStart,
		StartLabel:  "Start",
		Category:    func(s *model.GuildSettings) string { return s.SupportCategoryID },
	},
	model.TicketPartnership: {
		Prefix:      "partner",
		Title:       "Partnership Request",
		Description: "Press the button below and answer the questions about the partnership you propose.",
		StartID:     idPartnerStart,
		StartLabel:  "Start",
		Category:    func(s *model.GuildSettings) string { return s.SupportCategoryID },
	},
	model.TicketSupport: {
		Prefix:      "support",
		Title:       "Support Ticket",
		Description: "Describe your issue here; a staff member will be with you shortly.",
		StartID:     idSupportStart,
		StartLabel:  "I need a human",
		Category:    func(s *model.GuildSettings) string { return s.SupportCategoryID },
	},
	model.TicketChampionsCWL: {
		Prefix:      "cwl",
		Title:       "Champions CWL Application",
		Description: "Press the button below and answer the CWL performance questions.",
		StartID:     idChampionsStart,
		StartLabel:  "Start",
		Category:    func(s *model.GuildSettings) string { return s.AfterCWLCategoryID },
	},
}

// CreateTicket allocates the channel backing a ticket and registers it.
func (bot *AllianceBot) CreateTicket(guildID, ownerID string, ticketType model.TicketType) (*model.Ticket, error) {
	kind, ok := TicketKinds[ticketType]
	if !ok {
		return nil, fmt.Errorf("unknown ticket type %s: %w", ticketType, common.ErrValidation)
	}
	if existing, err := bot.Backend.OpenTicketOf(ownerID, ticketType); err == nil {
		return nil, fmt.Errorf("you already have an open ticket in <#%s>: %w", existing.ChannelID, common.ErrValidation)
	}

	settings, err := bot.Backend.Settings(guildID)
	if err != nil {
		return nil, err
	}

	username := ownerID
	if member, err := bot.Discord.GuildMember(guildID, ownerID); err == nil {
		username = member.User.Username
	}

	categoryID := kind.Category(settings)
	overwrites := []*discordgo.PermissionOverwrite{
		{
			ID:   guildID, // @everyone shares the guild ID
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    ownerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionAttachFiles,
		},
	}
	if categoryID != "" {
		if category, err := bot.Discord.Channel(categoryID); err == nil {
			for _, overwrite := range category.PermissionOverwrites {
				if overwrite.ID == guildID || overwrite.ID == ownerID {
					continue
				}
				overwrites = append(overwrites, overwrite)
			}
		}
	}

	channel, err := bot.Discord.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 fmt.Sprintf("%s┃%s", kind.Prefix, strings.ToLower(username)),
		Type:                 discordgo.ChannelTypeGuildText,
		ParentID:             categoryID,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return nil, err
	}

	ticket, err := bot.Backend.OpenTicket(guildID, channel.ID, ownerID, ticketType)
	if err != nil {
		// Registry refused after the channel went up; take the channel down again.
		if _, delErr := bot.Discord.ChannelDelete(channel.ID); delErr != nil {
			bot.Logger.Errorf("failed to remove orphaned ticket channel %s: %s", channel.ID, delErr.Error())
		}
		return nil, err
	}

	embed := &discordgo.MessageEmbed{
		Title:       kind.Title,
		Description: kind.Description,
		Color:       embedColor,
	}
	send := &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s>", ownerID),
		Embeds:  []*discordgo.MessageEmbed{embed},
	}
	if ticketType == model.TicketStaff {
		send.Components = []discordgo.MessageComponent{bot.staffMenuRow()}
	} else if kind.StartLabel != "" {
		send.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: kind.StartLabel, Style: discordgo.SuccessButton, CustomID: kind.StartID},
			}},
		}
	}
	_, err = bot.Discord.ChannelMessageSendComplex(channel.ID, send)
	if err != nil {
		bot.Logger.Errorf("error seeding ticket %s: %s", channel.ID, err.Error())
	}
	return ticket, nil
}

// onTicketDeleteConfirm deletes the channel after the explicit yes.
func (bot *AllianceBot) onTicketDeleteConfirm(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("malformed delete confirm id: %w", common.ErrValidation)
	}
	err := bot.replyEphemeral(s, i, "Deleting the ticket now.")
	if err != nil {
		bot.Logger.Errorf("error acknowledging delete: %s", err.Error())
	}
	_, err = s.ChannelDelete(args[0])
	return err
}

// onTicketReapply opens a fresh clan ticket from the deletion DM.
func (bot *AllianceBot) onTicketReapply(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	user := interactionUser(i)
	guildID := bot.GuildID
	if guildID == "" {
		return fmt.Errorf("no guild configured for reapplying: %w", common.ErrNotFound)
	}
	ticket, err := bot.CreateTicket(guildID, user.ID, model.TicketClan)
	if err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("A new ticket is waiting for you in <#%s>.", ticket.ChannelID))
}

// handleTicketExpired runs when an inactivity timer fires: delete the
// channel and DM the owner with a reapply affordance.
func (bot *AllianceBot) handleTicketExpired(expired common.TicketExpiredNotification) {
	bot.Logger.Infof("Ticket %s expired, deleting", expired.Ticket.ChannelID)
	_, err := bot.Discord.ChannelDelete(expired.Ticket.ChannelID)
	if err != nil {
		bot.Logger.Errorf("failed to delete expired ticket %s: %s", expired.Ticket.ChannelID, err.Error())
		return
	}
	dm, err := bot.Discord.UserChannelCreate(expired.Ticket.OwnerID)
	if err != nil {
		bot.Logger.Errorf("failed to open DM with %s: %s", expired.Ticket.OwnerID, err.Error())
		return
	}
	_, err = bot.Discord.ChannelMessageSendComplex(dm.ID, &discordgo.MessageSend{
		Content: "Your ticket was closed for inactivity. You are welcome to apply again any time!",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Reapply", Style: discordgo.PrimaryButton, CustomID: idTicketReapply},
			}},
		},
	})
	if err != nil {
		bot.Logger.Errorf("failed to DM %s: %s", expired.Ticket.OwnerID, err.Error())
	}
}

// handleCWLEnd pings after-CWL ticket owners once the season closes.
func (bot *AllianceBot) handleCWLEnd(cwl common.CWLEndNotification) {
	for _, ticket := range cwl.Tickets {
		bot.sendText(ticket.ChannelID, fmt.Sprintf(
			"<@%s> CWL has ended! Please tell us how it went and whether you want to stay for next season.",
			ticket.OwnerID))
	}
}

// armTicket schedules deletion and warns the channel.
func (bot *AllianceBot) armTicket(channelID, armedBy string, hours int) error {
	if hours < 3 || hours > 24 {
		return fmt.Errorf("inactivity delay must be 3-24 hours: %w", common.ErrValidation)
	}
	ticket, err := bot.Backend.TicketByChannel(channelID)
	if err != nil {
		return err
	}
	timer, err := bot.Backend.ArmTicketTimer(channelID, ticket.OwnerID, armedBy, time.Duration(hours)*time.Hour)
	if err != nil {
		return err
	}
	bot.sendText(channelID, fmt.Sprintf(
		"<@%s> This ticket will be deleted <t:%d:R> unless you reply here.",
		ticket.OwnerID, timer.FireAt.Unix()))
	return nil
}
