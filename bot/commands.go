package bot

import (
	"fmt"
	"strings"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
)

type commandHandler func(*discordgo.Session, *discordgo.InteractionCreate) error

func (bot *AllianceBot) commandHandlers() map[string]commandHandler {
	return map[string]commandHandler{
		"clan":   bot.onClanCommand,
		"player": bot.onPlayerCommand,
		"ticket": bot.onTicketCommand,
		"staff":  bot.onStaffCommand,
		"setup":  bot.onSetupCommand,
	}
}

// registerCommands overwrites the application commands. With a guild ID
// configured the commands are guild-scoped, which propagates instantly.
func (bot *AllianceBot) registerCommands() error {
	appID := bot.Discord.State.User.ID
	_, err := bot.Discord.ApplicationCommandBulkOverwrite(appID, bot.GuildID, commandDefinitions())
	return err
}

func commandDefinitions() []*discordgo.ApplicationCommand {
	tagOption := func(description string) *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tag",
			Description: description,
			Required:    true,
		}
	}
	clanTypeChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Competitive", Value: string(model.ClanTypeCompetitive)},
		{Name: "FWA", Value: string(model.ClanTypeFWA)},
		{Name: "CWL", Value: string(model.ClanTypeCWL)},
	}
	checkNameOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Which check",
		Required:    true,
		Choices: []*discordgo.ApplicationCommandOptionChoice{
			{Name: "Hero Level Sum", Value: "hero_sum"},
			{Name: "Hero Progress %", Value: "hero_max_pct"},
			{Name: "Overall Progress %", Value: "overall_max_pct"},
		},
	}
	minValueOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "min_value",
		Description: "Minimum value to pass",
		Required:    true,
	}
	ticketTypeChoices := []*discordgo.ApplicationCommandOptionChoice{
		{Name: "Clan Application", Value: string(model.TicketClan)},
		{Name: "FWA Application", Value: string(model.TicketFWA)},
		{Name: "Staff Application", Value: string(model.TicketStaff)},
		{Name: "Coaching", Value: string(model.TicketCoaching)},
		{Name: "Partnership", Value: string(model.TicketPartnership)},
		{Name: "Support", Value: string(model.TicketSupport)},
		{Name: "Champions CWL", Value: string(model.TicketChampionsCWL)},
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "clan",
			Description: "Manage the alliance clans",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Register a clan in the alliance",
					Options: []*discordgo.ApplicationCommandOption{
						tagOption("Clan tag"),
						{Type: discordgo.ApplicationCommandOptionString, Name: "type",
							Description: "Clan category", Required: true, Choices: clanTypeChoices},
						{Type: discordgo.ApplicationCommandOptionString, Name: "prefix",
							Description: "Channel name prefix", Required: true},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "required_th",
							Description: "Minimum town hall"},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "max_th",
							Description: "Maximum town hall (0 for none)"},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove",
					Description: "Remove a clan from the alliance",
					Options:     []*discordgo.ApplicationCommandOption{tagOption("Clan tag")},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "info",
					Description: "Show a registered clan",
					Options:     []*discordgo.ApplicationCommandOption{tagOption("Clan tag")},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list",
					Description: "List all registered clans",
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "edit",
					Description: "Change a clan's settings",
					Options: []*discordgo.ApplicationCommandOption{
						tagOption("Clan tag"),
						{Type: discordgo.ApplicationCommandOptionString, Name: "type",
							Description: "Clan category", Choices: clanTypeChoices},
						{Type: discordgo.ApplicationCommandOptionBoolean, Name: "recruitment",
							Description: "Whether the clan accepts applicants"},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "required_th",
							Description: "Minimum town hall"},
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "max_th",
							Description: "Maximum town hall (0 for none)"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "prefix",
							Description: "Channel name prefix"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "messages",
							Description: "Custom messages shown on accepted applications"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "questions",
							Description: "Gatekeeper questions shown on accepted applications"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "emoji",
							Description: "Emoji shown next to the clan name"},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommand, Name: "link",
					Description: "Bind a clan's roles and channels",
					Options: []*discordgo.ApplicationCommandOption{
						tagOption("Clan tag"),
						{Type: discordgo.ApplicationCommandOptionRole, Name: "role",
							Description: "Member role"},
						{Type: discordgo.ApplicationCommandOptionRole, Name: "gatekeeper_role",
							Description: "Gatekeeper role"},
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "chat_channel",
							Description: "Clan chat channel"},
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "announcement_channel",
							Description: "Clan announcement channel"},
						{Type: discordgo.ApplicationCommandOptionUser, Name: "leader",
							Description: "Discord account of the clan leader"},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommandGroup, Name: "check",
					Description: "Manage eligibility checks",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add",
							Description: "Add a check",
							Options:     []*discordgo.ApplicationCommandOption{tagOption("Clan tag"), checkNameOption, minValueOption}},
						{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove",
							Description: "Remove a check",
							Options:     []*discordgo.ApplicationCommandOption{tagOption("Clan tag"), checkNameOption}},
						{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "edit",
							Description: "Change a check's threshold",
							Options:     []*discordgo.ApplicationCommandOption{tagOption("Clan tag"), checkNameOption, minValueOption}},
					},
				},
			},
		},
		{
			Name:        "player",
			Description: "Link game accounts to Discord users",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "link",
					Description: "Link a player tag to your account",
					Options:     []*discordgo.ApplicationCommandOption{tagOption("Player tag")}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "unlink",
					Description: "Unlink one of your player tags",
					Options:     []*discordgo.ApplicationCommandOption{tagOption("Player tag")}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "whois",
					Description: "Look up who owns an account",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user",
							Description: "Discord user to look up"},
						{Type: discordgo.ApplicationCommandOptionString, Name: "tag",
							Description: "Player tag to look up"},
					}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "verify",
					Description: "Verify your account and get your roles",
					Options:     []*discordgo.ApplicationCommandOption{tagOption("Player tag")}},
			},
		},
		{
			Name:        "ticket",
			Description: "Manage ticket channels",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "create",
					Description: "Open a ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionString, Name: "type",
							Description: "Ticket type", Required: true, Choices: ticketTypeChoices},
						{Type: discordgo.ApplicationCommandOptionUser, Name: "user",
							Description: "Open on behalf of this user (staff only)"},
					}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "delete",
					Description: "Delete this ticket"},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "move",
					Description: "Move this ticket to another category",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionChannel, Name: "category",
							Description: "Target category", Required: true},
					}},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "arm",
					Description: "Schedule this ticket for deletion on inactivity",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionInteger, Name: "hours",
							Description: "Hours until deletion (3-24)", Required: true},
					}},
			},
		},
		{
			Name:        "staff",
			Description: "Manage staff positions and trials",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type: discordgo.ApplicationCommandOptionSubCommandGroup, Name: "position",
					Description: "Manage applyable positions",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add",
							Description: "Add a position",
							Options: []*discordgo.ApplicationCommandOption{
								{Type: discordgo.ApplicationCommandOptionString, Name: "name",
									Description: "Position name", Required: true},
								{Type: discordgo.ApplicationCommandOptionString, Name: "prefix",
									Description: "Channel name prefix", Required: true},
								{Type: discordgo.ApplicationCommandOptionString, Name: "questions",
									Description: "Interview questions, separated by semicolons", Required: true},
							}},
						{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove",
							Description: "Remove a position",
							Options: []*discordgo.ApplicationCommandOption{
								{Type: discordgo.ApplicationCommandOptionString, Name: "name",
									Description: "Position name", Required: true},
							}},
						{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "open",
							Description: "Open or close applications",
							Options: []*discordgo.ApplicationCommandOption{
								{Type: discordgo.ApplicationCommandOptionString, Name: "name",
									Description: "Position name", Required: true},
								{Type: discordgo.ApplicationCommandOptionBoolean, Name: "open",
									Description: "Accept applications", Required: true},
							}},
					},
				},
				{
					Type: discordgo.ApplicationCommandOptionSubCommandGroup, Name: "trial",
					Description: "Manage the trial in this channel",
					Options: []*discordgo.ApplicationCommandOption{
						{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "start",
							Description: "Start a trial in this ticket",
							Options: []*discordgo.ApplicationCommandOption{
								{Type: discordgo.ApplicationCommandOptionString, Name: "type",
									Description: "Position the trial is for", Required: true},
								{Type: discordgo.ApplicationCommandOptionInteger, Name: "days",
									Description: "Trial duration in days (3-14)", Required: true},
							}},
						{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "end",
							Description: "End the trial in this ticket now"},
					},
				},
			},
		},
		{
			Name:        "setup",
			Description: "Bind the bot to this server's roles and categories",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "moderator_role", Description: "Moderator role"},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "administration_role", Description: "Administration role"},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "recruitment_role", Description: "Recruitment team role"},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "development_role", Description: "Bot development team role"},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "leader_role", Description: "Leader role"},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "coach_role", Description: "Coach role"},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "fwa_rep_role", Description: "FWA representative role"},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "family_role", Description: "Family member role"},
				{Type: discordgo.ApplicationCommandOptionRole, Name: "visitor_role", Description: "Visitor role"},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "clan_tickets", Description: "Clan application category"},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "fwa_tickets", Description: "FWA application category"},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "staff_apply", Description: "Staff application category"},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "staff_trials", Description: "Staff trials category"},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "after_cwl", Description: "Champions CWL category"},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "support", Description: "Support category"},
				{Type: discordgo.ApplicationCommandOptionChannel, Name: "welcome_channel", Description: "Welcome channel"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "welcome_webhook", Description: "Welcome webhook ID"},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "min_fwa_th", Description: "Minimum FWA town hall"},
			},
		},
	}
}

func (bot *AllianceBot) onTicketCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return fmt.Errorf("missing subcommand: %w", common.ErrValidation)
	}
	sub := options[0]
	switch sub.Name {
	case "create":
		return bot.onTicketCreate(s, i, sub.Options)
	case "delete":
		return bot.onTicketDelete(s, i)
	case "move":
		return bot.onTicketMove(s, i, sub.Options)
	case "arm":
		return bot.onTicketArm(s, i, sub.Options)
	default:
		return fmt.Errorf("unknown subcommand %s: %w", sub.Name, common.ErrValidation)
	}
}

func (bot *AllianceBot) onTicketCreate(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	values := optionMap(options)
	owner := interactionUser(i)
	if target, ok := values["user"]; ok {
		if err := bot.requireStaff(i); err != nil {
			return err
		}
		owner = target.UserValue(s)
	}
	ticketType := model.TicketType(stringOption(values, "type"))
	ticket, err := bot.CreateTicket(bot.guildOf(i), owner.ID, ticketType)
	if err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Ticket opened: <#%s>", ticket.ChannelID))
}

// onTicketDelete asks for confirmation before taking the channel down.
func (bot *AllianceBot) onTicketDelete(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ticket, err := bot.Backend.TicketByChannel(i.ChannelID)
	if err != nil {
		return err
	}
	user := interactionUser(i)
	if ticket.OwnerID != user.ID {
		if err := bot.requireStaff(i); err != nil {
			return err
		}
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "This will delete the channel and everything in it. Are you sure?",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					discordgo.Button{Label: "Delete", Style: discordgo.DangerButton,
						CustomID: buildCustomID(idTicketDeleteConfirm, ticket.ChannelID)},
				}},
			},
		},
	})
}

func (bot *AllianceBot) onTicketMove(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	if _, err := bot.Backend.TicketByChannel(i.ChannelID); err != nil {
		return err
	}
	values := optionMap(options)
	category, ok := values["category"]
	if !ok {
		return fmt.Errorf("missing category: %w", common.ErrValidation)
	}
	target := category.ChannelValue(s)
	if target.Type != discordgo.ChannelTypeGuildCategory {
		return fmt.Errorf("%s is not a category: %w", target.Name, common.ErrValidation)
	}
	_, err := s.ChannelEdit(i.ChannelID, &discordgo.ChannelEdit{ParentID: target.ID})
	if err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Moved to **%s**.", target.Name))
}

func (bot *AllianceBot) onTicketArm(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	user := interactionUser(i)
	hours := intOption(optionMap(options), "hours")
	if err := bot.armTicket(i.ChannelID, user.ID, hours); err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, "Deletion timer armed.")
}

func (bot *AllianceBot) onStaffCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return fmt.Errorf("missing subcommand: %w", common.ErrValidation)
	}
	group := options[0]
	if len(group.Options) == 0 {
		return fmt.Errorf("missing subcommand: %w", common.ErrValidation)
	}
	sub := group.Options[0]
	values := optionMap(sub.Options)

	switch group.Name {
	case "position":
		switch sub.Name {
		case "add":
			questions := strings.Split(stringOption(values, "questions"), ";")
			for n := range questions {
				questions[n] = strings.TrimSpace(questions[n])
			}
			name := stringOption(values, "name")
			if err := bot.Backend.AddPosition(name, stringOption(values, "prefix"), questions); err != nil {
				return err
			}
			return bot.replyEphemeral(s, i, fmt.Sprintf("Added position **%s** with %d questions.", name, len(questions)))
		case "remove":
			name := stringOption(values, "name")
			if err := bot.Backend.RemovePosition(name); err != nil {
				return err
			}
			return bot.replyEphemeral(s, i, fmt.Sprintf("Removed position **%s**.", name))
		case "open":
			name := stringOption(values, "name")
			open := false
			if option, ok := values["open"]; ok {
				open = option.BoolValue()
			}
			if err := bot.Backend.SetPositionOpen(name, open); err != nil {
				return err
			}
			state := "closed"
			if open {
				state = "open"
			}
			return bot.replyEphemeral(s, i, fmt.Sprintf("Applications for **%s** are now %s.", name, state))
		}
	case "trial":
		ticket, err := bot.Backend.TicketByChannel(i.ChannelID)
		if err != nil {
			return err
		}
		switch sub.Name {
		case "start":
			event, err := bot.Backend.ScheduleTrialEnd(i.ChannelID, ticket.OwnerID,
				stringOption(values, "type"), intOption(values, "days"))
			if err != nil {
				return err
			}
			bot.startTrialSideEffects(i.ChannelID, ticket, event)
			return bot.replyEphemeral(s, i, fmt.Sprintf("Trial started, ends <t:%d:R>.", event.FireAt.Unix()))
		case "end":
			event, err := bot.Backend.TrialEventFor(i.ChannelID, ticket.OwnerID)
			if err != nil {
				return err
			}
			if err := bot.Backend.RemoveTrialEvent(i.ChannelID, ticket.OwnerID); err != nil {
				return err
			}
			bot.handleTrialDue(common.TrialDueNotification{Event: *event, Action: model.TrialActionEnd})
			return bot.replyEphemeral(s, i, "Trial ended.")
		}
	}
	return fmt.Errorf("unknown subcommand %s %s: %w", group.Name, sub.Name, common.ErrValidation)
}

// onSetupCommand updates only the settings the caller passed.
func (bot *AllianceBot) onSetupCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	settings, err := bot.Backend.Settings(bot.guildOf(i))
	if err != nil {
		return err
	}

	roleTargets := map[string]*string{
		"moderator_role":      &settings.ModeratorRoleID,
		"administration_role": &settings.AdministrationRoleID,
		"recruitment_role":    &settings.RecruitmentRoleID,
		"development_role":    &settings.DevelopmentRoleID,
		"leader_role":         &settings.LeaderRoleID,
		"coach_role":          &settings.CoachRoleID,
		"fwa_rep_role":        &settings.FWARepRoleID,
		"family_role":         &settings.FamilyRoleID,
		"visitor_role":        &settings.VisitorRoleID,
	}
	channelTargets := map[string]*string{
		"clan_tickets":    &settings.ClanTicketsCategoryID,
		"fwa_tickets":     &settings.FWATicketsCategoryID,
		"staff_apply":     &settings.StaffApplyCategoryID,
		"staff_trials":    &settings.StaffTrialsCategoryID,
		"after_cwl":       &settings.AfterCWLCategoryID,
		"support":         &settings.SupportCategoryID,
		"welcome_channel": &settings.WelcomeChannelID,
	}

	changed := 0
	for _, option := range i.ApplicationCommandData().Options {
		if target, ok := roleTargets[option.Name]; ok {
			*target = option.RoleValue(s, i.GuildID).ID
			changed++
			continue
		}
		if target, ok := channelTargets[option.Name]; ok {
			*target = option.ChannelValue(s).ID
			changed++
			continue
		}
		switch option.Name {
		case "welcome_webhook":
			settings.WelcomeWebhookID = option.StringValue()
			changed++
		case "min_fwa_th":
			settings.MinFWATownHall = int(option.IntValue())
			changed++
		}
	}
	if changed == 0 {
		return fmt.Errorf("nothing to change: %w", common.ErrValidation)
	}
	if err := bot.Backend.SaveSettings(settings); err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Updated %d settings.", changed))
}
