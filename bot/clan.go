package bot

import (
	"context"
	"fmt"

	"github.com/afo-tools/afo-alliance-bot/coc"
	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
)

func (bot *AllianceBot) onClanCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return fmt.Errorf("missing subcommand: %w", common.ErrValidation)
	}
	sub := options[0]
	switch sub.Name {
	case "add":
		return bot.onClanAdd(s, i, sub.Options)
	case "remove":
		return bot.onClanRemove(s, i, sub.Options)
	case "info":
		return bot.onClanInfo(s, i, sub.Options)
	case "list":
		return bot.onClanList(s, i)
	case "edit":
		return bot.onClanEdit(s, i, sub.Options)
	case "link":
		return bot.onClanLink(s, i, sub.Options)
	case "check":
		return bot.onClanCheck(s, i, sub.Options)
	default:
		return fmt.Errorf("unknown subcommand %s: %w", sub.Name, common.ErrValidation)
	}
}

// onClanAdd registers a clan, pulling name and language from the API.
func (bot *AllianceBot) onClanAdd(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	values := optionMap(options)
	tag := coc.NormalizeTag(stringOption(values, "tag"))
	if !coc.ValidTag(tag) {
		return fmt.Errorf("%s is not a valid clan tag: %w", tag, common.ErrValidation)
	}
	apiClan, err := bot.COC.GetClan(context.Background(), tag)
	if err != nil {
		return err
	}
	clan := &model.Clan{
		Tag:        apiClan.Tag,
		Name:       apiClan.Name,
		Prefix:     stringOption(values, "prefix"),
		Type:       model.ClanType(stringOption(values, "type")),
		RequiredTH: intOption(values, "required_th"),
		MaxTH:      intOption(values, "max_th"),
		Language:   bot.Backend.DetectLanguage(apiClan.Description),
	}
	if err := bot.Backend.AddClan(clan); err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Added **%s** (%s) to the alliance.", clan.Name, clan.Tag))
}

func (bot *AllianceBot) onClanRemove(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	tag := coc.NormalizeTag(stringOption(optionMap(options), "tag"))
	if err := bot.Backend.RemoveClan(tag); err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Removed %s from the alliance.", tag))
}

func (bot *AllianceBot) onClanInfo(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	tag := coc.NormalizeTag(stringOption(optionMap(options), "tag"))
	clan, err := bot.Backend.ClanByTag(tag)
	if err != nil {
		return err
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{clanInfoEmbed(clan)},
		},
	})
}

func (bot *AllianceBot) onClanList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	clans, err := bot.Backend.Clans()
	if err != nil {
		return err
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{clanListEmbed(clans)},
		},
	})
}

// onClanEdit mutates one field of a registered clan.
func (bot *AllianceBot) onClanEdit(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	values := optionMap(options)
	tag := coc.NormalizeTag(stringOption(values, "tag"))
	clan, err := bot.Backend.ClanByTag(tag)
	if err != nil {
		return err
	}
	changed := false
	if clanType, ok := values["type"]; ok {
		switch model.ClanType(clanType.StringValue()) {
		case model.ClanTypeCompetitive, model.ClanTypeFWA, model.ClanTypeCWL:
		default:
			return fmt.Errorf("unknown clan type %s: %w", clanType.StringValue(), common.ErrValidation)
		}
		clan.Type = model.ClanType(clanType.StringValue())
		changed = true
	}
	if recruitment, ok := values["recruitment"]; ok {
		clan.Recruitment = recruitment.BoolValue()
		changed = true
	}
	if requiredTH, ok := values["required_th"]; ok {
		clan.RequiredTH = int(requiredTH.IntValue())
		changed = true
	}
	if maxTH, ok := values["max_th"]; ok {
		clan.MaxTH = int(maxTH.IntValue())
		changed = true
	}
	if prefix, ok := values["prefix"]; ok {
		clan.Prefix = prefix.StringValue()
		changed = true
	}
	if messages, ok := values["messages"]; ok {
		clan.Messages = messages.StringValue()
		changed = true
	}
	if questions, ok := values["questions"]; ok {
		clan.Questions = questions.StringValue()
		changed = true
	}
	if emoji, ok := values["emoji"]; ok {
		clan.EmojiName = emoji.StringValue()
		changed = true
	}
	if !changed {
		return fmt.Errorf("nothing to change: %w", common.ErrValidation)
	}
	if err := bot.Backend.UpdateClan(clan); err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Updated **%s**.", clan.Name))
}

// onClanLink binds a clan to its Discord anchors: roles, channels and
// the in-game leader's Discord account.
func (bot *AllianceBot) onClanLink(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	values := optionMap(options)
	tag := coc.NormalizeTag(stringOption(values, "tag"))
	clan, err := bot.Backend.ClanByTag(tag)
	if err != nil {
		return err
	}
	changed := false
	if role, ok := values["role"]; ok {
		clan.RoleID = role.RoleValue(s, i.GuildID).ID
		changed = true
	}
	if gatekeeper, ok := values["gatekeeper_role"]; ok {
		clan.GatekeeperRoleID = gatekeeper.RoleValue(s, i.GuildID).ID
		changed = true
	}
	if chat, ok := values["chat_channel"]; ok {
		clan.ChatChannelID = chat.ChannelValue(s).ID
		changed = true
	}
	if announcement, ok := values["announcement_channel"]; ok {
		clan.AnnouncementChannelID = announcement.ChannelValue(s).ID
		changed = true
	}
	if leader, ok := values["leader"]; ok {
		clan.LeaderID = leader.UserValue(s).ID
		changed = true
	}
	if !changed {
		return fmt.Errorf("nothing to link: %w", common.ErrValidation)
	}
	if err := bot.Backend.UpdateClan(clan); err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Updated bindings for **%s**.", clan.Name))
}

// onClanCheck manages the eligibility checks of a clan.
func (bot *AllianceBot) onClanCheck(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	if len(options) == 0 {
		return fmt.Errorf("missing subcommand: %w", common.ErrValidation)
	}
	sub := options[0]
	values := optionMap(sub.Options)
	tag := coc.NormalizeTag(stringOption(values, "tag"))
	name := stringOption(values, "name")

	switch sub.Name {
	case "add":
		if err := bot.Backend.AddCheck(tag, name, intOption(values, "min_value")); err != nil {
			return err
		}
		return bot.replyEphemeral(s, i, fmt.Sprintf("Added check %s to %s.", checkDisplayName(name), tag))
	case "remove":
		if err := bot.Backend.RemoveCheck(tag, name); err != nil {
			return err
		}
		return bot.replyEphemeral(s, i, fmt.Sprintf("Removed check %s from %s.", checkDisplayName(name), tag))
	case "edit":
		if err := bot.Backend.EditCheck(tag, name, intOption(values, "min_value")); err != nil {
			return err
		}
		return bot.replyEphemeral(s, i, fmt.Sprintf("Updated check %s on %s.", checkDisplayName(name), tag))
	default:
		return fmt.Errorf("unknown subcommand %s: %w", sub.Name, common.ErrValidation)
	}
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	values := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, option := range options {
		values[option.Name] = option
	}
	return values
}

func stringOption(values map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if option, ok := values[name]; ok {
		return option.StringValue()
	}
	return ""
}

func intOption(values map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) int {
	if option, ok := values[name]; ok {
		return int(option.IntValue())
	}
	return 0
}
