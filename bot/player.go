package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/afo-tools/afo-alliance-bot/coc"
	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
)

func (bot *AllianceBot) onPlayerCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		return fmt.Errorf("missing subcommand: %w", common.ErrValidation)
	}
	sub := options[0]
	switch sub.Name {
	case "link":
		return bot.onPlayerLink(s, i, sub.Options)
	case "unlink":
		return bot.onPlayerUnlink(s, i, sub.Options)
	case "whois":
		return bot.onPlayerWhois(s, i, sub.Options)
	case "verify":
		return bot.onPlayerVerify(s, i, sub.Options)
	default:
		return fmt.Errorf("unknown subcommand %s: %w", sub.Name, common.ErrValidation)
	}
}

func (bot *AllianceBot) onPlayerLink(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	user := interactionUser(i)
	tag, err := tagOption(options)
	if err != nil {
		return err
	}
	player, err := bot.COC.GetPlayer(context.Background(), tag)
	if err != nil {
		return err
	}
	if err := bot.Backend.LinkAccount(user.ID, player.Tag, player.Name); err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Linked **%s** (%s) to your account.", player.Name, player.Tag))
}

func (bot *AllianceBot) onPlayerUnlink(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	user := interactionUser(i)
	tag, err := tagOption(options)
	if err != nil {
		return err
	}
	if err := bot.Backend.UnlinkAccount(user.ID, tag); err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Unlinked %s.", tag))
}

// onPlayerWhois resolves either direction: a Discord user to their
// accounts, or a player tag to its Discord owner.
func (bot *AllianceBot) onPlayerWhois(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	for _, option := range options {
		switch option.Name {
		case "user":
			target := option.UserValue(s)
			accounts, err := bot.Backend.AccountsOf(target.ID)
			if err != nil {
				return err
			}
			if len(accounts) == 0 {
				return bot.replyEphemeral(s, i, fmt.Sprintf("<@%s> has no linked accounts.", target.ID))
			}
			description := ""
			for _, account := range accounts {
				description += fmt.Sprintf("**%s** (%s)\n", account.PlayerName, account.PlayerTag)
			}
			return bot.replyEphemeral(s, i, description)
		case "tag":
			tag := coc.NormalizeTag(option.StringValue())
			ownerID, err := bot.Backend.OwnerOf(tag)
			if err != nil {
				return err
			}
			return bot.replyEphemeral(s, i, fmt.Sprintf("%s belongs to <@%s>.", tag, ownerID))
		}
	}
	return fmt.Errorf("give either a user or a tag: %w", common.ErrValidation)
}

// onPlayerVerify links the account and applies the member dressing:
// nickname, family role, visitor role removal and the public welcome.
func (bot *AllianceBot) onPlayerVerify(s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	user := interactionUser(i)
	tag, err := tagOption(options)
	if err != nil {
		return err
	}
	player, err := bot.COC.GetPlayer(context.Background(), tag)
	if err != nil {
		return err
	}
	if err := bot.Backend.LinkAccount(user.ID, player.Tag, player.Name); err != nil && !errors.Is(err, common.ErrValidation) {
		return err
	}

	guildID := bot.guildOf(i)
	settings, err := bot.Backend.Settings(guildID)
	if err != nil {
		return err
	}
	var clan *model.Clan
	if player.Clan != nil {
		clan, _ = bot.Backend.ClanByTag(player.Clan.Tag)
	}
	bot.dressMember(guildID, user.ID, player, clan, settings)
	bot.welcomeMember(settings, user.ID, player.Name)
	return bot.replyEphemeral(s, i, fmt.Sprintf("Welcome, **%s**! You are all set.", player.Name))
}

// dressMember syncs nickname and membership roles with the account.
func (bot *AllianceBot) dressMember(guildID, userID string, player *coc.Player, clan *model.Clan, settings *model.GuildSettings) {
	nick := player.Name
	if clan != nil {
		nick = fmt.Sprintf("%s | %s", player.Name, clan.Name)
	}
	if runes := []rune(nick); len(runes) > 32 {
		nick = string(runes[:32])
	}
	if err := bot.Discord.GuildMemberNickname(guildID, userID, nick); err != nil {
		bot.Logger.Infof("could not set nickname for %s: %s", userID, err.Error())
	}

	if settings.FamilyRoleID != "" && clan != nil {
		if err := bot.Discord.GuildMemberRoleAdd(guildID, userID, settings.FamilyRoleID); err != nil {
			bot.Logger.Infof("could not add family role to %s: %s", userID, err.Error())
		}
	}
	if settings.VisitorRoleID != "" && clan != nil {
		if err := bot.Discord.GuildMemberRoleRemove(guildID, userID, settings.VisitorRoleID); err != nil {
			bot.Logger.Infof("could not remove visitor role from %s: %s", userID, err.Error())
		}
	}
	if clan != nil && clan.RoleID != "" {
		if err := bot.Discord.GuildMemberRoleAdd(guildID, userID, clan.RoleID); err != nil {
			bot.Logger.Infof("could not add clan role to %s: %s", userID, err.Error())
		}
	}
}

// welcomeMember posts the public greeting through the welcome webhook,
// falling back to a plain channel message.
func (bot *AllianceBot) welcomeMember(settings *model.GuildSettings, userID, playerName string) {
	greeting := fmt.Sprintf(welcomeGreetings[rand.Intn(len(welcomeGreetings))], fmt.Sprintf("<@%s>", userID))
	greeting = fmt.Sprintf("%s (**%s**)", greeting, playerName)

	if settings.WelcomeWebhookID != "" {
		webhook, err := bot.Discord.Webhook(settings.WelcomeWebhookID)
		if err == nil {
			_, err = bot.Discord.WebhookExecute(webhook.ID, webhook.Token, false, &discordgo.WebhookParams{
				Content: greeting,
			})
			if err == nil {
				return
			}
		}
		bot.Logger.Infof("welcome webhook failed, using channel instead: %s", err.Error())
	}
	if settings.WelcomeChannelID != "" {
		bot.sendText(settings.WelcomeChannelID, greeting)
	}
}

func tagOption(options []*discordgo.ApplicationCommandInteractionDataOption) (string, error) {
	for _, option := range options {
		if option.Name == "tag" {
			tag := coc.NormalizeTag(option.StringValue())
			if !coc.ValidTag(tag) {
				return "", fmt.Errorf("%s is not a valid player tag: %w", tag, common.ErrValidation)
			}
			return tag, nil
		}
	}
	return "", fmt.Errorf("missing tag option: %w", common.ErrValidation)
}
