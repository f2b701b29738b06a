package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/afo-tools/afo-alliance-bot/backend"
	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
)

// autoConfirmDelay finalizes a fully selected session the owner walked
// away from.
const autoConfirmDelay = 5 * time.Minute

var (
	autoConfirmMu     sync.Mutex
	autoConfirmTimers = make(map[string]*time.Timer)
)

// presentClanChoices computes eligible clans per account, creates the
// session and renders one select menu per account with confirm/cancel.
func (bot *AllianceBot) presentClanChoices(ticket *model.Ticket, user *discordgo.User, accounts []backend.Account) error {
	session, err := bot.Backend.StartSession(user.ID, ticket.ChannelID, accounts)
	if err != nil {
		return err
	}

	var components []discordgo.MessageComponent
	for slot, account := range accounts {
		player, err := bot.COC.GetPlayer(context.Background(), account.Tag)
		if err != nil {
			return err
		}
		eligible, err := bot.Backend.EligibleClans(player)
		if err != nil {
			return err
		}
		if len(eligible) == 0 {
			bot.sendText(ticket.ChannelID, fmt.Sprintf(
				"**%s** does not currently qualify for any open clan. Staff will take a look shortly.", account.Name))
			continue
		}
		backend.ShuffleClans(eligible)

		var options []discordgo.SelectMenuOption
		for _, clan := range eligible[:min(len(eligible), 25)] {
			option := discordgo.SelectMenuOption{
				Label:       fmt.Sprintf("%s (%s)", clan.Name, clan.Tag),
				Value:       clan.Tag,
				Description: fmt.Sprintf("TH%d+ %s", clan.RequiredTH, clan.Type),
			}
			if clan.EmojiName != "" {
				option.Emoji = discordgo.ComponentEmoji{Name: clan.EmojiName}
			}
			options = append(options, option)
		}
		components = append(components, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    buildCustomID(idClanSelect, session.Token, strconv.Itoa(slot)),
				Placeholder: fmt.Sprintf("Pick a clan for %s", account.Name),
				Options:     options,
			},
		}})
	}

	if len(components) == 0 {
		return nil
	}

	components = append(components, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{Label: "Confirm", Style: discordgo.SuccessButton, CustomID: buildCustomID(idClanConfirm, session.Token)},
		discordgo.Button{Label: "Cancel", Style: discordgo.DangerButton, CustomID: buildCustomID(idClanCancel, session.Token)},
	}})

	msg, err := bot.Discord.ChannelMessageSendComplex(ticket.ChannelID, &discordgo.MessageSend{
		Content:    fmt.Sprintf("<@%s> Pick a clan for each account, then confirm.", user.ID),
		Components: components,
	})
	if err != nil {
		return err
	}
	return bot.Backend.SetSessionMessage(session.Token, msg.ID)
}

func (bot *AllianceBot) onClanSelect(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("malformed clan select id: %w", common.ErrValidation)
	}
	token := args[0]
	slot, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("malformed slot index: %w", common.ErrValidation)
	}
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return nil
	}
	user := interactionUser(i)

	session, err := bot.Backend.SessionByToken(token)
	if err != nil {
		return err
	}
	if slot < 0 || slot >= len(session.Selections) {
		return fmt.Errorf("slot %d out of range: %w", slot, common.ErrNotFound)
	}
	session, err = bot.Backend.SelectClan(token, user.ID, session.Selections[slot].PlayerTag, values[0])
	if err != nil {
		return err
	}

	if session.Complete() {
		bot.scheduleAutoConfirm(token, user.ID)
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Selected `%s` for `%s`.", values[0], session.Selections[slot].PlayerTag))
}

func (bot *AllianceBot) onClanCancel(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("malformed clan cancel id: %w", common.ErrValidation)
	}
	user := interactionUser(i)
	_, err := bot.Backend.CancelSession(args[0], user.ID)
	if err != nil {
		return err
	}
	bot.cancelAutoConfirm(args[0])
	return bot.replyEphemeral(s, i, "Selections cleared. Pick again when you are ready.")
}

func (bot *AllianceBot) onClanConfirm(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("malformed clan confirm id: %w", common.ErrValidation)
	}
	user := interactionUser(i)
	session, err := bot.Backend.ConfirmSession(args[0], user.ID)
	if err != nil {
		return err
	}
	bot.cancelAutoConfirm(args[0])
	err = bot.replyEphemeral(s, i, "Application confirmed, the recruiting clans have been notified!")
	if err != nil {
		bot.Logger.Errorf("error acknowledging confirm: %s", err.Error())
	}
	bot.finalizeSession(session)
	return nil
}

func (bot *AllianceBot) scheduleAutoConfirm(token, ownerID string) {
	autoConfirmMu.Lock()
	defer autoConfirmMu.Unlock()
	if timer, ok := autoConfirmTimers[token]; ok {
		timer.Stop()
	}
	autoConfirmTimers[token] = time.AfterFunc(autoConfirmDelay, func() {
		autoConfirmMu.Lock()
		delete(autoConfirmTimers, token)
		autoConfirmMu.Unlock()
		session, err := bot.Backend.ConfirmSession(token, ownerID)
		if err != nil {
			if !errors.Is(err, common.ErrNotFound) {
				bot.Logger.Errorf("auto-confirm of session %s failed: %s", token, err.Error())
			}
			return
		}
		bot.Logger.Infof("Auto-confirmed idle session %s", token)
		bot.finalizeSession(session)
	})
}

func (bot *AllianceBot) cancelAutoConfirm(token string) {
	autoConfirmMu.Lock()
	defer autoConfirmMu.Unlock()
	if timer, ok := autoConfirmTimers[token]; ok {
		timer.Stop()
		delete(autoConfirmTimers, token)
	}
}

// finalizeSession performs the confirm side effects. These are
// best-effort: a denied rename or permission grant is logged and must
// not roll back notifications that already went out.
func (bot *AllianceBot) finalizeSession(session *model.Session) {
	var firstClan *model.Clan
	var summary []string

	for _, selection := range session.Selections {
		if selection.ClanTag == "" {
			continue
		}
		clan, err := bot.Backend.ClanByTag(selection.ClanTag)
		if err != nil {
			bot.Logger.Errorf("confirmed session %s references unknown clan %s: %s",
				session.Token, selection.ClanTag, err.Error())
			continue
		}
		if firstClan == nil {
			firstClan = clan
		}
		summary = append(summary, fmt.Sprintf("`%s` → **%s**", selection.PlayerName, clan.Name))

		// Let the clan's gatekeepers see the ticket.
		if clan.GatekeeperRoleID != "" {
			err = bot.Discord.ChannelPermissionSet(session.ChannelID, clan.GatekeeperRoleID,
				discordgo.PermissionOverwriteTypeRole,
				discordgo.PermissionViewChannel|discordgo.PermissionSendMessages, 0)
			if err != nil {
				bot.Logger.Errorf("failed to grant gatekeeper access on %s: %s", session.ChannelID, err.Error())
			}
		}

		if clan.Questions != "" {
			bot.sendText(session.ChannelID, fmt.Sprintf("**Questions from %s:**\n%s",
				clan.Name, strings.ReplaceAll(clan.Questions, "|", "\n")))
		}
		if clan.ChatChannelID != "" && clan.GatekeeperRoleID != "" {
			bot.sendText(clan.ChatChannelID, fmt.Sprintf("<@&%s> New applicant for **%s** in <#%s>!",
				clan.GatekeeperRoleID, clan.Name, session.ChannelID))
		}
	}

	if len(summary) > 0 {
		bot.sendText(session.ChannelID, "Application submitted:\n"+strings.Join(summary, "\n"))
	}

	// The session is done: grey out its menus and drop it so stale
	// clicks and replayed confirms have nothing to act on.
	if session.MessageID != "" {
		bot.disableMenus(session.ChannelID, []string{session.MessageID})
	}
	if err := bot.Backend.DeleteSessionByToken(session.Token); err != nil {
		bot.Logger.Errorf("error deleting finalized session %s: %s", session.Token, err.Error())
	}

	// Rename the ticket to the accepted clan's prefix.
	if firstClan != nil && firstClan.Prefix != "" {
		ticket, err := bot.Backend.TicketByChannel(session.ChannelID)
		if err == nil {
			name := fmt.Sprintf("%s┃%s", strings.ToLower(firstClan.Prefix), ticket.OwnerID)
			if member, memberErr := bot.Discord.GuildMember(ticket.GuildID, ticket.OwnerID); memberErr == nil {
				name = fmt.Sprintf("%s┃%s", strings.ToLower(firstClan.Prefix), member.User.Username)
			}
			_, err = bot.Discord.ChannelEdit(session.ChannelID, &discordgo.ChannelEdit{Name: name})
			if err != nil {
				bot.Logger.Errorf("failed to rename ticket %s: %s", session.ChannelID, err.Error())
			}
		}
	}
}

// finishFWAInterview posts the FWA summary and pings the FWA reps.
func (bot *AllianceBot) finishFWAInterview(ticket *model.Ticket, user *discordgo.User, settings *model.GuildSettings, accounts []backend.Account) error {
	var lines []string
	for _, account := range accounts {
		lines = append(lines, fmt.Sprintf("`%s` %s", account.Tag, account.Name))
	}
	embed := &discordgo.MessageEmbed{
		Title:       "FWA Application Summary",
		Description: strings.Join(lines, "\n"),
		Color:       embedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: "War-weight proofs are above in this channel."},
	}
	content := fmt.Sprintf("<@%s> Your FWA application is complete!", user.ID)
	if settings.FWARepRoleID != "" {
		content = fmt.Sprintf("<@&%s> %s", settings.FWARepRoleID, content)
	}
	_, err := bot.Discord.ChannelMessageSendComplex(ticket.ChannelID, &discordgo.MessageSend{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{embed},
	})
	return err
}
