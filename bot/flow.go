package bot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/afo-tools/afo-alliance-bot/backend"
	"github.com/afo-tools/afo-alliance-bot/coc"
	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/exp/constraints"
)

const (
	menuTimeout  = 180 * time.Second
	inputTimeout = 600 * time.Second
	maxFailures  = 3
	maxAccounts  = 2
)

type flowKey struct {
	ChannelID string
	UserID    string
}

type flowWaiter struct {
	messages   chan *discordgo.MessageCreate
	components chan *discordgo.InteractionCreate
	done       chan struct{}
}

// FlowRegistry routes gateway events to the interview goroutine waiting
// on them, one waiter per (channel, user).
type FlowRegistry struct {
	mu      sync.Mutex
	waiters map[flowKey]*flowWaiter
}

func NewFlowRegistry() *FlowRegistry {
	return &FlowRegistry{waiters: make(map[flowKey]*flowWaiter)}
}

// Register installs a waiter, cancelling any previous flow of the same
// user in the same channel.
func (reg *FlowRegistry) Register(channelID, userID string) *flowWaiter {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	key := flowKey{ChannelID: channelID, UserID: userID}
	if old, ok := reg.waiters[key]; ok {
		close(old.done)
	}
	waiter := &flowWaiter{
		messages:   make(chan *discordgo.MessageCreate, 4),
		components: make(chan *discordgo.InteractionCreate, 4),
		done:       make(chan struct{}),
	}
	reg.waiters[key] = waiter
	return waiter
}

func (reg *FlowRegistry) Unregister(channelID, userID string, waiter *flowWaiter) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	key := flowKey{ChannelID: channelID, UserID: userID}
	if reg.waiters[key] == waiter {
		delete(reg.waiters, key)
	}
}

func (reg *FlowRegistry) DeliverMessage(m *discordgo.MessageCreate) {
	reg.mu.Lock()
	waiter, ok := reg.waiters[flowKey{ChannelID: m.ChannelID, UserID: m.Author.ID}]
	reg.mu.Unlock()
	if !ok {
		return
	}
	select {
	case waiter.messages <- m:
	default:
	}
}

func (reg *FlowRegistry) DeliverComponent(i *discordgo.InteractionCreate) {
	user := interactionUser(i)
	if user == nil {
		return
	}
	reg.mu.Lock()
	waiter, ok := reg.waiters[flowKey{ChannelID: i.ChannelID, UserID: user.ID}]
	reg.mu.Unlock()
	if !ok {
		return
	}
	select {
	case waiter.components <- i:
	default:
	}
}

// CancelChannel stops every flow in a deleted channel.
func (reg *FlowRegistry) CancelChannel(channelID string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	for key, waiter := range reg.waiters {
		if key.ChannelID == channelID {
			close(waiter.done)
			delete(reg.waiters, key)
		}
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

// flowEvent is one resolved suspend point: either a chat message or a
// component interaction, whichever arrived first.
type flowEvent struct {
	message   *discordgo.MessageCreate
	component *discordgo.InteractionCreate
}

var errFlowCancelled = errors.New("interview flow cancelled")

// await suspends on both event channels at once and takes the first.
func (waiter *flowWaiter) await(timeout time.Duration) (flowEvent, error) {
	select {
	case m := <-waiter.messages:
		return flowEvent{message: m}, nil
	case ic := <-waiter.components:
		return flowEvent{component: ic}, nil
	case <-time.After(timeout):
		return flowEvent{}, common.ErrTimeout
	case <-waiter.done:
		return flowEvent{}, errFlowCancelled
	}
}

// awaitComponent ignores chat messages and waits for a component only.
func (waiter *flowWaiter) awaitComponent(timeout time.Duration) (*discordgo.InteractionCreate, error) {
	deadline := time.After(timeout)
	for {
		select {
		case <-waiter.messages:
		case ic := <-waiter.components:
			return ic, nil
		case <-deadline:
			return nil, common.ErrTimeout
		case <-waiter.done:
			return nil, errFlowCancelled
		}
	}
}

// onClanStart handles the interview start and restart buttons of clan
// and FWA tickets.
func (bot *AllianceBot) onClanStart(s *discordgo.Session, i *discordgo.InteractionCreate, fwa bool) error {
	user := interactionUser(i)
	ticket, err := bot.Backend.TicketByChannel(i.ChannelID)
	if err != nil {
		return err
	}
	if ticket.OwnerID != user.ID {
		return fmt.Errorf("only the applicant of this channel can start the interview: %w", common.ErrForbidden)
	}
	err = bot.replyEphemeral(s, i, "Interview started, please answer in this channel.")
	if err != nil {
		return err
	}
	go bot.runInterview(ticket, user, fwa)
	return nil
}

// runInterview drives the linear interview inside a ticket channel.
func (bot *AllianceBot) runInterview(ticket *model.Ticket, user *discordgo.User, fwa bool) {
	waiter := bot.Flows.Register(ticket.ChannelID, user.ID)
	defer bot.Flows.Unregister(ticket.ChannelID, user.ID, waiter)

	bot.Logger.Infof("Start interview for user %s in ticket %s (fwa=%t)", user.ID, ticket.ChannelID, fwa)

	var menus []string
	err := bot.interviewSteps(ticket, user, waiter, fwa, &menus)
	switch {
	case errors.Is(err, common.ErrTimeout):
		bot.disableMenus(ticket.ChannelID, menus)
		bot.sendRestart(ticket.ChannelID, timeoutEmbed(), fwa)
	case errors.Is(err, errInterviewFailed):
		bot.disableMenus(ticket.ChannelID, menus)
		bot.sendRestart(ticket.ChannelID, failEmbed(), fwa)
	case errors.Is(err, coc.ErrMaintenance) || errors.Is(err, common.ErrMaintenance):
		bot.disableMenus(ticket.ChannelID, menus)
		bot.sendRestart(ticket.ChannelID, maintenanceEmbed(), fwa)
	case errors.Is(err, errFlowCancelled):
	case err != nil:
		bot.Logger.Errorf("interview in %s aborted: %s", ticket.ChannelID, err.Error())
		bot.disableMenus(ticket.ChannelID, menus)
		bot.sendText(ticket.ChannelID, "Something went wrong, please restart the interview.")
	}

	bot.Logger.Infof("Finish interview for user %s in ticket %s", user.ID, ticket.ChannelID)
}

var errInterviewFailed = errors.New("too many invalid answers")

func (bot *AllianceBot) interviewSteps(ticket *model.Ticket, user *discordgo.User, waiter *flowWaiter, fwa bool, menus *[]string) error {
	count, err := bot.askAccountCount(ticket.ChannelID, user, waiter, menus)
	if err != nil {
		return err
	}

	settings, err := bot.Backend.Settings(ticket.GuildID)
	if err != nil {
		return err
	}

	failures := 0
	var accounts []backend.Account
	for slot := 0; slot < count; slot++ {
		player, err := bot.askAccountTag(ticket.ChannelID, user, waiter, slot, &failures, menus)
		if err != nil {
			return err
		}
		if fwa && player.TownHallLevel < settings.MinFWATownHall {
			bot.sendText(ticket.ChannelID, fmt.Sprintf(
				"`%s` is TH%d; FWA clans require TH%d or above.",
				player.Name, player.TownHallLevel, settings.MinFWATownHall))
			failures++
			if failures >= maxFailures {
				return errInterviewFailed
			}
			slot--
			continue
		}
		accounts = append(accounts, backend.Account{Tag: player.Tag, Name: player.Name})

		if fwa {
			err = bot.askProofImage(ticket.ChannelID, player, waiter, &failures)
			if err != nil {
				return err
			}
		}
	}

	if fwa {
		return bot.finishFWAInterview(ticket, user, settings, accounts)
	}
	return bot.presentClanChoices(ticket, user, accounts)
}

// askAccountCount posts the 1-or-2 accounts menu and waits for a pick.
func (bot *AllianceBot) askAccountCount(channelID string, user *discordgo.User, waiter *flowWaiter, menus *[]string) (int, error) {
	menu := discordgo.SelectMenu{
		CustomID:    buildCustomID(idFlowCount, channelID, user.ID),
		Placeholder: "How many accounts are you applying with?",
		Options: []discordgo.SelectMenuOption{
			{Label: "1 account", Value: "1"},
			{Label: "2 accounts", Value: "2"},
		},
	}
	msg, err := bot.Discord.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s> Let's get started!", user.ID),
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{menu}},
		},
	})
	if err != nil {
		return 0, err
	}
	*menus = append(*menus, msg.ID)
	ic, err := waiter.awaitComponent(menuTimeout)
	if err != nil {
		return 0, err
	}
	values := ic.MessageComponentData().Values
	if len(values) == 0 || values[0] == "1" {
		return 1, nil
	}
	return maxAccounts, nil
}

// askAccountTag prompts for one account tag, taken from a chat message
// or from the linked-accounts menu, whichever comes first.
func (bot *AllianceBot) askAccountTag(channelID string, user *discordgo.User, waiter *flowWaiter, slot int, failures *int, menus *[]string) (*coc.Player, error) {
	links, err := bot.Backend.AccountsOf(user.ID)
	if err != nil {
		return nil, err
	}

	send := &discordgo.MessageSend{
		Content: fmt.Sprintf("Send the tag of account %d in the chat (e.g. `#2PP0JCCL`).", slot+1),
	}
	if len(links) > 0 {
		var options []discordgo.SelectMenuOption
		for _, link := range links[:min(len(links), 25)] {
			options = append(options, discordgo.SelectMenuOption{
				Label: fmt.Sprintf("%s (%s)", link.PlayerName, link.PlayerTag),
				Value: link.PlayerTag,
			})
		}
		send.Content += " You can also pick one of your linked accounts below."
		send.Components = []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    buildCustomID(idFlowAccounts, channelID, user.ID, fmt.Sprint(slot)),
					Placeholder: "Linked accounts",
					Options:     options,
				},
			}},
		}
	}
	msg, err := bot.Discord.ChannelMessageSendComplex(channelID, send)
	if err != nil {
		return nil, err
	}
	if len(send.Components) > 0 {
		*menus = append(*menus, msg.ID)
	}

	for {
		event, err := waiter.await(inputTimeout)
		if err != nil {
			return nil, err
		}

		var tag string
		if event.component != nil {
			values := event.component.MessageComponentData().Values
			if len(values) > 0 {
				tag = values[0]
			}
		} else if event.message != nil {
			tags := coc.ExtractTags(event.message.Content)
			if len(tags) > 0 {
				tag = tags[0]
			}
		}

		if tag != "" {
			player, err := bot.COC.GetPlayer(context.Background(), tag)
			if err == nil {
				bot.sendText(channelID, fmt.Sprintf("Found **%s** (TH%d).", player.Name, player.TownHallLevel))
				return player, nil
			}
			if !errors.Is(err, coc.ErrNotFound) && !errors.Is(err, coc.ErrInvalidTag) {
				return nil, err
			}
		}

		*failures++
		if *failures >= maxFailures {
			return nil, errInterviewFailed
		}
		bot.sendText(channelID, fmt.Sprintf("That does not look like a valid tag, try again (%d/%d attempts).",
			*failures, maxFailures))
	}
}

// askProofImage waits for an FWA war-weight proof: an image attachment
// or a URL whose content type is an image.
func (bot *AllianceBot) askProofImage(channelID string, player *coc.Player, waiter *flowWaiter, failures *int) error {
	bot.sendText(channelID, fmt.Sprintf(
		"Send a war-weight screenshot for **%s** (attachment or image link).", player.Name))
	for {
		event, err := waiter.await(inputTimeout)
		if err != nil {
			return err
		}
		if event.message != nil {
			if len(event.message.Attachments) > 0 {
				return nil
			}
			if bot.COC.IsImageURL(context.Background(), event.message.Content) {
				return nil
			}
		}
		*failures++
		if *failures >= maxFailures {
			return errInterviewFailed
		}
		bot.sendText(channelID, fmt.Sprintf("That is not an image, try again (%d/%d attempts).",
			*failures, maxFailures))
	}
}

// disableMenus greys out the interactive prompts of a finished flow so
// stale clicks have nothing to hit.
func (bot *AllianceBot) disableMenus(channelID string, messageIDs []string) {
	for _, messageID := range messageIDs {
		msg, err := bot.Discord.ChannelMessage(channelID, messageID)
		if err != nil {
			continue
		}
		if len(msg.Components) == 0 {
			continue
		}
		_, err = bot.Discord.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    channelID,
			ID:         messageID,
			Components: disabledRows(msg.Components),
		})
		if err != nil {
			bot.Logger.Errorf("error disabling components on %s: %s", messageID, err.Error())
		}
	}
}

func (bot *AllianceBot) sendRestart(channelID string, embed *discordgo.MessageEmbed, fwa bool) {
	restartID := idClanRestart
	if fwa {
		restartID = idFWARestart
	}
	_, err := bot.Discord.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.Button{Label: "Restart", Style: discordgo.PrimaryButton, CustomID: restartID},
			}},
		},
	})
	if err != nil {
		bot.Logger.Errorf("error sending restart prompt to %s: %s", channelID, err.Error())
	}
}

func min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
