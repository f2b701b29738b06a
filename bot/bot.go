package bot

import (
	"github.com/afo-tools/afo-alliance-bot/backend"
	"github.com/afo-tools/afo-alliance-bot/coc"
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AllianceBot struct {
	BotToken string
	GuildID  string
	Logger   *zap.SugaredLogger
	Discord  *discordgo.Session
	DB       *gorm.DB
	Backend  *backend.Backend
	COC      *coc.Client
	Flows    *FlowRegistry
}

func NewAllianceBot(botToken, guildID string, logger *zap.SugaredLogger, db *gorm.DB, back *backend.Backend) *AllianceBot {
	var bot AllianceBot
	bot.BotToken = botToken
	bot.GuildID = guildID
	bot.Logger = logger
	bot.DB = db
	bot.Backend = back
	bot.COC = back.COC
	bot.Flows = NewFlowRegistry()

	dg, err := discordgo.New("Bot " + botToken)
	if err != nil {
		bot.Logger.Errorf("error creating Discord session: %s", err.Error())
		return nil
	}

	dg.AddHandler(bot.onReady)
	dg.AddHandler(bot.onInteractionCreate)
	dg.AddHandler(bot.onMessageCreate)
	dg.AddHandler(bot.onMessageDelete)
	dg.AddHandler(bot.onChannelDelete)
	dg.AddHandler(bot.onGuildMemberRemove)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	err = dg.Open()
	if err != nil {
		bot.Logger.Errorf("error opening connection: %s", err.Error())
		return nil
	}

	bot.Discord = dg

	err = bot.registerCommands()
	if err != nil {
		bot.Logger.Errorf("error registering commands: %s", err.Error())
	}

	return &bot
}

// StartBot consumes backend notifications until the process exits.
func (bot *AllianceBot) StartBot() {
	for {
		select {
		case due := <-bot.Backend.TrialChan:
			bot.handleTrialDue(due)
		case expired := <-bot.Backend.TicketChan:
			bot.handleTicketExpired(expired)
		case cwl := <-bot.Backend.CWLChan:
			bot.handleCWLEnd(cwl)
		}
	}
}

func (bot *AllianceBot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	bot.Logger.Infof("Logged in as %s#%s (%s)", r.User.Username, r.User.Discriminator, r.User.ID)
}

func (bot *AllianceBot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}

	// A pending interview step may be waiting on this message.
	bot.Flows.DeliverMessage(m)

	// An owner speaking in their armed ticket disarms the deletion timer.
	ticket, err := bot.Backend.TicketByChannel(m.ChannelID)
	if err != nil {
		return
	}
	if ticket.OwnerID != m.Author.ID {
		return
	}
	disarmed, err := bot.Backend.DisarmTicketTimer(m.ChannelID)
	if err != nil {
		bot.Logger.Errorf("failed to disarm ticket timer for %s: %s", m.ChannelID, err.Error())
		return
	}
	if disarmed {
		bot.sendText(m.ChannelID, "The scheduled deletion of this ticket has been cancelled.")
	}
}

func (bot *AllianceBot) onMessageDelete(s *discordgo.Session, m *discordgo.MessageDelete) {
	err := bot.Backend.DeleteSessionByMessage(m.ID)
	if err != nil {
		bot.Logger.Errorf("failed to clean up session for message %s: %s", m.ID, err.Error())
	}
}

func (bot *AllianceBot) onChannelDelete(s *discordgo.Session, c *discordgo.ChannelDelete) {
	bot.Flows.CancelChannel(c.ID)
	err := bot.Backend.CleanupChannel(c.ID)
	if err != nil {
		bot.Logger.Errorf("failed to clean up channel %s: %s", c.ID, err.Error())
	}
}

func (bot *AllianceBot) onGuildMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	channels, err := bot.Backend.MemberChannels(m.User.ID)
	if err != nil {
		bot.Logger.Errorf("failed to list tickets of departing member %s: %s", m.User.ID, err.Error())
		return
	}
	for _, channelID := range channels {
		bot.Logger.Infof("Deleting ticket %s, owner %s left the server", channelID, m.User.ID)
		_, err := s.ChannelDelete(channelID)
		if err != nil {
			bot.Logger.Errorf("failed to delete ticket %s: %s", channelID, err.Error())
		}
	}
}

// LiveChannels lists the channels and threads that still exist, for
// the orphan collector.
func (bot *AllianceBot) LiveChannels() (map[string]bool, error) {
	live := make(map[string]bool)
	guilds := []string{bot.GuildID}
	if bot.GuildID == "" {
		guilds = guilds[:0]
		for _, guild := range bot.Discord.State.Guilds {
			guilds = append(guilds, guild.ID)
		}
	}
	for _, guildID := range guilds {
		channels, err := bot.Discord.GuildChannels(guildID)
		if err != nil {
			return nil, err
		}
		for _, channel := range channels {
			live[channel.ID] = true
		}
		threads, err := bot.Discord.GuildThreadsActive(guildID)
		if err != nil {
			return nil, err
		}
		for _, thread := range threads.Threads {
			live[thread.ID] = true
		}
	}
	return live, nil
}

func (bot *AllianceBot) sendText(channelID, content string) {
	_, err := bot.Discord.ChannelMessageSend(channelID, content)
	if err != nil {
		bot.Logger.Errorf("error sending message to %s: %s", channelID, err.Error())
	}
}
