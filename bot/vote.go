package bot

import (
	"fmt"
	"strings"

	"github.com/afo-tools/afo-alliance-bot/backend"
	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/bwmarrin/discordgo"
)

// onVoteStart opens the private voting thread next to a finished trial.
// The applicant is kicked out of the thread so the vote stays blind.
func (bot *AllianceBot) onVoteStart(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	trialType := ""
	if len(args) > 0 {
		trialType = args[0]
	}
	ticket, err := bot.Backend.TicketByChannel(i.ChannelID)
	if err != nil {
		return err
	}

	thread, err := s.ThreadStartComplex(i.ChannelID, &discordgo.ThreadStart{
		Name:                "Trial Voting",
		Type:                discordgo.ChannelTypeGuildPrivateThread,
		AutoArchiveDuration: 10080,
		Invitable:           false,
	})
	if err != nil {
		return err
	}
	if err := s.ThreadMemberRemove(thread.ID, ticket.OwnerID); err != nil {
		bot.Logger.Infof("could not remove applicant from voting thread %s: %s", thread.ID, err.Error())
	}

	poll, err := bot.Backend.CreatePoll(i.ChannelID, thread.ID, trialType)
	if err != nil {
		return err
	}
	message, err := s.ChannelMessageSendComplex(thread.ID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{bot.votePanel(poll, backend.Tally{})},
		Components: []discordgo.MessageComponent{votePanelRow(poll.Token)},
	})
	if err != nil {
		return err
	}
	if err := bot.Backend.SetPollMessage(poll.Token, message.ID); err != nil {
		return err
	}
	return bot.replyEphemeral(s, i, fmt.Sprintf("Voting is open in <#%s>.", thread.ID))
}

// onVote casts or moves a vote and re-renders the panel in place.
func (bot *AllianceBot) onVote(s *discordgo.Session, i *discordgo.InteractionCreate, head string, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("malformed vote id: %w", common.ErrValidation)
	}
	token := args[len(args)-1]
	user := interactionUser(i)

	poll, err := bot.Backend.CastVote(token, user.ID, model.VoteBucket(head))
	if err != nil {
		return err
	}
	tally := bot.Backend.TallyPoll(poll)
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{bot.votePanel(poll, tally)},
			Components: []discordgo.MessageComponent{votePanelRow(poll.Token)},
		},
	})
}

// onVoteDetails shows who voted what, for staff eyes only.
func (bot *AllianceBot) onVoteDetails(s *discordgo.Session, i *discordgo.InteractionCreate, args []string) error {
	if err := bot.requireStaff(i); err != nil {
		return err
	}
	if len(args) < 2 {
		return fmt.Errorf("malformed vote id: %w", common.ErrValidation)
	}
	poll, err := bot.Backend.PollByToken(args[len(args)-1])
	if err != nil {
		return err
	}
	tally := bot.Backend.TallyPoll(poll)
	embed := &discordgo.MessageEmbed{
		Title: "Vote Breakdown",
		Color: embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "👍 In favour", Value: mentionList(tally.Upvotes)},
			{Name: "😐 Neutral", Value: mentionList(tally.Neutrals)},
			{Name: "👎 Against", Value: mentionList(tally.Downvotes)},
		},
	}
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func (bot *AllianceBot) votePanel(poll *model.VotePoll, tally backend.Tally) *discordgo.MessageEmbed {
	total := tally.Total()
	title := fmt.Sprintf("Trial Vote (%d Votes)", total)
	if poll.Type != "" {
		title = fmt.Sprintf("%s Trial Vote (%d Votes)", poll.Type, total)
	}
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: "Should the trial member join the team?",
		Color:       embedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: fmt.Sprintf("👍 %d", len(tally.Upvotes)), Value: progressBar(len(tally.Upvotes), total)},
			{Name: fmt.Sprintf("😐 %d", len(tally.Neutrals)), Value: progressBar(len(tally.Neutrals), total)},
			{Name: fmt.Sprintf("👎 %d", len(tally.Downvotes)), Value: progressBar(len(tally.Downvotes), total)},
		},
	}
}

func votePanelRow(token string) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.Button{Emoji: discordgo.ComponentEmoji{Name: "👍"}, Style: discordgo.SuccessButton,
			CustomID: buildCustomID(idUpvote, "button", token)},
		discordgo.Button{Emoji: discordgo.ComponentEmoji{Name: "😐"}, Style: discordgo.SecondaryButton,
			CustomID: buildCustomID(idNeutral, "button", token)},
		discordgo.Button{Emoji: discordgo.ComponentEmoji{Name: "👎"}, Style: discordgo.DangerButton,
			CustomID: buildCustomID(idDownvote, "button", token)},
		discordgo.Button{Label: "Details", Style: discordgo.SecondaryButton,
			CustomID: buildCustomID(idVoteDetail, "button", token)},
	}}
}

func mentionList(voters []string) string {
	if len(voters) == 0 {
		return "nobody"
	}
	mentions := make([]string, 0, len(voters))
	for _, voter := range voters {
		mentions = append(mentions, fmt.Sprintf("<@%s>", voter))
	}
	return strings.Join(mentions, " ")
}
