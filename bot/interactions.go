package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

func (bot *AllianceBot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		bot.dispatchCommand(s, i)
	case discordgo.InteractionMessageComponent:
		bot.dispatchComponent(s, i)
	case discordgo.InteractionModalSubmit:
		bot.dispatchModal(s, i)
	}
}

func (bot *AllianceBot) dispatchCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	handler, ok := bot.commandHandlers()[data.Name]
	if !ok {
		bot.Logger.Infof("Unknown command %s", data.Name)
		return
	}
	err := handler(s, i)
	if err != nil {
		bot.replyError(s, i, err)
	}
}

func (bot *AllianceBot) dispatchComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID
	head, args := parseCustomID(customID)

	// Interview flow steps wait for their own components.
	if head == idFlowCount || head == idFlowAccounts {
		bot.Flows.DeliverComponent(i)
		bot.ackComponent(s, i)
		return
	}

	var err error
	switch head {
	case idClanStart, idClanRestart:
		err = bot.onClanStart(s, i, false)
	case idFWAStart, idFWARestart:
		err = bot.onClanStart(s, i, true)
	case idSupportStart:
		err = bot.onSupportStart(s, i)
	case idCoachingStart:
		err = bot.onCoachingStart(s, i)
	case idPartnerStart:
		err = bot.onPartnerStart(s, i)
	case idChampionsStart:
		err = bot.onChampionsStart(s, i)
	case idStaffStartMenu:
		err = bot.onStaffMenu(s, i)
	case idClanSelect:
		err = bot.onClanSelect(s, i, args)
	case idClanConfirm:
		err = bot.onClanConfirm(s, i, args)
	case idClanCancel:
		err = bot.onClanCancel(s, i, args)
	case idStartTrial:
		err = bot.onTrialButton(s, i, idStartTrial, args)
	case idDelayTrial:
		err = bot.onTrialButton(s, i, idDelayTrial, args)
	case idDenyTrial:
		err = bot.onDenyTrial(s, i, args)
	case idVoteStart:
		err = bot.onVoteStart(s, i, args)
	case idUpvote, idNeutral, idDownvote:
		err = bot.onVote(s, i, head, args)
	case idVoteDetail:
		err = bot.onVoteDetails(s, i, args)
	case idTicketDeleteConfirm:
		err = bot.onTicketDeleteConfirm(s, i, args)
	case idTicketReapply:
		err = bot.onTicketReapply(s, i)
	case idBugRespond:
		err = bot.onBugRespond(s, i, args)
	default:
		bot.Logger.Infof("Unknown component %s", customID)
		return
	}
	if err != nil {
		bot.replyError(s, i, err)
	}
}

func (bot *AllianceBot) dispatchModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.ModalSubmitData().CustomID
	head, args := parseCustomID(strings.TrimPrefix(customID, modalPrefix))

	var err error
	switch head {
	case idStartTrial:
		err = bot.onTrialStartModal(s, i, args)
	case idDelayTrial:
		err = bot.onTrialDelayModal(s, i, args)
	case "staff_form":
		err = bot.onStaffFormModal(s, i, args)
	case idBugRespond:
		err = bot.onBugRespondModal(s, i, args)
	default:
		bot.Logger.Infof("Unknown modal %s", customID)
		return
	}
	if err != nil {
		bot.replyError(s, i, err)
	}
}

// ackComponent acknowledges a component interaction without visible
// output; the flow goroutine edits the message itself.
func (bot *AllianceBot) ackComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	})
	if err != nil {
		bot.Logger.Errorf("error acknowledging component: %s", err.Error())
	}
}

func (bot *AllianceBot) replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
