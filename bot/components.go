package bot

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// Component custom IDs are pipe-delimited: a fixed action head followed
// by its arguments, e.g. "clan_select|<token>|<slot>".
const customIDSep = "|"

func buildCustomID(parts ...string) string {
	return strings.Join(parts, customIDSep)
}

func parseCustomID(customID string) (string, []string) {
	parts := strings.Split(customID, customIDSep)
	return parts[0], parts[1:]
}

// Action heads of the interactive components.
const (
	idClanStart      = "clan_start_button"
	idFWAStart       = "fwa_start_button"
	idSupportStart   = "support_start_button"
	idCoachingStart  = "coaching_start_button"
	idPartnerStart   = "partner_start_button"
	idChampionsStart = "champions_start_button"
	idStaffStartMenu = "staff_start_menu"

	idClanSelect   = "clan_select"
	idClanConfirm  = "clan_confirm"
	idClanCancel   = "clan_cancel"
	idClanRestart  = "clan_restart_button"
	idFWARestart   = "fwa_restart_button"
	idFlowCount    = "flow_count"
	idFlowAccounts = "flow_accounts"

	idStartTrial = "start_trial"
	idDelayTrial = "delay_trial"
	idDenyTrial  = "deny_trial"
	idVoteStart  = "vote_start_button"
	idUpvote     = "upvote"
	idNeutral    = "neutral"
	idDownvote   = "downvote"
	idVoteDetail = "voting_details"

	idTicketDeleteConfirm = "ticket_delete_confirm"
	idTicketReapply       = "ticket_reapply_button"
	idBugRespond          = "bug_respond_button"

	modalPrefix = "modal_"
)

// disabledRows returns a copy of the component tree with every button
// and select menu disabled. Both value and pointer forms occur: locally
// built rows are values, rows decoded from the API are pointers.
func disabledRows(components []discordgo.MessageComponent) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(components))
	for _, component := range components {
		var row discordgo.ActionsRow
		switch typed := component.(type) {
		case discordgo.ActionsRow:
			row = typed
		case *discordgo.ActionsRow:
			row = *typed
		default:
			out = append(out, component)
			continue
		}
		inner := make([]discordgo.MessageComponent, 0, len(row.Components))
		for _, child := range row.Components {
			switch typed := child.(type) {
			case discordgo.Button:
				typed.Disabled = true
				inner = append(inner, typed)
			case *discordgo.Button:
				button := *typed
				button.Disabled = true
				inner = append(inner, button)
			case discordgo.SelectMenu:
				typed.Disabled = true
				inner = append(inner, typed)
			case *discordgo.SelectMenu:
				menu := *typed
				menu.Disabled = true
				inner = append(inner, menu)
			default:
				inner = append(inner, child)
			}
		}
		out = append(out, discordgo.ActionsRow{Components: inner})
	}
	return out
}
