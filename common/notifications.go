package common

import "github.com/afo-tools/afo-alliance-bot/model"

// TrialDueNotification is pushed by the backend sweep to the bot when a
// trial event's timestamp has elapsed and Discord-side work is needed.
type TrialDueNotification struct {
	Event  model.TrialEvent
	Action string
}

// TicketExpiredNotification is pushed when an armed inactivity timer
// fires and the ticket channel must be deleted.
type TicketExpiredNotification struct {
	Timer  model.TicketTimer
	Ticket model.Ticket
}

// CWLEndNotification is pushed once per season when after-CWL ticket
// owners should be pinged.
type CWLEndNotification struct {
	Tickets []model.Ticket
}
