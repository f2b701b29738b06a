package controller

import (
	"context"
	"time"

	"github.com/afo-tools/afo-alliance-bot/backend"
	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Controller owns the periodic jobs: timer sweeps, cache refreshes and
// the database garbage collection.
type Controller struct {
	Backend   *backend.Backend
	Logger    *zap.SugaredLogger
	Scheduler *gocron.Scheduler

	// LiveChannels reports the channel IDs that still exist on Discord.
	// The bot layer plugs this in before Start.
	LiveChannels func() (map[string]bool, error)
}

func NewController(back *backend.Backend, logger *zap.SugaredLogger) *Controller {
	return &Controller{
		Backend:   back,
		Logger:    logger,
		Scheduler: gocron.NewScheduler(time.UTC),
	}
}

// Start registers the jobs and launches the scheduler in its own
// goroutine.
func (controller *Controller) Start() error {
	if _, err := controller.Scheduler.Every(1).Minute().Do(controller.sweepTimers); err != nil {
		return err
	}
	if _, err := controller.Scheduler.Every(3).Hours().Do(controller.refreshPlayers); err != nil {
		return err
	}
	if _, err := controller.Scheduler.Every(24).Hours().Do(controller.collectGarbage); err != nil {
		return err
	}
	if _, err := controller.Scheduler.Every(48).Hours().Do(controller.clearCaches); err != nil {
		return err
	}
	if _, err := controller.Scheduler.Every(1).Day().At("08:00").Do(controller.notifyCWLEnd); err != nil {
		return err
	}
	controller.Scheduler.StartAsync()
	return nil
}

func (controller *Controller) Stop() {
	controller.Scheduler.Stop()
}

func (controller *Controller) sweepTimers() {
	if err := controller.Backend.SweepTicketTimers(); err != nil {
		controller.Logger.Errorf("ticket timer sweep failed: %s", err.Error())
	}
	if err := controller.Backend.SweepTrialEvents(); err != nil {
		controller.Logger.Errorf("trial event sweep failed: %s", err.Error())
	}
}

func (controller *Controller) refreshPlayers() {
	controller.Logger.Debugf("Start refreshing cached players")
	err := controller.Backend.COC.RefreshPlayers(context.Background())
	if err != nil {
		controller.Logger.Infof("player refresh aborted: %s", err.Error())
	}
	controller.Logger.Debugf("Finish refreshing cached players")
}

func (controller *Controller) clearCaches() {
	controller.Backend.COC.ClearCaches()
	controller.Logger.Infof("Cleared game API caches")
}

// collectGarbage drops rows whose channel disappeared without the bot
// seeing the delete event.
func (controller *Controller) collectGarbage() {
	if controller.LiveChannels == nil {
		return
	}
	liveChannels, err := controller.LiveChannels()
	if err != nil {
		controller.Logger.Errorf("could not list live channels, skipping GC: %s", err.Error())
		return
	}
	if err := controller.Backend.CleanupOrphans(liveChannels); err != nil {
		controller.Logger.Errorf("orphan cleanup failed: %s", err.Error())
	}
}

// notifyCWLEnd fires on the 10th of each month, when the war league
// ends.
func (controller *Controller) notifyCWLEnd() {
	if time.Now().UTC().Day() != 10 {
		return
	}
	if err := controller.Backend.NotifyCWLEnd(); err != nil {
		controller.Logger.Errorf("CWL end notification failed: %s", err.Error())
	}
}
