package backend

import (
	"fmt"
	"testing"

	"github.com/afo-tools/afo-alliance-bot/coc"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestBackend opens a fresh in-memory database named after the test
// so parallel tests never share state.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	err = db.AutoMigrate(
		&model.Clan{},
		&model.EligibilityCheck{},
		&model.LinkedAccount{},
		&model.Session{},
		&model.Selection{},
		&model.Ticket{},
		&model.TicketTimer{},
		&model.TrialEvent{},
		&model.VotePoll{},
		&model.Vote{},
		&model.GuildSettings{},
		&model.StaffPosition{},
		&model.StaffQuestion{},
	)
	require.NoError(t, err)

	sugar := zap.NewNop().Sugar()
	return NewBackend(sugar, db, coc.NewClient("", "", sugar))
}
