package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/afo-tools/afo-alliance-bot/backend"
	"github.com/afo-tools/afo-alliance-bot/bot"
	"github.com/afo-tools/afo-alliance-bot/coc"
	"github.com/afo-tools/afo-alliance-bot/controller"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"moul.io/zapgorm2"
)

func main() {
	godotenv.Load()

	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer zapLogger.Sync()
	logger := zapLogger.Sugar()

	botToken := os.Getenv("DISCORD_TOKEN")
	if botToken == "" {
		logger.Fatalf("DISCORD_TOKEN is not set")
	}
	cocToken := os.Getenv("COC_API_TOKEN")
	guildID := os.Getenv("GUILD_ID")
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "alliance.db"
	}

	gormLogger := zapgorm2.New(zapLogger)
	gormLogger.SetAsDefault()
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: gormLogger})
	if err != nil {
		logger.Fatalf("failed to open database %s: %s", dbPath, err.Error())
	}
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
	if err != nil {
		logger.Fatalf("migration failed: %s", err.Error())
	}

	client := coc.NewClient(cocToken, os.Getenv("COC_API_URL"), logger)
	back := backend.NewBackend(logger, db, client)

	bot.OperatorID = os.Getenv("OPERATOR_ID")
	allianceBot := bot.NewAllianceBot(botToken, guildID, logger, db, back)
	if allianceBot == nil {
		logger.Fatalf("failed to start the Discord bot")
	}

	jobs := controller.NewController(back, logger)
	jobs.LiveChannels = allianceBot.LiveChannels
	if err := jobs.Start(); err != nil {
		logger.Fatalf("failed to start scheduler: %s", err.Error())
	}

	go allianceBot.StartBot()
	logger.Infof("Bot is up, press CTRL-C to exit")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	jobs.Stop()
	allianceBot.Discord.Close()
}
