package backend

import (
	"github.com/afo-tools/afo-alliance-bot/coc"
	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/pemistahl/lingua-go"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Backend owns the database-backed services: clan registry, application
// sessions, tickets, trials and votes. Discord work stays in the bot
// layer; the backend pushes notifications over channels when a sweep
// decides Discord-side action is due.
type Backend struct {
	COC        *coc.Client
	Detector   lingua.LanguageDetector
	Logger     *zap.SugaredLogger
	DB         *gorm.DB
	TrialChan  chan common.TrialDueNotification
	TicketChan chan common.TicketExpiredNotification
	CWLChan    chan common.CWLEndNotification
}

func NewBackend(logger *zap.SugaredLogger, db *gorm.DB, client *coc.Client) *Backend {
	languages := []lingua.Language{
		lingua.English,
		lingua.German,
		lingua.French,
		lingua.Polish,
		lingua.Italian,
		lingua.Spanish,
		lingua.Dutch,
		lingua.Portuguese,
		lingua.Russian,
		lingua.Turkish,
		lingua.Arabic,
		lingua.Chinese,
		lingua.Japanese,
		lingua.Korean,
		lingua.Vietnamese,
		lingua.Indonesian,
		lingua.Hindi,
	}

	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(languages...).
		Build()

	return &Backend{
		COC:        client,
		Detector:   detector,
		Logger:     logger,
		DB:         db,
		TrialChan:  make(chan common.TrialDueNotification, 16),
		TicketChan: make(chan common.TicketExpiredNotification, 16),
		CWLChan:    make(chan common.CWLEndNotification, 1),
	}
}

// DetectLanguage tags a clan description with its likely language, or
// returns empty when confidence is too low to be worth storing.
func (backend *Backend) DetectLanguage(text string) string {
	if text == "" {
		return ""
	}
	confidenceValues := backend.Detector.ComputeLanguageConfidenceValues(text)
	for _, elem := range confidenceValues {
		if elem.Value() > 0.50 {
			backend.Logger.Debugf("Language detection %s: %.2f", elem.Language(), elem.Value())
			return elem.Language().String()
		}
	}
	return ""
}
