package backend

import (
	"errors"
	"fmt"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tally is the per-bucket breakdown of a poll.
type Tally struct {
	Upvotes   []string
	Neutrals  []string
	Downvotes []string
}

func (t Tally) Total() int {
	return len(t.Upvotes) + len(t.Neutrals) + len(t.Downvotes)
}

// CreatePoll opens a trial-result poll and returns it with its token.
func (backend *Backend) CreatePoll(channelID, threadID, trialType string) (*model.VotePoll, error) {
	poll := &model.VotePoll{
		Token:     uuid.NewString(),
		ChannelID: channelID,
		ThreadID:  threadID,
		Type:      trialType,
	}
	err := backend.DB.Create(poll).Error
	if err != nil {
		return nil, err
	}
	backend.Logger.Infof("Created vote poll %s for channel %s", poll.Token, channelID)
	return poll, nil
}

// PollByToken loads a poll with its votes.
func (backend *Backend) PollByToken(token string) (*model.VotePoll, error) {
	var poll model.VotePoll
	err := backend.DB.Preload("Votes").Where("token = ?", token).First(&poll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("poll %s: %w", token, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

// SetPollMessage records the Discord message rendering the poll.
func (backend *Backend) SetPollMessage(token, messageID string) error {
	return backend.DB.Model(&model.VotePoll{}).Where("token = ?", token).
		Update("message_id", messageID).Error
}

// CastVote places the voter in a bucket, moving them out of any bucket
// they were in before. A voter is never counted twice.
func (backend *Backend) CastVote(token, voterID string, bucket model.VoteBucket) (*model.VotePoll, error) {
	switch bucket {
	case model.BucketUpvote, model.BucketNeutral, model.BucketDownvote:
	default:
		return nil, fmt.Errorf("unknown vote bucket %q: %w", bucket, common.ErrValidation)
	}
	poll, err := backend.PollByToken(token)
	if err != nil {
		return nil, err
	}
	err = backend.DB.Transaction(func(tx *gorm.DB) error {
		var vote model.Vote
		err := tx.Where("poll_id = ? AND voter_id = ?", poll.ID, voterID).First(&vote).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return tx.Create(&model.Vote{PollID: poll.ID, VoterID: voterID, Bucket: bucket}).Error
		}
		if err != nil {
			return err
		}
		return tx.Model(&vote).Update("bucket", bucket).Error
	})
	if err != nil {
		return nil, err
	}
	return backend.PollByToken(token)
}

// TallyPoll buckets the voters of a poll.
func (backend *Backend) TallyPoll(poll *model.VotePoll) Tally {
	var tally Tally
	for _, vote := range poll.Votes {
		switch vote.Bucket {
		case model.BucketUpvote:
			tally.Upvotes = append(tally.Upvotes, vote.VoterID)
		case model.BucketNeutral:
			tally.Neutrals = append(tally.Neutrals, vote.VoterID)
		case model.BucketDownvote:
			tally.Downvotes = append(tally.Downvotes, vote.VoterID)
		}
	}
	return tally
}
