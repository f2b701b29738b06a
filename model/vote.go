package model

import (
	"gorm.io/gorm"
)

type VoteBucket string

const (
	BucketUpvote   VoteBucket = "upvote"
	BucketNeutral  VoteBucket = "neutral"
	BucketDownvote VoteBucket = "downvote"
)

// VotePoll is a trial-result poll living in a private thread.
type VotePoll struct {
	gorm.Model
	Token     string `gorm:"uniqueIndex"`
	ChannelID string
	ThreadID  string
	MessageID string
	Type      string
	Votes     []Vote `gorm:"foreignKey:PollID"`
}

// Vote places one voter in one bucket. The unique index makes moving
// between buckets an update, never a second row.
type Vote struct {
	gorm.Model
	PollID  uint   `gorm:"index:idx_poll_voter,unique"`
	VoterID string `gorm:"index:idx_poll_voter,unique"`
	Bucket  VoteBucket
}
