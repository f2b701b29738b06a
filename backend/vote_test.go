package backend

import (
	"testing"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCastVote(t *testing.T) {
	backend := newTestBackend(t)
	poll, err := backend.CreatePoll("chan1", "thread1", "Gatekeeper")
	require.NoError(t, err)

	poll, err = backend.CastVote(poll.Token, "voter1", model.BucketUpvote)
	require.NoError(t, err)
	_, err = backend.CastVote(poll.Token, "voter2", model.BucketDownvote)
	require.NoError(t, err)
	poll, err = backend.CastVote(poll.Token, "voter3", model.BucketUpvote)
	require.NoError(t, err)

	tally := backend.TallyPoll(poll)
	assert.Len(t, tally.Upvotes, 2)
	assert.Len(t, tally.Downvotes, 1)
	assert.Empty(t, tally.Neutrals)
	assert.Equal(t, 3, tally.Total())
}

func TestCastVoteMovesBetweenBuckets(t *testing.T) {
	backend := newTestBackend(t)
	poll, err := backend.CreatePoll("chan1", "thread1", "Gatekeeper")
	require.NoError(t, err)

	_, err = backend.CastVote(poll.Token, "voter1", model.BucketUpvote)
	require.NoError(t, err)
	poll, err = backend.CastVote(poll.Token, "voter1", model.BucketNeutral)
	require.NoError(t, err)

	tally := backend.TallyPoll(poll)
	assert.Empty(t, tally.Upvotes)
	assert.Equal(t, []string{"voter1"}, tally.Neutrals)
	assert.Equal(t, 1, tally.Total(), "a voter sits in exactly one bucket")
}

func TestCastVoteErrors(t *testing.T) {
	backend := newTestBackend(t)
	poll, err := backend.CreatePoll("chan1", "thread1", "Gatekeeper")
	require.NoError(t, err)

	_, err = backend.CastVote(poll.Token, "voter1", model.VoteBucket("maybe"))
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = backend.CastVote("no-such-poll", "voter1", model.BucketUpvote)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestPollPreloadsVotes(t *testing.T) {
	backend := newTestBackend(t)
	poll, err := backend.CreatePoll("chan1", "thread1", "Gatekeeper")
	require.NoError(t, err)
	_, err = backend.CastVote(poll.Token, "voter1", model.BucketNeutral)
	require.NoError(t, err)

	loaded, err := backend.PollByToken(poll.Token)
	require.NoError(t, err)
	require.Len(t, loaded.Votes, 1)
	assert.Equal(t, model.BucketNeutral, loaded.Votes[0].Bucket)
}
