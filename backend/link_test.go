package backend

import (
	"testing"

	"github.com/afo-tools/afo-alliance-bot/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLinkAccount(t *testing.T) {
	backend := newTestBackend(t)

	require.NoError(t, backend.LinkAccount("user1", "#AAA", "Main"))

	err := backend.LinkAccount("user1", "#AAA", "Main")
	assert.ErrorIs(t, err, common.ErrValidation, "relinking your own account")

	err = backend.LinkAccount("user2", "#AAA", "Main")
	assert.ErrorIs(t, err, common.ErrForbidden, "account belongs to someone else")
}

func TestUnlinkAccount(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.LinkAccount("user1", "#AAA", "Main"))

	err := backend.UnlinkAccount("user2", "#AAA")
	assert.ErrorIs(t, err, common.ErrForbidden)

	require.NoError(t, backend.UnlinkAccount("user1", "#AAA"))

	accounts, err := backend.AccountsOf("user1")
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestOwnerOf(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.LinkAccount("user1", "#AAA", "Main"))

	owner, err := backend.OwnerOf("#AAA")
	require.NoError(t, err)
	assert.Equal(t, "user1", owner)

	_, err = backend.OwnerOf("#BBB")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRelinkAfterUnlink(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.LinkAccount("user1", "#AAA", "Main"))
	require.NoError(t, backend.UnlinkAccount("user1", "#AAA"))

	// The tag is free again, even for a different user.
	require.NoError(t, backend.LinkAccount("user2", "#AAA", "Main"))

	owner, err := backend.OwnerOf("#AAA")
	require.NoError(t, err)
	assert.Equal(t, "user2", owner)
}
