package coc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaxLevelAt(t *testing.T) {
	queen := Unit{Name: "Archer Queen", Level: 45, MaxLevel: 100}

	assert.Equal(t, 50, MaxLevelAt(queen, 11))
	assert.Equal(t, 65, MaxLevelAt(queen, 12))
	assert.Equal(t, 100, MaxLevelAt(queen, 17))

	// Below the hero's unlock town hall there is no cap data.
	assert.Equal(t, 100, MaxLevelAt(queen, 8))
}

func TestMaxLevelAtFallsBackToAPI(t *testing.T) {
	troop := Unit{Name: "Barbarian", Level: 5, MaxLevel: 12}

	assert.Equal(t, 12, MaxLevelAt(troop, 11))
}
