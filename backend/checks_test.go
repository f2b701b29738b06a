package backend

import (
	"testing"

	"github.com/afo-tools/afo-alliance-bot/coc"
	"github.com/afo-tools/afo-alliance-bot/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlayer(townHall int, heroes ...coc.Unit) *coc.Player {
	return &coc.Player{
		Tag:           "#TESTTAG",
		Name:          "Tester",
		TownHallLevel: townHall,
		Heroes:        heroes,
	}
}

func hero(level, maxLevel int) coc.Unit {
	return coc.Unit{Name: "Hero", Level: level, MaxLevel: maxLevel, Village: "home"}
}

func TestHeroSum(t *testing.T) {
	player := testPlayer(12, hero(30, 40), hero(20, 40))

	assert.True(t, HeroSum(player, 50))
	assert.True(t, HeroSum(player, 40))
	assert.False(t, HeroSum(player, 60))
}

func TestHeroSumIgnoresBuilderBase(t *testing.T) {
	player := testPlayer(12,
		hero(10, 40),
		coc.Unit{Name: "Battle Machine", Level: 30, MaxLevel: 35, Village: "builderBase"},
	)

	assert.False(t, HeroSum(player, 20))
	assert.True(t, HeroSum(player, 10))
}

func TestHeroMaxPct(t *testing.T) {
	// 50 of 80 is 62.5%.
	player := testPlayer(12, hero(30, 40), hero(20, 40))

	assert.True(t, HeroMaxPct(player, 60))
	assert.False(t, HeroMaxPct(player, 63))
}

func TestHeroMaxPctNoHeroesPasses(t *testing.T) {
	// A town hall too low to have heroes cannot be rushed.
	player := testPlayer(6)

	assert.True(t, HeroMaxPct(player, 90))
}

func TestOverallMaxPct(t *testing.T) {
	player := testPlayer(12, hero(40, 40))
	player.Troops = []coc.Unit{
		{Name: "Barbarian", Level: 5, MaxLevel: 10, Village: "home"},
	}
	player.Spells = []coc.Unit{
		{Name: "Lightning Spell", Level: 5, MaxLevel: 10, Village: "home"},
	}

	// 50 of 60 is about 83%.
	assert.True(t, OverallMaxPct(player, 80))
	assert.False(t, OverallMaxPct(player, 85))
}

func TestClanEligibleTierGating(t *testing.T) {
	backend := newTestBackend(t)
	clan := &model.Clan{Tag: "#CLAN", Recruitment: true, RequiredTH: 12, MaxTH: 14}

	assert.False(t, backend.ClanEligible(testPlayer(11), clan))
	assert.True(t, backend.ClanEligible(testPlayer(12), clan))
	assert.True(t, backend.ClanEligible(testPlayer(14), clan))
	assert.False(t, backend.ClanEligible(testPlayer(15), clan))

	clan.Recruitment = false
	assert.False(t, backend.ClanEligible(testPlayer(13), clan))
}

func TestClanEligibleNoMaxTH(t *testing.T) {
	backend := newTestBackend(t)
	clan := &model.Clan{Tag: "#CLAN", Recruitment: true, RequiredTH: 10}

	assert.True(t, backend.ClanEligible(testPlayer(16), clan))
}

func TestClanEligibleChecks(t *testing.T) {
	backend := newTestBackend(t)
	clan := &model.Clan{
		Tag:         "#CLAN",
		Recruitment: true,
		Checks: []model.EligibilityCheck{
			{Name: "hero_sum", MinValue: 40},
			{Name: "hero_max_pct", MinValue: 60},
		},
	}

	assert.True(t, backend.ClanEligible(testPlayer(12, hero(30, 40), hero(20, 40)), clan))
	assert.False(t, backend.ClanEligible(testPlayer(12, hero(10, 40), hero(10, 40)), clan))
}

func TestClanEligibleUnknownCheckSkipped(t *testing.T) {
	backend := newTestBackend(t)
	clan := &model.Clan{
		Tag:         "#CLAN",
		Recruitment: true,
		Checks:      []model.EligibilityCheck{{Name: "war_stars_per_day", MinValue: 5}},
	}

	assert.True(t, backend.ClanEligible(testPlayer(12), clan))
}

func TestEligibleClansExcludesSpecialTypes(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.AddClan(&model.Clan{Tag: "#MAIN", Name: "Main", Type: model.ClanTypeCompetitive, Recruitment: true}))
	require.NoError(t, backend.AddClan(&model.Clan{Tag: "#FWA", Name: "Farm", Type: model.ClanTypeFWA, Recruitment: true}))
	require.NoError(t, backend.AddClan(&model.Clan{Tag: "#CWL", Name: "League", Type: model.ClanTypeCWL, Recruitment: true}))
	require.NoError(t, backend.AddClan(&model.Clan{Tag: "#FULL", Name: "Full", Type: model.ClanTypeCompetitive, Recruitment: false}))

	eligible, err := backend.EligibleClans(testPlayer(13))
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, "#MAIN", eligible[0].Tag)
}

func TestAddCheckValidation(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.AddClan(&model.Clan{Tag: "#CLAN", Name: "Clan"}))

	assert.Error(t, backend.AddCheck("#CLAN", "no_such_check", 10))
	assert.Error(t, backend.AddCheck("#CLAN", "hero_sum", -1))

	require.NoError(t, backend.AddCheck("#CLAN", "hero_sum", 100))
	assert.Error(t, backend.AddCheck("#CLAN", "hero_sum", 120), "duplicate check name")

	require.NoError(t, backend.AddCheck("#CLAN", "hero_max_pct", 50))
	assert.Error(t, backend.AddCheck("#CLAN", "overall_max_pct", 50), "clan is at the check cap")
}

func TestEditCheck(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.AddClan(&model.Clan{Tag: "#CLAN", Name: "Clan"}))
	require.NoError(t, backend.AddCheck("#CLAN", "hero_sum", 100))

	require.NoError(t, backend.EditCheck("#CLAN", "hero_sum", 120))
	assert.Error(t, backend.EditCheck("#CLAN", "hero_max_pct", 50), "check does not exist")

	clan, err := backend.ClanByTag("#CLAN")
	require.NoError(t, err)
	require.Len(t, clan.Checks, 1)
	assert.Equal(t, 120, clan.Checks[0].MinValue)
}

func TestHeroMaxPctUsesTownHallCap(t *testing.T) {
	// Level 45 of the TH11 cap (50) is 90%; measured against the
	// game-wide cap the API reports it would only be 45%.
	player := testPlayer(11, coc.Unit{Name: "Archer Queen", Level: 45, MaxLevel: 100, Village: "home"})

	assert.True(t, HeroMaxPct(player, 85))
	assert.False(t, HeroMaxPct(player, 95))
}

func TestReaddRemovedClan(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.AddClan(&model.Clan{Tag: "#CLAN", Name: "Clan"}))
	require.NoError(t, backend.RemoveClan("#CLAN"))

	require.NoError(t, backend.AddClan(&model.Clan{Tag: "#CLAN", Name: "Reborn"}))

	clan, err := backend.ClanByTag("#CLAN")
	require.NoError(t, err)
	assert.Equal(t, "Reborn", clan.Name)
}
