package backend

import (
	"math/rand"

	"github.com/afo-tools/afo-alliance-bot/coc"
	"github.com/afo-tools/afo-alliance-bot/model"
)

// CheckFunc scores a player snapshot against a numeric minimum.
type CheckFunc func(player *coc.Player, minValue int) bool

// CheckFuncs is the closed registry of eligibility checks a clan may
// configure.
var CheckFuncs = map[string]CheckFunc{
	"hero_sum":        HeroSum,
	"hero_max_pct":    HeroMaxPct,
	"overall_max_pct": OverallMaxPct,
}

// CheckNames maps check keys to their staff-facing display names.
var CheckNames = map[string]string{
	"hero_sum":        "Hero Level Sum",
	"hero_max_pct":    "Hero Progression %",
	"overall_max_pct": "Overall Progression %",
}

// HeroSum passes when the sum of home-village hero levels reaches the
// minimum.
func HeroSum(player *coc.Player, minValue int) bool {
	sum := 0
	for _, hero := range player.HomeHeroes() {
		sum += hero.Level
	}
	return sum >= minValue
}

// HeroMaxPct passes when hero levels reach the given percentage of the
// cap at the player's town hall. A town hall with no heroes cannot be
// rushed, so a zero cap passes.
func HeroMaxPct(player *coc.Player, minValue int) bool {
	return unitPct(player.HomeHeroes(), player.TownHallLevel, minValue)
}

// OverallMaxPct is HeroMaxPct over heroes, troops and spells combined.
func OverallMaxPct(player *coc.Player, minValue int) bool {
	return unitPct(player.HomeUnits(), player.TownHallLevel, minValue)
}

func unitPct(units []coc.Unit, townHall, minValue int) bool {
	levelSum := 0
	maxSum := 0
	for _, unit := range units {
		levelSum += unit.Level
		maxSum += coc.MaxLevelAt(unit, townHall)
	}
	if maxSum == 0 {
		return true
	}
	return float64(levelSum)/float64(maxSum)*100 >= float64(minValue)
}

// ClanEligible reports whether a player passes a clan's requirement and
// every configured check. Checks are AND-ed and short-circuit on the
// first failure.
func (backend *Backend) ClanEligible(player *coc.Player, clan *model.Clan) bool {
	if !clan.Recruitment {
		return false
	}
	if player.TownHallLevel < clan.RequiredTH {
		return false
	}
	if clan.MaxTH > 0 && player.TownHallLevel > clan.MaxTH {
		return false
	}
	for _, check := range clan.Checks {
		checkFunc, ok := CheckFuncs[check.Name]
		if !ok {
			backend.Logger.Infof("Clan [%s] has unknown check %s, skipping", clan.Tag, check.Name)
			continue
		}
		if !checkFunc(player, check.MinValue) {
			backend.Logger.Debugf("Player %s failed check %s (min %d) for clan [%s]",
				player.Tag, check.Name, check.MinValue, clan.Tag)
			return false
		}
	}
	return true
}

// EligibleClans evaluates a player against every registered clan and
// returns the passing ones. FWA and league-only clans have their own
// flows and are excluded from the generic listing.
func (backend *Backend) EligibleClans(player *coc.Player) ([]model.Clan, error) {
	var clans []model.Clan
	err := backend.DB.Preload("Checks").Find(&clans).Error
	if err != nil {
		return nil, err
	}
	var eligible []model.Clan
	for i := range clans {
		if clans[i].Type == model.ClanTypeFWA || clans[i].Type == model.ClanTypeCWL {
			continue
		}
		if backend.ClanEligible(player, &clans[i]) {
			eligible = append(eligible, clans[i])
		}
	}
	return eligible, nil
}

// ShuffleClans randomizes clan presentation order. Applicants tend to
// pick from the top of the menu, so a random order spreads them across
// the alliance instead of funneling everyone into the same clan.
func ShuffleClans(clans []model.Clan) {
	rand.Shuffle(len(clans), func(i, j int) {
		clans[i], clans[j] = clans[j], clans[i]
	})
}
