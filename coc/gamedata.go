package coc

// levelCap is one town-hall step of a unit's upgrade curve.
type levelCap struct {
	TownHall int
	Max      int
}

// heroCaps embeds the per-town-hall hero level caps. The player API only
// reports the game-wide maximum, so TH-relative progression needs its own
// game data.
var heroCaps = map[string][]levelCap{
	"Barbarian King": {
		{7, 10}, {8, 10}, {9, 30}, {10, 40}, {11, 50}, {12, 65},
		{13, 75}, {14, 80}, {15, 90}, {16, 95}, {17, 100},
	},
	"Archer Queen": {
		{9, 30}, {10, 40}, {11, 50}, {12, 65},
		{13, 75}, {14, 80}, {15, 90}, {16, 95}, {17, 100},
	},
	"Grand Warden": {
		{11, 20}, {12, 40}, {13, 50}, {14, 55}, {15, 65}, {16, 70}, {17, 75},
	},
	"Royal Champion": {
		{13, 25}, {14, 30}, {15, 40}, {16, 45}, {17, 50},
	},
}

// MaxLevelAt returns the unit's level cap at the given town hall. Units
// without embedded cap data fall back to the game-wide MaxLevel from the
// API.
func MaxLevelAt(unit Unit, townHall int) int {
	best := 0
	for _, step := range heroCaps[unit.Name] {
		if step.TownHall <= townHall && step.Max > best {
			best = step.Max
		}
	}
	if best == 0 {
		return unit.MaxLevel
	}
	return best
}
