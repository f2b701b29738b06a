package coc

// Unit is a single troop, spell or hero on a player profile. MaxLevel is
// the game-wide cap, not the cap at the player's town hall; see
// MaxLevelAt for the TH-relative one.
type Unit struct {
	Name     string `json:"name"`
	Level    int    `json:"level"`
	MaxLevel int    `json:"maxLevel"`
	Village  string `json:"village"`
}

// HomeVillage units only; builder-base levels never gate eligibility.
const homeVillage = "home"

type Player struct {
	Tag           string        `json:"tag"`
	Name          string        `json:"name"`
	TownHallLevel int           `json:"townHallLevel"`
	ExpLevel      int           `json:"expLevel"`
	Trophies      int           `json:"trophies"`
	WarStars      int           `json:"warStars"`
	Role          string        `json:"role"`
	Clan          *PlayerClan   `json:"clan"`
	Heroes        []Unit        `json:"heroes"`
	Troops        []Unit        `json:"troops"`
	Spells        []Unit        `json:"spells"`
	League        *PlayerLeague `json:"league"`
}

type PlayerClan struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
}

type PlayerLeague struct {
	Name string `json:"name"`
}

// HomeHeroes returns the home-village heroes only.
func (p *Player) HomeHeroes() []Unit {
	var heroes []Unit
	for _, h := range p.Heroes {
		if h.Village == homeVillage {
			heroes = append(heroes, h)
		}
	}
	return heroes
}

// HomeUnits returns heroes, troops and spells of the home village.
func (p *Player) HomeUnits() []Unit {
	var units []Unit
	for _, group := range [][]Unit{p.Heroes, p.Troops, p.Spells} {
		for _, u := range group {
			if u.Village == homeVillage {
				units = append(units, u)
			}
		}
	}
	return units
}

type Clan struct {
	Tag              string `json:"tag"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Members          int    `json:"members"`
	ClanLevel        int    `json:"clanLevel"`
	WarWins          int    `json:"warWins"`
	WarLeague        *War   `json:"warLeague"`
	RequiredTownhall int    `json:"requiredTownhallLevel"`
}

type War struct {
	Name string `json:"name"`
}
