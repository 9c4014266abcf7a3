package models

// GameModes is the fixed, ordered set of rated modes. The order is the order
// ratings are averaged into the global score and the order columns appear in
// leaderboard rows.
var GameModes = []string{
	"modern_smp",
	"sword",
	"diamond_pot",
	"netherite_pot",
	"axe",
	"modern_uhc",
	"mace",
	"crystal",
}

// GlobalTarget names the global score column in admin overrides.
const GlobalTarget = "global"

// DefaultRating is the starting value for every rating column.
const DefaultRating = 500

// IsGameMode reports whether mode is one of GameModes.
func IsGameMode(mode string) bool {
	for _, m := range GameModes {
		if m == mode {
			return true
		}
	}
	return false
}

// RatingColumn returns the storage column for a mode, e.g. "sword_elo".
// Callers must validate mode with IsGameMode first.
func RatingColumn(mode string) string {
	return mode + "_elo"
}
