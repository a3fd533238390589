// Copyright (c) 2026 AnimeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

// Theme is a colour scheme the clients can apply.
type Theme struct {
	Key       string `json:"key"`
	Name      string `json:"name"`
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	IsPremium bool   `json:"is_premium"`
}

// DefaultTheme is assigned to every new account.
const DefaultTheme = "purpleDream"

// themes is the catalog in display order: free themes first.
var themes = []Theme{
	{"purpleDream", "Purple Dream", "#667eea", "#764ba2", false},
	{"oceanBlue", "Ocean Blue", "#2196F3", "#21CBF3", false},
	{"forestGreen", "Forest Green", "#11998e", "#38ef7d", false},
	{"sunsetRed", "Sunset Red", "#ee0979", "#ff6a00", false},
	{"orangeBlast", "Orange Blast", "#f46b45", "#eea849", false},
	{"darkNight", "Dark Night", "#232526", "#414345", false},
	{"mintFresh", "Mint Fresh", "#00b4db", "#0083b0", false},

	{"pinkDream", "Pink Dream", "#ff0080", "#ff8c00", true},
	{"auroraGlow", "Aurora Glow", "#00f5d4", "#9b5de5", true},
	{"cyberPunk", "Cyber Punk", "#ff007f", "#00e5ff", true},
	{"lavaFlow", "Lava Flow", "#f83600", "#f9d423", true},
	{"goldenHour", "Golden Hour", "#f6d365", "#fda085", true},
	{"candyPop", "Candy Pop", "#ff6fd8", "#ff8a00", true},
	{"twilight", "Twilight", "#203a43", "#2c5364", true},
	{"royalWave", "Royal Wave", "#8360c3", "#2ebf91", true},
	{"steelGrey", "Steel Grey", "#8e9eab", "#eef2f3", true},
	{"bubbleGum", "Bubble Gum", "#ff9a9e", "#fecfef", true},
	{"grapeSoda", "Grape Soda", "#a18cd1", "#fbc2eb", true},
	{"frostMint", "Frost Mint", "#a1ffce", "#faffd1", true},
	{"tealLagoon", "Teal Lagoon", "#43cea2", "#185a9d", true},
	{"neonRise", "Neon Rise", "#00f260", "#0575e6", true},
	{"roseGold", "Rose Gold", "#b76e79", "#ffd1dc", true},
	{"slatePulse", "Slate Pulse", "#2b5876", "#4e4376", true},
	{"springMeadow", "Spring Meadow", "#56ab2f", "#a8e063", true},
	{"autumnBreeze", "Autumn Breeze", "#d1913c", "#ffd194", true},
	{"winterSky", "Winter Sky", "#1e3c72", "#2a5298", true},
	{"sunrise", "Sunrise", "#ff512f", "#dd2476", true},
}

// Themes returns a copy of the theme catalog.
func Themes() []Theme {
	return append([]Theme(nil), themes...)
}

// LookupTheme finds a theme by key.
func LookupTheme(key string) (Theme, bool) {
	for _, theme := range themes {
		if theme.Key == key {
			return theme, true
		}
	}
	return Theme{}, false
}
