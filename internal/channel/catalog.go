package channel

// DefaultCatalog returns the built-in catalog of arcade-fighting ROM
// channels, plus "lobby" for clients that haven't picked a game channel
// yet. The catalog is a constant list injected at startup, not derived
// from any runtime source; operators with a larger ROM set can supply
// their own []Def to NewRegistry instead.
func DefaultCatalog() []Def {
	return []Def{
		{Name: "lobby", RomID: "", Welcome: "The Lobby"},
		{Name: "sfiii3n", RomID: "sfiii3n", Welcome: "Street Fighter III 3rd Strike: Fight for the Future (Japan 990512, NO CD)"},
		{Name: "kof98", RomID: "kof98", Welcome: "King of Fighters '98 (Room 1)"},
		{Name: "1941", RomID: "1941", Welcome: "1941 - Counter Attack (World)"},
		{Name: "3countb", RomID: "3countb", Welcome: "3 Count Bout"},
		{Name: "aodk", RomID: "aodk", Welcome: "Aggressors of Dark Kombat"},
		{Name: "armwar", RomID: "armwar", Welcome: "Armored Warriors (941024 Europe)"},
		{Name: "bjourney", RomID: "bjourney", Welcome: "Blue's Journey"},
		{Name: "burningf", RomID: "burningf", Welcome: "Burning Fight (set 1)"},
		{Name: "csclub", RomID: "csclub", Welcome: "Capcom Sports Club (970722 Euro)"},
		{Name: "ddsom", RomID: "ddsom", Welcome: "Dungeons & Dragons - shadow over mystara (960619 Euro)"},
		{Name: "donpachi", RomID: "donpachi", Welcome: "DonPachi (ver. 1.01 1995/05/11, U.S.A)"},
		{Name: "esprade", RomID: "esprade", Welcome: "ESP Ra.De. (1998 4/22 international ver.)"},
		{Name: "fatfury3", RomID: "fatfury3", Welcome: "Fatal Fury 3 - road to the final victory"},
		{Name: "flipshot", RomID: "flipshot", Welcome: "Battle Flip Shot"},
		{Name: "ganryu", RomID: "ganryu", Welcome: "Ganryu"},
		{Name: "ghouls", RomID: "ghouls", Welcome: "Ghouls'n Ghosts (World)"},
		{Name: "guwange", RomID: "guwange", Welcome: "Guwange (Japan, 1999 6/24 master ver.)"},
		{Name: "karnovr", RomID: "karnovr", Welcome: "Karnov's Revenge"},
		{Name: "kof2000", RomID: "kof2000", Welcome: "King of Fighters 2000"},
		{Name: "kof95", RomID: "kof95", Welcome: "King of Fighters '95 (set 1)"},
		{Name: "kotm", RomID: "kotm", Welcome: "King of the Monsters (set 1)"},
		{Name: "matrim", RomID: "matrim", Welcome: "Shin gouketsuzi ichizoku - Toukon"},
		{Name: "mshvsf", RomID: "mshvsf", Welcome: "Marvel Super Heroes vs Street Fighter (970625 Euro)"},
		{Name: "mslug", RomID: "mslug", Welcome: "Metal Slug - super vehicle-001"},
		{Name: "mvsc", RomID: "mvsc", Welcome: "Marvel vs Capcom - clash of super heroes (980112 Euro)"},
		{Name: "neocup98", RomID: "neocup98", Welcome: "Neo-Geo Cup '98 - the road to the victory"},
		{Name: "nwarr", RomID: "nwarr", Welcome: "Night Warriors - darkstalkers' revenge (950316 Euro)"},
		{Name: "pbobblen", RomID: "pbobblen", Welcome: "Puzzle Bobble (set 1)"},
		{Name: "pspikes2", RomID: "pspikes2", Welcome: "Power Spikes II"},
		{Name: "ragnagrd", RomID: "ragnagrd", Welcome: "Operation Ragnagard"},
		{Name: "redeartn", RomID: "redeartn", Welcome: "Red Earth"},
		{Name: "s1945p", RomID: "s1945p", Welcome: "Strikers 1945 plus"},
		{Name: "samsho3", RomID: "samsho3", Welcome: "Samurai Shodown III (set 1)"},
		{Name: "savagere", RomID: "savagere", Welcome: "Savage Reign"},
		{Name: "sengoku", RomID: "sengoku", Welcome: "Sengoku (set 1)"},
		{Name: "sfa2", RomID: "sfa2", Welcome: "Street Fighter Alpha 2 (960306 USA)"},
		{Name: "shocktr2", RomID: "shocktr2", Welcome: "Shock Troopers - 2nd squad"},
		{Name: "sonicwi3", RomID: "sonicwi3", Welcome: "Aero Fighters 3"},
		{Name: "ssf2t", RomID: "ssf2t", Welcome: "Super Street Fighter II Turbo (super street fighter 2 X 940223 etc)"},
		{Name: "ssideki4", RomID: "ssideki4", Welcome: "The Ultimate 11 - SNK football championship"},
		{Name: "svcplus", RomID: "svcplus", Welcome: "SvC Chaos - SNK vs Capcom Plus (bootleg, set 1)"},
		{Name: "twinspri", RomID: "twinspri", Welcome: "Twinklestar Sprites"},
		{Name: "varth", RomID: "varth", Welcome: "Varth - operation thunderstorm (920714 etc)"},
		{Name: "wakuwak7", RomID: "wakuwak7", Welcome: "Waku Waku 7"},
		{Name: "whp", RomID: "whp", Welcome: "World Heroes Perfect"},
		{Name: "xmcota", RomID: "xmcota", Welcome: "X-Men - children of the atom (950105 Euro)"},
	}
}
