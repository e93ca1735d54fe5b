// Package config provides the mission catalogue and the rule settings.
//
// Missions:
//
// Missions are plain text files in the mission directory, one per file, named
// <name>.txt and written in the same format the simulate endpoint accepts:
//
//	5 3
//	1 1 E
//	RFRFRFRF
//
// Manager implements service.MissionStore. Files are validated with the
// protocol parser when first loaded and cached afterwards. Files that fail
// validation are left out of ListMissions and reported with their line
// number by LoadMission. The three-robot sample mission is built in under
// the name "canonical" unless a canonical.txt file shadows it.
//
// Settings:
//
// LoadSettings reads marsrover.toml (or .yaml/.json) with viper and applies
// MARS_ environment overrides:
//
//	[rules]
//	scent_mode = "cell"         # or "cell_orientation"
//	max_coordinate = 50
//	max_instructions = 100
//
//	[missions]
//	dir = "missions"
//
//	[sessions]
//	ttl = "30m"
//	cleanup_interval = "5m"
//
// Usage:
//
//	settings, err := config.LoadSettings("")
//	manager, err := config.NewManagerWithLimits(settings.Missions.Dir, settings.Limits())
//	mission, err := manager.LoadMission("canonical")
package config
